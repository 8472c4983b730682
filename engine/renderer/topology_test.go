package renderer

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/graph"
)

func TestFirstPassFragmentSelection(t *testing.T) {
	assert.Equal(t, "raster.frag.spv", firstPassFragment(assets.VariantOriginal, true))
	assert.Equal(t, "raster_morpheus.frag.spv", firstPassFragment(assets.VariantConverted, true))
	assert.Equal(t, "merged.frag.spv", firstPassFragment(assets.VariantOriginal, false))
	assert.Equal(t, "merged_morpheus.frag.spv", firstPassFragment(assets.VariantConverted, false))
}

func TestComposeFragmentSelection(t *testing.T) {
	assert.Equal(t, "mlp.frag.spv", composeFragment(assets.VariantOriginal))
	assert.Equal(t, "mlp_morpheus.frag.spv", composeFragment(assets.VariantConverted))
}

func TestFeatureVkFormat(t *testing.T) {
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, featureVkFormat(assets.FeatureFormatR8Unorm))
	assert.Equal(t, vk.FormatR16g16b16a16Sfloat, featureVkFormat(assets.FeatureFormatR16Float))
	assert.Equal(t, vk.FormatR32g32b32a32Sfloat, featureVkFormat(assets.FeatureFormatR32Float))
}

func TestShardCountPerVariant(t *testing.T) {
	assert.Equal(t, 8, shardCount(assets.VariantOriginal))
	assert.Equal(t, 1, shardCount(assets.VariantConverted))
}

func TestFeatureFilterPerVariant(t *testing.T) {
	assert.Equal(t, vk.FilterNearest, featureFilter(assets.VariantOriginal))
	assert.Equal(t, vk.FilterLinear, featureFilter(assets.VariantConverted))
}

func floatAt(data []byte, offset int) float32 {
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestVertexBytesLayout(t *testing.T) {
	vertices := []assets.MeshVertex{
		{Position: math.NewVec3(1, 2, 3), Texcoord: math.NewVec2(0.25, 0.75)},
		{Position: math.NewVec3(-1, -2, -3), Texcoord: math.NewVec2(0, 1)},
	}
	data := vertexBytes(vertices)
	require.Len(t, data, 40)

	assert.Equal(t, float32(1), floatAt(data, 0))
	assert.Equal(t, float32(3), floatAt(data, 8))
	assert.Equal(t, float32(0.25), floatAt(data, 12))
	assert.Equal(t, float32(0.75), floatAt(data, 16))
	assert.Equal(t, float32(-1), floatAt(data, 20))
	assert.Equal(t, float32(1), floatAt(data, 36))
}

func TestIndexBytesLittleEndian(t *testing.T) {
	data := indexBytes([]uint32{7, 0x01020304})
	require.Len(t, data, 8)
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data))
	assert.Equal(t, uint32(0x01020304), binary.LittleEndian.Uint32(data[4:]))
}

func TestOffsetBytesLayout(t *testing.T) {
	data := offsetBytes([]math.Vec3{math.NewVec3(1, 2, 3), math.NewVec3(4, 5, 6)})
	require.Len(t, data, 24)
	assert.Equal(t, float32(2), floatAt(data, 4))
	assert.Equal(t, float32(6), floatAt(data, 20))
}

func TestModelMatrixComboPlacement(t *testing.T) {
	fc := &FrameCompositor{graph: &RenderGraph{
		scene: &assets.SceneAssets{Combo: true},
	}}

	for i, want := range graph.ComboTranslations {
		m := fc.modelMatrix(i)
		assert.Equal(t, want.X, m.Data[12], "model %d", i)
		assert.Equal(t, want.Y, m.Data[13], "model %d", i)
		assert.Equal(t, want.Z, m.Data[14], "model %d", i)
	}
}

func TestModelMatrixPlainSceneIsIdentity(t *testing.T) {
	fc := &FrameCompositor{graph: &RenderGraph{
		scene: &assets.SceneAssets{},
	}}
	assert.Equal(t, math.NewMat4Identity(), fc.modelMatrix(0))
}

func TestModelMatrixRotationAccumulates(t *testing.T) {
	fc := &FrameCompositor{graph: &RenderGraph{
		scene: &assets.SceneAssets{Rotation: true},
	}}
	fc.angle = stdmath.Pi / 2

	m := fc.modelMatrix(0)
	// Rotating (0,0,-1) a quarter turn around Y lands on (-1,0,0).
	v := math.NewVec3(0, 0, -1).Transform(m)
	assert.InDelta(t, -1, float64(v.X), 1e-6)
	assert.InDelta(t, 0, float64(v.Z), 1e-6)
}
