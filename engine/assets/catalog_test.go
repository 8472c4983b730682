package assets

import (
	"testing"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogDoc = `
width = 0
height = 0
texture_type = "8bit"
target_scene = "lego_ball"
deferred = false
rotation = true

[scenes.lego_ball]
path = "scenes/lego_ball/"
original = false
camera = [-1.0, 1.0, 1.0]

[scenes.lego_ball.instancing]
dim = [1, 1, 1]
interval = [2.0, 2.0, 2.0]

[scenes.lego_combo]
combo = true
models = ["scenes/lego_ball/", "scenes/lego_tractor/"]
original = [false, true]
camera = [-0.0381453, 1.84186, -1.51744]

[scenes.lego_combo.instancing]
dim = [2, 2, 2]
interval = [1.5, 1.5, 1.5]
`

func TestCatalogResolveSingle(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogDoc))
	require.NoError(t, err)
	assert.Equal(t, "lego_ball", c.TargetScene())

	sa, err := c.Resolve("")
	require.NoError(t, err)

	assert.Equal(t, "lego_ball", sa.Name)
	assert.False(t, sa.Combo)
	require.Len(t, sa.Models, 1)
	assert.Equal(t, "scenes/lego_ball/", sa.Models[0].Path)
	assert.Equal(t, VariantConverted, sa.Models[0].Variant)
	assert.Equal(t, math.NewVec3(-1, 1, 1), sa.CameraPosition)
	assert.Equal(t, [3]int32{1, 1, 1}, sa.Instancing.Dim)
	assert.Equal(t, FeatureFormatR8Unorm, sa.FeatureFormat)
	assert.False(t, sa.Deferred)
	assert.True(t, sa.Rotation)
	assert.Zero(t, sa.ViewportWidth)
	assert.Zero(t, sa.ViewportHeight)
}

func TestCatalogResolveCombo(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogDoc))
	require.NoError(t, err)

	sa, err := c.Resolve("lego_combo")
	require.NoError(t, err)

	assert.True(t, sa.Combo)
	require.Len(t, sa.Models, 2)
	assert.Equal(t, VariantConverted, sa.Models[0].Variant)
	assert.Equal(t, VariantOriginal, sa.Models[1].Variant)
	assert.Equal(t, [3]int32{2, 2, 2}, sa.Instancing.Dim)
	assert.Equal(t, [3]float32{1.5, 1.5, 1.5}, sa.Instancing.Interval)
	assert.Equal(t, uint32(8), sa.Instancing.Count())
}

func TestCatalogUnknownTextureTypeDefaultsTo32Bit(t *testing.T) {
	doc := `
texture_type = "explode"
target_scene = "s"

[scenes.s]
path = "p/"
original = true
camera = [0.0, 0.0, 1.0]

[scenes.s.instancing]
dim = [1, 1, 1]
interval = [1.0, 1.0, 1.0]
`
	c, err := ParseCatalog([]byte(doc))
	require.NoError(t, err)
	sa, err := c.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, FeatureFormatR32Float, sa.FeatureFormat)
	assert.Equal(t, VariantOriginal, sa.Models[0].Variant)
}

func TestCatalogResolveUnknownScene(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogDoc))
	require.NoError(t, err)
	_, err = c.Resolve("does_not_exist")
	assert.Error(t, err)
}

func TestCatalogRejectsBadInstancing(t *testing.T) {
	doc := `
texture_type = "8bit"
target_scene = "s"

[scenes.s]
path = "p/"
original = false
camera = [0.0, 0.0, 1.0]

[scenes.s.instancing]
dim = [0, 1, 1]
interval = [1.0, 1.0, 1.0]
`
	c, err := ParseCatalog([]byte(doc))
	require.NoError(t, err)
	_, err = c.Resolve("")
	assert.Error(t, err)
}

func TestCatalogRejectsMissingFields(t *testing.T) {
	docs := []string{
		// no path
		`
target_scene = "s"
[scenes.s]
original = false
[scenes.s.instancing]
dim = [1, 1, 1]
interval = [1.0, 1.0, 1.0]
`,
		// no instancing table
		`
target_scene = "s"
[scenes.s]
path = "p/"
original = false
`,
		// combo flag count mismatch
		`
target_scene = "s"
[scenes.s]
combo = true
models = ["a/", "b/"]
original = [false]
[scenes.s.instancing]
dim = [1, 1, 1]
interval = [1.0, 1.0, 1.0]
`,
	}
	for i, doc := range docs {
		c, err := ParseCatalog([]byte(doc))
		require.NoError(t, err, "doc %d should parse", i)
		_, err = c.Resolve("")
		assert.Error(t, err, "doc %d should fail to resolve", i)
	}
}
