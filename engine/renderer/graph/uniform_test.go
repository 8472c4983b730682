package graph

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmath "github.com/spaghettifunk/lumen/engine/math"
)

func floatAt(data []byte, offset int) float32 {
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestGlobalUniformBytes(t *testing.T) {
	u := GlobalUniform{
		Model:          kmath.NewMat4Identity(),
		View:           kmath.NewMat4Identity(),
		Proj:           kmath.NewMat4Identity(),
		CameraPosition: kmath.Vec3{X: 1, Y: 2, Z: 3},
		CameraSide:     kmath.Vec3{X: 4, Y: 5, Z: 6},
		CameraUp:       kmath.Vec3{X: 7, Y: 8, Z: 9},
		CameraLookAt:   kmath.Vec3{X: 10, Y: 11, Z: 12},
		ImgDim:         kmath.Vec2{X: 1280, Y: 720},
		TanHalfFov:     0.57735,
	}

	data := u.Bytes()
	require.Len(t, data, GlobalUniformSize)

	// Identity diagonal of each matrix.
	for _, base := range []int{0, 64, 128} {
		for i := 0; i < 4; i++ {
			assert.Equal(t, float32(1), floatAt(data, base+i*20))
		}
	}

	// vec3 members land on 16-byte boundaries.
	assert.Equal(t, float32(1), floatAt(data, 192))
	assert.Equal(t, float32(3), floatAt(data, 200))
	assert.Equal(t, float32(4), floatAt(data, 208))
	assert.Equal(t, float32(7), floatAt(data, 224))
	assert.Equal(t, float32(12), floatAt(data, 248))

	assert.Equal(t, float32(1280), floatAt(data, 256))
	assert.Equal(t, float32(720), floatAt(data, 260))
	assert.InDelta(t, 0.57735, float64(floatAt(data, 264)), 1e-6)
}

func TestComboTranslations(t *testing.T) {
	assert.Equal(t, kmath.Vec3{X: 0.5, Y: 0.75, Z: 0}, ComboTranslations[0])
	assert.Equal(t, kmath.Vec3{X: 0, Y: -0.75, Z: -0.5}, ComboTranslations[3])
}
