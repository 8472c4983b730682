package graph

import (
	"encoding/binary"
	stdmath "math"

	"github.com/spaghettifunk/lumen/engine/math"
)

// GlobalUniform mirrors the scene uniform block declared by the shaders.
// The std140 rules pad every vec3 member out to 16 bytes, so Bytes lays the
// fields out explicitly instead of relying on Go struct layout.
type GlobalUniform struct {
	Model math.Mat4
	View  math.Mat4
	Proj  math.Mat4

	CameraPosition math.Vec3
	CameraSide     math.Vec3
	CameraUp       math.Vec3
	CameraLookAt   math.Vec3

	ImgDim     math.Vec2
	TanHalfFov float32
}

// GlobalUniformSize is the std140 footprint of GlobalUniform.
const GlobalUniformSize = 272

func putFloat(dst []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(dst[offset:], stdmath.Float32bits(v))
}

func putMat4(dst []byte, offset int, m math.Mat4) {
	for i, v := range m.Data {
		putFloat(dst, offset+i*4, v)
	}
}

func putVec3(dst []byte, offset int, v math.Vec3) {
	putFloat(dst, offset, v.X)
	putFloat(dst, offset+4, v.Y)
	putFloat(dst, offset+8, v.Z)
}

func (u *GlobalUniform) Bytes() []byte {
	out := make([]byte, GlobalUniformSize)
	putMat4(out, 0, u.Model)
	putMat4(out, 64, u.View)
	putMat4(out, 128, u.Proj)
	putVec3(out, 192, u.CameraPosition)
	putVec3(out, 208, u.CameraSide)
	putVec3(out, 224, u.CameraUp)
	putVec3(out, 240, u.CameraLookAt)
	putFloat(out, 256, u.ImgDim.X)
	putFloat(out, 260, u.ImgDim.Y)
	putFloat(out, 264, u.TanHalfFov)
	return out
}

// ComboTranslations are the fixed placements applied to the four sub-scenes
// of a combined scene, in model order.
var ComboTranslations = [4]math.Vec3{
	{X: 0.5, Y: 0.75, Z: 0},
	{X: 0.5, Y: 0.25, Z: 0},
	{X: 0, Y: -0.25, Z: 0.5},
	{X: 0, Y: -0.75, Z: -0.5},
}
