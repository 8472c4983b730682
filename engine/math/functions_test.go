package math

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuatAxisAngleMatchesEulerY(t *testing.T) {
	// The quaternion conversion rotates in the opposite sense of the
	// Euler helpers under the row-vector Transform convention.
	angle := float32(stdmath.Pi / 3)
	q := NewQuatFromAxisAngle(NewVec3Up(), angle, true)
	got := q.ToMat4()
	want := NewMat4EulerY(-angle)
	for i := range want.Data {
		assert.InDelta(t, want.Data[i], got.Data[i], 1e-5, "element %d", i)
	}
}

func TestQuatAxisAngleNormalizesScaledAxis(t *testing.T) {
	// A non-unit axis must still produce a unit rotation quaternion.
	q := NewQuatFromAxisAngle(NewVec3(0, 3, 0), float32(stdmath.Pi/4), true)
	assert.InDelta(t, 1.0, float64(q.Normal()), 1e-5)
}

func TestTransformTreatsVectorAsPoint(t *testing.T) {
	moved := NewVec3(1, 2, 3).Transform(NewMat4Translation(NewVec3(10, 0, -5)))
	assert.Equal(t, NewVec3(11, 2, -2), moved)
}

func TestMat4MulWithIdentity(t *testing.T) {
	m := NewMat4Translation(NewVec3(4, 5, 6)).Mul(NewMat4Identity())
	assert.Equal(t, NewMat4Translation(NewVec3(4, 5, 6)), m)
}

func TestCrossFollowsRightHandRule(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3Up()
	assert.Equal(t, NewVec3(0, 0, 1), x.Cross(y))
}
