package components

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/math"
)

func TestNewCameraNegatesY(t *testing.T) {
	c := NewCamera(math.NewVec3(1, 2, 3))
	assert.Equal(t, math.NewVec3(1, -2, 3), c.Position)
	assert.Equal(t, math.NewVec3Zero(), c.Target)
}

func TestCameraBasisIsOrthonormal(t *testing.T) {
	c := NewCamera(math.NewVec3(2, 1.5, 4))
	side, up, lookAt := c.Basis()

	assert.InDelta(t, 1, float64(side.Length()), 1e-5)
	assert.InDelta(t, 1, float64(up.Length()), 1e-5)
	assert.InDelta(t, 1, float64(lookAt.Length()), 1e-5)
	assert.InDelta(t, 0, float64(side.Dot(up)), 1e-5)
	assert.InDelta(t, 0, float64(side.Dot(lookAt)), 1e-5)
	assert.InDelta(t, 0, float64(up.Dot(lookAt)), 1e-5)
}

func TestCameraLooksAtTarget(t *testing.T) {
	c := NewCamera(math.NewVec3(0, 0, 4))
	_, _, lookAt := c.Basis()

	toTarget := c.Target.Sub(c.Position).Normalized()
	assert.InDelta(t, float64(toTarget.X), float64(lookAt.X), 1e-5)
	assert.InDelta(t, float64(toTarget.Y), float64(lookAt.Y), 1e-5)
	assert.InDelta(t, float64(toTarget.Z), float64(lookAt.Z), 1e-5)
}

func TestOrbitPreservesDistance(t *testing.T) {
	c := NewCamera(math.NewVec3(0, 1.5, 4))
	before := c.Position.Sub(c.Target).Length()

	c.Orbit(0.7, 0)
	c.Orbit(0, -0.3)
	c.Orbit(-1.2, 0.5)

	after := c.Position.Sub(c.Target).Length()
	assert.InDelta(t, float64(before), float64(after), 1e-4)
}

func TestOrbitQuarterTurn(t *testing.T) {
	c := NewCamera(math.NewVec3(0, 0, 4))
	c.Orbit(stdmath.Pi/2, 0)

	require.InDelta(t, 4, float64(c.Position.Length()), 1e-4)
	assert.InDelta(t, 0, float64(c.Position.Z), 1e-4)
	assert.InDelta(t, 4, stdmath.Abs(float64(c.Position.X)), 1e-4)
}

func TestDollyStopsShortOfTarget(t *testing.T) {
	c := NewCamera(math.NewVec3(0, 0, 2))

	c.Dolly(10)
	dist := c.Position.Sub(c.Target).Length()
	assert.InDelta(t, float64(NearClip*4), float64(dist), 1e-5)

	c.Dolly(-1)
	dist = c.Position.Sub(c.Target).Length()
	assert.Greater(t, dist, float32(1))
}

func TestProjectionAndTanHalfFov(t *testing.T) {
	c := NewCamera(math.NewVec3(0, 0, 4))

	want := stdmath.Tan(float64(math.DegToRad(FovDegrees)) / 2)
	assert.InDelta(t, want, float64(c.TanHalfFov()), 1e-5)

	proj := c.Projection(16.0 / 9.0)
	// Vertical scale is 1/tan(fov/2).
	assert.InDelta(t, 1/want, float64(proj.Data[5]), 1e-4)
}
