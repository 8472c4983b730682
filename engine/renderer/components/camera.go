package components

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/lumen/engine/math"
)

// Field of view and clip planes shared by every scene. Feature textures are
// baked against this exact projection, so these are not configurable.
const (
	FovDegrees = 60.0
	NearClip   = 0.01
	FarClip    = 256.0
)

// Camera orbits a fixed target, which for baked scenes is always the origin.
// The view matrix is rebuilt lazily when position or target change.
type Camera struct {
	Position math.Vec3
	Target   math.Vec3

	isDirty bool
	view    math.Mat4
}

// NewCamera places the camera at position looking at the origin. The y
// coordinate is negated to keep the initial pose consistent with the pose the
// scenes were baked from.
func NewCamera(position math.Vec3) *Camera {
	return &Camera{
		Position: math.NewVec3(position.X, -position.Y, position.Z),
		Target:   math.NewVec3Zero(),
		isDirty:  true,
	}
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.isDirty = true
}

func (c *Camera) View() math.Mat4 {
	if c.isDirty {
		c.view = math.NewMat4LookAt(c.Position, c.Target, math.NewVec3Up())
		c.isDirty = false
	}
	return c.view
}

func (c *Camera) Projection(aspectRatio float32) math.Mat4 {
	return math.NewMat4Perspective(math.DegToRad(FovDegrees), aspectRatio, NearClip, FarClip)
}

// TanHalfFov is the precomputed half-angle tangent the ray-generation shaders
// use to reconstruct view rays from pixel coordinates.
func (c *Camera) TanHalfFov() float32 {
	return math32.Tan(0.5 * math.DegToRad(FovDegrees))
}

// Basis extracts the camera frame from the view matrix: side and up are the
// first two rows, the look direction is the negated third row.
func (c *Camera) Basis() (side, up, lookAt math.Vec3) {
	v := c.View()
	side = math.NewVec3(v.Data[0], v.Data[4], v.Data[8])
	up = math.NewVec3(v.Data[1], v.Data[5], v.Data[9])
	lookAt = math.NewVec3(-v.Data[2], -v.Data[6], -v.Data[10])
	return side, up, lookAt
}

// Orbit rotates the camera around the target. Yaw spins around the world up
// axis, pitch tilts around the camera's side axis.
func (c *Camera) Orbit(yawRadians, pitchRadians float32) {
	offset := c.Position.Sub(c.Target)

	yaw := math.NewMat4EulerY(yawRadians)
	offset = offset.Transform(yaw)

	side, _, _ := c.Basis()
	pitch := math.NewQuatFromAxisAngle(side, pitchRadians, true)
	offset = offset.Transform(pitch.ToMat4())

	c.Position = c.Target.Add(offset)
	c.isDirty = true
}

// Dolly moves the camera along its look direction. Positive amounts move
// toward the target; the camera stops short of passing through it.
func (c *Camera) Dolly(amount float32) {
	offset := c.Position.Sub(c.Target)
	distance := offset.Length()
	next := distance - amount
	if next < NearClip*4 {
		next = NearClip * 4
	}
	c.Position = c.Target.Add(offset.MulScalar(next / distance))
	c.isDirty = true
}
