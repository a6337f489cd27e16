package scene

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Clip planes shared by every projection.
const (
	Near = 0.1
	Far  = 500.0
)

// FOV limits for Zoom.
const (
	MinFOV = 0.00001
	MaxFOV = math.Pi
)

const maxPitch = math.Pi/2 - 0.01

// Camera is a look-at camera.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3
	FOV      float64 // vertical field of view in radians
}

// NewCamera returns a camera at (0, 0, 5) looking at the origin.
func NewCamera() Camera {
	return Camera{
		Position: math3d.V3(0, 0, 5),
		Up:       math3d.Up(),
		FOV:      math.Pi / 3, // 60 degrees
	}
}

// View returns the view matrix.
func (c *Camera) View() math3d.Mat4 {
	return math3d.LookAt(c.Position, c.Target, c.Up)
}

// Projection returns the perspective projection for the given aspect ratio.
func (c *Camera) Projection(aspect float64) math3d.Mat4 {
	return math3d.Perspective(c.FOV, aspect, Near, Far)
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Right returns the unit right direction.
func (c *Camera) Right() math3d.Vec3 {
	return c.Forward().Cross(c.Up).Normalize()
}

// Move translates both the eye and the target.
func (c *Camera) Move(delta math3d.Vec3) {
	c.Position = c.Position.Add(delta)
	c.Target = c.Target.Add(delta)
}

// Angles returns the yaw and pitch of the view direction.
func (c *Camera) Angles() (yaw, pitch float64) {
	dir := c.Forward()
	return math.Atan2(-dir.X, -dir.Z), math.Asin(math.Max(-1, math.Min(1, dir.Y)))
}

// SetAngles points the camera along yaw and pitch, keeping the distance to
// the target. Pitch is clamped short of straight up or down.
func (c *Camera) SetAngles(yaw, pitch float64) {
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))
	dist := c.Target.Sub(c.Position).Len()
	if dist == 0 {
		dist = 1
	}
	dir := math3d.V3(
		-math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		-math.Cos(yaw)*math.Cos(pitch),
	)
	c.Target = c.Position.Add(dir.Scale(dist))
}

// Rotate turns the view direction by the given angles (in radians),
// swinging the target around the eye.
func (c *Camera) Rotate(deltaYaw, deltaPitch float64) {
	yaw, pitch := c.Angles()
	c.SetAngles(yaw+deltaYaw, pitch+deltaPitch)
}

// Zoom changes the field of view, clamped to (MinFOV, MaxFOV).
func (c *Camera) Zoom(delta float64) {
	c.FOV = math.Max(MinFOV, math.Min(MaxFOV-MinFOV, c.FOV+delta))
}
