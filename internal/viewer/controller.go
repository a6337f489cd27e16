package viewer

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/scene"
)

// Fly camera tuning.
const (
	walkSpeed  = 0.3
	boostSpeed = 1.0
	moveScale  = 7.0
	dragSpeed  = 0.005
	zoomStep   = 0.1
)

// Orbit tuning.
const (
	orbitTorque  = 3.0
	orbitImpulse = 0.03
)

// OrbitAxis tracks an angle and its velocity. The velocity decays to zero
// through a critically damped spring.
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewOrbitAxis creates an axis stepped at fps.
func NewOrbitAxis(fps int) OrbitAxis {
	return OrbitAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *OrbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Controller drives the scene camera from input.
type Controller struct {
	Orbit   bool
	Channel render.Channel

	yaw, pitch OrbitAxis
	home       scene.Camera
	fps        int
}

// NewController returns a fly-mode controller. home is restored on reset.
func NewController(home scene.Camera, fps int) *Controller {
	if fps <= 0 {
		fps = 30
	}
	return &Controller{
		home:  home,
		fps:   fps,
		yaw:   NewOrbitAxis(fps),
		pitch: NewOrbitAxis(fps),
	}
}

// Update applies in to cam over dt seconds and consumes the one-shot
// parts of in.
func (c *Controller) Update(cam *scene.Camera, in *InputState, now time.Time, dt float64) {
	defer in.consume()

	if in.ChannelSet {
		c.Channel = in.Channel
	}
	if in.Reset {
		*cam = c.home
		c.yaw, c.pitch = NewOrbitAxis(c.fps), NewOrbitAxis(c.fps)
	}
	if in.ToggleOrbit {
		c.Orbit = !c.Orbit
		if c.Orbit {
			c.yaw.Position, c.pitch.Position = cam.Angles()
			c.yaw.Velocity, c.pitch.Velocity = 0, 0
		}
	}
	if in.Scroll != 0 {
		cam.Zoom(-in.Scroll * zoomStep)
	}

	if c.Orbit {
		c.orbit(cam, in, now, dt)
	} else {
		c.fly(cam, in, now, dt)
	}
}

// fly moves the eye along the view direction flattened onto the ground
// plane, and turns the view by the drag.
func (c *Controller) fly(cam *scene.Camera, in *InputState, now time.Time, dt float64) {
	up := cam.Up.Normalize()
	facing := cam.Forward()
	facing = facing.Sub(up.Scale(facing.Dot(up))).Normalize()
	right := facing.Cross(up).Normalize()

	speed := walkSpeed
	if in.Boost() {
		speed = boostSpeed
	}

	var move math3d.Vec3
	add := func(dir math3d.Vec3, keys ...string) {
		for _, k := range keys {
			if in.Held(k, now) {
				move = move.Add(dir)
				return
			}
		}
	}
	add(facing, "w", "up")
	add(facing.Negate(), "s", "down")
	add(right.Negate(), "a", "left")
	add(right, "d", "right")
	add(up, "space", "e")
	add(up.Negate(), "q")
	cam.Move(move.Scale(speed * dt * moveScale))

	if in.DragX != 0 || in.DragY != 0 {
		cam.Rotate(-in.DragX*dragSpeed, -in.DragY*dragSpeed)
	}
}

// orbit swings the eye around the target. Keys and drags add angular
// velocity that the springs bleed off.
func (c *Controller) orbit(cam *scene.Camera, in *InputState, now time.Time, dt float64) {
	torque := func(pos, neg string) float64 {
		switch {
		case in.Held(pos, now):
			return orbitTorque * dt
		case in.Held(neg, now):
			return -orbitTorque * dt
		}
		return 0
	}
	c.yaw.Velocity += torque("a", "d") - in.DragX*orbitImpulse
	c.pitch.Velocity += torque("s", "w") - in.DragY*orbitImpulse

	c.yaw.Update()
	c.pitch.Update()
	c.pitch.Position = math.Max(-math.Pi/2+0.01, math.Min(math.Pi/2-0.01, c.pitch.Position))

	dist := cam.Target.Sub(cam.Position).Len()
	if dist == 0 {
		dist = 1
	}
	dir := math3d.V3(
		-math.Sin(c.yaw.Position)*math.Cos(c.pitch.Position),
		math.Sin(c.pitch.Position),
		-math.Cos(c.yaw.Position)*math.Cos(c.pitch.Position),
	)
	cam.Position = cam.Target.Sub(dir.Scale(dist))
}
