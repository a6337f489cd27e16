package game

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// Light rig constants.
const (
	rigIntensity    = 20.0
	rigPeriod       = 10.0 // seconds per revolution
	globalIntensity = 0.2
)

// orbit maps time to the angle of a light circling once per rigPeriod.
func orbit(t float64) (sin, cos float64) {
	return math.Sincos(t / rigPeriod * 2 * math.Pi)
}

// AddRotatingLights adds a red, a green and a blue point light circling
// the origin at distance scale, each in a different plane.
func AddRotatingLights(g *Game, scale float64) {
	rig := []struct {
		color math3d.Vec3
		place func(p *math3d.Vec3, sin, cos float64)
	}{
		{math3d.V3(1, 0.03, 0.03), func(p *math3d.Vec3, sin, cos float64) { p.X, p.Z = sin*scale, -cos*scale }},
		{math3d.V3(0.03, 1, 0.03), func(p *math3d.Vec3, sin, cos float64) { p.Y, p.Z = sin*scale, -cos*scale }},
		{math3d.V3(0.03, 0.03, 1), func(p *math3d.Vec3, sin, cos float64) { p.Y, p.X = sin*scale, -cos*scale }},
	}

	for _, r := range rig {
		id := g.Scene.AddLight(scene.NewLight(math3d.Vec3{}))
		g.AddSystem(func(g *Game, _, t float64) {
			l := &g.Scene.Lights[id]
			l.Color = r.color
			l.Intensity = rigIntensity
			sin, cos := orbit(t)
			r.place(&l.Position, sin, cos)
		})
	}
}

// AddGlobalLight adds a dim white directional light from (0, 1, 1). The
// shader normalizes the direction, so the intensity carries its length:
// the fill equals globalIntensity·((0, 1, 1)·n).
func AddGlobalLight(g *Game) {
	dir := math3d.V3(0, 1, 1)
	l := scene.NewGlobalLight(dir)
	l.Intensity = globalIntensity * dir.Len()
	g.Scene.AddLight(l)
}

// cameraSpring smooths one coordinate of the following light.
type cameraSpring struct {
	spring harmonica.Spring
	vel    [3]float64
}

// AddCameraLight adds a warm point light that trails the camera. Its
// position is pulled towards the camera with a critically damped spring
// stepped at fps. Its splat radius is zero.
func AddCameraLight(g *Game, fps int) {
	l := scene.NewLight(g.Scene.Camera.Position)
	l.Color = math3d.V3(0.5, 0.5, 0.4)
	l.Radius = 0
	id := g.Scene.AddLight(l)

	if fps <= 0 {
		fps = 30
	}
	s := &cameraSpring{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
	g.AddSystem(func(g *Game, _, _ float64) {
		l := &g.Scene.Lights[id]
		target := g.Scene.Camera.Position
		l.Position.X, s.vel[0] = s.spring.Update(l.Position.X, s.vel[0], target.X)
		l.Position.Y, s.vel[1] = s.spring.Update(l.Position.Y, s.vel[1], target.Y)
		l.Position.Z, s.vel[2] = s.spring.Update(l.Position.Z, s.vel[2], target.Z)
	})
}

// AddSpin turns object id about the Y axis once per period seconds.
func AddSpin(g *Game, id scene.ObjectID, period float64) {
	g.AddSystem(func(g *Game, _, t float64) {
		if obj := g.Scene.Object(id); obj != nil {
			obj.Rotation.Y = t / period * 2 * math.Pi
		}
	})
}
