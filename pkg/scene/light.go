package scene

import "github.com/taigrr/lumen/pkg/math3d"

// Light is either a point light at Position, or a global (directional)
// light when Global is set, in which case Position is the direction
// towards the light.
type Light struct {
	Position  math3d.Vec3
	Color     math3d.Vec3
	Intensity float64
	Global    bool
	Radius    float64 // splat radius in world units
}

// NewLight returns a white point light at pos.
func NewLight(pos math3d.Vec3) Light {
	return Light{
		Position:  pos,
		Color:     math3d.Splat3(1),
		Intensity: 1,
		Radius:    0.2,
	}
}

// NewGlobalLight returns a white directional light shining from dir.
func NewGlobalLight(dir math3d.Vec3) Light {
	l := NewLight(dir)
	l.Global = true
	l.Radius = 0
	return l
}

// Direction returns the unit vector from p towards the light and the
// squared distance used for attenuation. Global lights are at distance 1.
func (l *Light) Direction(p math3d.Vec3) (dir math3d.Vec3, distSq float64) {
	if l.Global {
		return l.Position.Normalize(), 1
	}
	d := l.Position.Sub(p)
	return d.Normalize(), d.LenSq()
}
