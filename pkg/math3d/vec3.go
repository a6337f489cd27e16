// Package math3d provides the vector and matrix value types used by the
// rasterizer. All types are plain values and are copied on assignment.
package math3d

import "math"

// Vec3 is a point, direction or linear RGB color.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Splat3 returns (v, v, v).
func Splat3(v float64) Vec3 {
	return Vec3{v, v, v}
}

// Up is +Y, the world up axis.
func Up() Vec3 {
	return Vec3{0, 1, 0}
}

// Barycentric returns w0·a + w1·b + w2·c.
func Barycentric(a, b, c Vec3, w0, w1, w2 float64) Vec3 {
	return Vec3{
		w0*a.X + w1*b.X + w2*c.X,
		w0*a.Y + w1*b.Y + w2*c.Y,
		w0*a.Z + w1*b.Z + w2*c.Z,
	}
}

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul multiplies component-wise, as when tinting a light by a surface color.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

func (a Vec3) Div(s float64) Vec3 {
	return Vec3{a.X / s, a.Y / s, a.Z / s}
}

func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross follows the right-hand rule: X × Y = Z.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LenSq() float64 {
	return a.Dot(a)
}

func (a Vec3) Len() float64 {
	return math.Sqrt(a.LenSq())
}

// Normalize returns a unit vector. The zero vector stays zero, which the
// G-buffer relies on to mark empty pixels.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// IsZero reports whether all components are exactly zero.
func (a Vec3) IsZero() bool {
	return a == Vec3{}
}

// Lerp moves from a toward b by t; t outside [0, 1] extrapolates.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// Min and Max are component-wise; they grow bounding boxes.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}
