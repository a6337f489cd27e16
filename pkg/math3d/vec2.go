package math3d

// Vec2 represents a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Extend returns (X, Y, z).
func (a Vec2) Extend(z float64) Vec3 {
	return Vec3{a.X, a.Y, z}
}

// EuclidMod returns a mod b in [0, b) for b > 0.
func EuclidMod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
