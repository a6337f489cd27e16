package math3d

// Vec4 represents a 4D vector (or homogeneous 3D point).
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 creates a Vec4 from Vec3 with specified W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide returns XYZ divided by W.
func (v Vec4) PerspectiveDivide() Vec3 {
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}

// Add returns the vector sum.
//
//nolint:st1016 // a+b naming convention is clearer for vector operations
func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}

// Sub returns the vector difference.
//
//nolint:st1016 // a-b naming convention is clearer for vector operations
func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}

// Scale returns the scalar product.
func (v Vec4) Scale(s float64) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Dot returns the dot product.
//
//nolint:st1016 // a·b naming convention is clearer for vector operations
func (a Vec4) Dot(b Vec4) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

// InsideClip reports whether the point lies inside the canonical view
// volume -w <= x, y, z <= w.
func (v Vec4) InsideClip() bool {
	return v.X >= -v.W && v.X <= v.W &&
		v.Y >= -v.W && v.Y <= v.W &&
		v.Z >= -v.W && v.Z <= v.W
}
