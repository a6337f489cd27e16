package math3d

import "math"

// QuatToMat3 converts a unit quaternion (x, y, z, w) to a rotation matrix.
func QuatToMat3(x, y, z, w float64) Mat3 {
	return Mat3{
		1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w),
		2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w),
		2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y),
	}
}

// Euler returns the angles e such that RotateEuler(e) reproduces the
// rotation m.
func (m Mat3) Euler() Vec3 {
	sy := -m.Get(2, 0)
	sy = math.Max(-1, math.Min(1, sy))
	y := math.Asin(sy)

	if math.Abs(sy) > 1-1e-9 {
		// Gimbal lock: X and Z rotate about the same axis.
		return Vec3{0, y, math.Atan2(-m.Get(0, 1), m.Get(1, 1))}
	}
	return Vec3{
		math.Atan2(m.Get(2, 1), m.Get(2, 2)),
		y,
		math.Atan2(m.Get(1, 0), m.Get(0, 0)),
	}
}
