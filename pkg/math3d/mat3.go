package math3d

// Mat3 is a 3x3 matrix stored in column-major order, used for normal
// transforms and tangent-space bases.
type Mat3 [9]float64

// Mat3FromColumns builds a matrix whose columns are a, b and c.
func Mat3FromColumns(a, b, c Vec3) Mat3 {
	return Mat3{
		a.X, a.Y, a.Z,
		b.X, b.Y, b.Z,
		c.X, c.Y, c.Z,
	}
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// MulVec3 transforms v by the matrix.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Get returns the element at (row, col).
func (m Mat3) Get(row, col int) float64 {
	return m[row+col*3]
}

// Mul returns a * b.
func (a Mat3) Mul(b Mat3) Mat3 {
	var out Mat3
	for col := range 3 {
		for row := range 3 {
			out[row+col*3] = a[row]*b[col*3] + a[row+3]*b[col*3+1] + a[row+6]*b[col*3+2]
		}
	}
	return out
}
