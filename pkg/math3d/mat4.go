package math3d

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingularMatrix is returned when inverting a matrix without an inverse.
var ErrSingularMatrix = errors.New("singular matrix")

// pivotEpsilon is the smallest pivot magnitude accepted by Inverse.
const pivotEpsilon = 1e-12

// Mat4 is a 4x4 matrix stored in column-major order.
// This matches OpenGL conventions for easier reasoning about transforms.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// For a transform matrix:
// | Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
// | Xy Yy Zy Ty |   T = translation
// | Xz Yz Zz Tz |
// | 0  0  0  1  |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// RotateEuler composes Rz(e.Z) * Ry(e.Y) * Rx(e.X), so X is applied first.
func RotateEuler(e Vec3) Mat4 {
	return RotateZ(e.Z).Mul(RotateY(e.Y)).Mul(RotateX(e.X))
}

// LookAt creates a view matrix looking from eye towards target.
func LookAt(eye, target, up Vec3) Mat4 {
	forward := eye.Sub(target).Normalize()
	right := up.Cross(forward).Normalize()
	up = forward.Cross(right).Normalize()

	return Mat4{
		right.X, up.X, forward.X, 0,
		right.Y, up.Y, forward.Y, 0,
		right.Z, up.Z, forward.Z, 0,
		-right.Dot(eye), -up.Dot(eye), -forward.Dot(eye), 1,
	}
}

// Perspective creates a perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// near and far are clipping planes.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1) without perspective division.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Inverse returns the inverse of the matrix using Gauss-Jordan elimination
// with partial pivoting. A singular matrix yields ErrSingularMatrix.
func (m Mat4) Inverse() (Mat4, error) {
	var a [4][8]float64
	for row := range 4 {
		for col := range 4 {
			a[row][col] = m.Get(row, col)
		}
		a[row][row+4] = 1
	}

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < pivotEpsilon {
			return Mat4{}, fmt.Errorf("invert column %d: %w", col, ErrSingularMatrix)
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1 / a[col][col]
		for k := range 8 {
			a[col][k] *= inv
		}
		for row := range 4 {
			if row == col || a[row][col] == 0 {
				continue
			}
			f := a[row][col]
			for k := range 8 {
				a[row][k] -= f * a[col][k]
			}
		}
	}

	var out Mat4
	for row := range 4 {
		for col := range 4 {
			out.Set(row, col, a[row][col+4])
		}
	}
	return out, nil
}

// Determinant returns the determinant using 2x2 sub-determinants of the
// upper and lower row pairs.
func (m Mat4) Determinant() float64 {
	g := m.Get
	s0 := g(0, 0)*g(1, 1) - g(1, 0)*g(0, 1)
	s1 := g(0, 0)*g(1, 2) - g(1, 0)*g(0, 2)
	s2 := g(0, 0)*g(1, 3) - g(1, 0)*g(0, 3)
	s3 := g(0, 1)*g(1, 2) - g(1, 1)*g(0, 2)
	s4 := g(0, 1)*g(1, 3) - g(1, 1)*g(0, 3)
	s5 := g(0, 2)*g(1, 3) - g(1, 2)*g(0, 3)

	c5 := g(2, 2)*g(3, 3) - g(3, 2)*g(2, 3)
	c4 := g(2, 1)*g(3, 3) - g(3, 1)*g(2, 3)
	c3 := g(2, 1)*g(3, 2) - g(3, 1)*g(2, 2)
	c2 := g(2, 0)*g(3, 3) - g(3, 0)*g(2, 3)
	c1 := g(2, 0)*g(3, 2) - g(3, 0)*g(2, 2)
	c0 := g(2, 0)*g(3, 1) - g(3, 0)*g(2, 1)

	return s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
}

// Mat3 returns the upper-left 3x3 block.
func (m Mat4) Mat3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row+col*4] = val
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}
