package math3d

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func matNear(a, b Mat4) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(V3(1, -2, 3))},
		{"scale", Scale(V3(2, 0.5, 4))},
		{"trs", Translate(V3(4, 5, 6)).Mul(RotateEuler(V3(0.3, -1.1, 2.0))).Mul(Scale(V3(1, 2, 3)))},
		{"projection", Perspective(math.Pi/3, 1.5, 0.1, 500)},
		{"needs pivot", Mat4{0, 1, 0, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := tt.m.Inverse()
			if err != nil {
				t.Fatalf("Inverse() error = %v", err)
			}
			if got := tt.m.Mul(inv); !matNear(got, Identity()) {
				t.Errorf("m * inverse(m) = %v, want identity", got)
			}
			if got := inv.Mul(tt.m); !matNear(got, Identity()) {
				t.Errorf("inverse(m) * m = %v, want identity", got)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"zero", Mat4{}},
		{"flattened", Scale(V3(1, 0, 1))},
		{"duplicate rows", Mat4{1, 1, 0, 0, 2, 2, 0, 0, 3, 3, 1, 0, 4, 4, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Inverse()
			if !errors.Is(err, ErrSingularMatrix) {
				t.Errorf("Inverse() error = %v, want ErrSingularMatrix", err)
			}
		})
	}
}

func TestLookAt(t *testing.T) {
	view := LookAt(V3(0, 0, 5), V3(0, 0, 0), Up())

	if got := view.MulVec3(V3(0, 0, 0)); !vecNear(got, V3(0, 0, -5)) {
		t.Errorf("origin in view space = %v, want (0,0,-5)", got)
	}
	if got := view.MulVec3(V3(1, 0, 0)); !vecNear(got, V3(1, 0, -5)) {
		t.Errorf("+X in view space = %v, want (1,0,-5)", got)
	}

	side := LookAt(V3(5, 0, 0), V3(0, 0, 0), Up())
	if got := side.MulVec3(V3(0, 0, 1)); !vecNear(got, V3(-1, 0, -5)) {
		t.Errorf("+Z seen from +X = %v, want (-1,0,-5)", got)
	}
}

func TestPerspective(t *testing.T) {
	const n, f = 0.1, 500.0
	fov := math.Pi / 3
	m := Perspective(fov, 2, n, f)
	tf := 1 / math.Tan(fov/2)

	tests := []struct {
		row, col int
		want     float64
	}{
		{0, 0, tf / 2},
		{1, 1, tf},
		{2, 2, -(f + n) / (f - n)},
		{2, 3, -2 * f * n / (f - n)},
		{3, 2, -1},
		{3, 3, 0},
	}
	for _, tt := range tests {
		if got := m.Get(tt.row, tt.col); math.Abs(got-tt.want) > eps {
			t.Errorf("m[%d][%d] = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}

	near := m.MulVec4(V4(0, 0, -n, 1))
	if z := near.Z / near.W; math.Abs(z+1) > 1e-6 {
		t.Errorf("near plane ndc z = %v, want -1", z)
	}
	far := m.MulVec4(V4(0, 0, -f, 1))
	if z := far.Z / far.W; math.Abs(z-1) > 1e-6 {
		t.Errorf("far plane ndc z = %v, want 1", z)
	}
}

func TestRotateEuler(t *testing.T) {
	tests := []struct {
		name  string
		euler Vec3
		in    Vec3
		want  Vec3
	}{
		{"roll about z", V3(0, 0, math.Pi/2), V3(1, 0, 0), V3(0, 1, 0)},
		{"yaw about y", V3(0, math.Pi/2, 0), V3(1, 0, 0), V3(0, 0, -1)},
		{"pitch about x", V3(math.Pi/2, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		// X applies first: +Y -> +Z, then Z rotation leaves +Z alone.
		{"x before z", V3(math.Pi/2, 0, math.Pi/2), V3(0, 1, 0), V3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RotateEuler(tt.euler).MulVec3Dir(tt.in); !vecNear(got, tt.want) {
				t.Errorf("RotateEuler(%v) * %v = %v, want %v", tt.euler, tt.in, got, tt.want)
			}
		})
	}
}

func TestMat3Transform(t *testing.T) {
	basis := Mat3FromColumns(V3(0, 1, 0), V3(-1, 0, 0), V3(0, 0, 1))
	if got := basis.MulVec3(V3(1, 0, 0)); !vecNear(got, V3(0, 1, 0)) {
		t.Errorf("first column = %v", got)
	}
	if got := basis.MulVec3(V3(0, 0, 2)); !vecNear(got, V3(0, 0, 2)) {
		t.Errorf("third column = %v", got)
	}
	if got := basis.Transpose().MulVec3(V3(0, 1, 0)); !vecNear(got, V3(1, 0, 0)) {
		t.Errorf("transpose = %v", got)
	}

	m := Translate(V3(7, 8, 9)).Mul(Scale(V3(2, 3, 4))).Mat3()
	if got := m.MulVec3(V3(1, 1, 1)); !vecNear(got, V3(2, 3, 4)) {
		t.Errorf("upper-left block = %v, want (2,3,4)", got)
	}
}

func TestEuclidMod(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{5, 4, 1},
		{-1, 4, 3},
		{-4, 4, 0},
		{-9, 4, 3},
		{0, 1, 0},
	}
	for _, tt := range tests {
		if got := EuclidMod(tt.a, tt.b); got != tt.want {
			t.Errorf("EuclidMod(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEulerRoundTrip(t *testing.T) {
	tests := []Vec3{
		{0, 0, 0},
		{0.3, -0.7, 1.2},
		{-2.5, 1.0, -0.4},
		{0, math.Pi / 2, 0.6},
	}
	for _, e := range tests {
		m := RotateEuler(e)
		back := RotateEuler(m.Mat3().Euler())
		if !matNear(m, back) {
			t.Errorf("RotateEuler(Euler(R(%v))) differs:\n got %v\nwant %v", e, back, m)
		}
	}
}

func TestQuatToMat3(t *testing.T) {
	half := math.Pi / 12 // 30 degrees about Y
	r := QuatToMat3(0, math.Sin(half), 0, math.Cos(half))
	want := RotateY(math.Pi / 6).Mat3()
	for i := range r {
		if math.Abs(r[i]-want[i]) > eps {
			t.Fatalf("QuatToMat3 = %v, want %v", r, want)
		}
	}
	if e := r.Euler(); !vecNear(e, V3(0, math.Pi/6, 0)) {
		t.Errorf("Euler() = %v, want (0, pi/6, 0)", e)
	}
}

func TestDeterminant(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want float64
	}{
		{"identity", Identity(), 1},
		{"scale", Scale(V3(2, 3, 4)), 24},
		{"rotation", RotateEuler(V3(0.3, -1.2, 2)), 1},
		{"translation", Translate(V3(5, -1, 2)).Mul(Scale(V3(2, 2, 2))), 8},
		{"flattened", Scale(V3(1, 0, 1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Determinant(); math.Abs(got-tt.want) > eps {
				t.Errorf("Determinant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMat3Mul(t *testing.T) {
	a := RotateEuler(V3(0.4, 0.1, -0.7))
	b := RotateEuler(V3(-1, 0.5, 0.2))
	got := a.Mat3().Mul(b.Mat3())
	want := a.Mul(b).Mat3()
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("Mat3 product = %v, want %v", got, want)
		}
	}
}

func TestBarycentric(t *testing.T) {
	a, b, c := V3(1, 0, 0), V3(0, 2, 0), V3(0, 0, 4)
	tests := []struct {
		name       string
		w0, w1, w2 float64
		want       Vec3
	}{
		{"corner a", 1, 0, 0, a},
		{"corner c", 0, 0, 1, c},
		{"edge midpoint", 0.5, 0.5, 0, V3(0.5, 1, 0)},
		{"centroid", 1.0 / 3, 1.0 / 3, 1.0 / 3, V3(1.0/3, 2.0/3, 4.0/3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Barycentric(a, b, c, tt.w0, tt.w1, tt.w2); !vecNear(got, tt.want) {
				t.Errorf("Barycentric = %v, want %v", got, tt.want)
			}
		})
	}

	if got := a.Lerp(b, 0.25); !vecNear(got, V3(0.75, 0.5, 0)) {
		t.Errorf("Lerp = %v", got)
	}
}
