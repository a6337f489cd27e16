package models

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// quadFaces returns two counter-clockwise triangles for a square centered at
// c with the given right and up axes. The face normal is right × up.
func quadFaces(c, right, up math3d.Vec3, half float64) [2]Face {
	r := right.Scale(half)
	u := up.Scale(half)
	n := right.Cross(up).Normalize()

	p := [4]math3d.Vec3{
		c.Sub(r).Sub(u),
		c.Add(r).Sub(u),
		c.Add(r).Add(u),
		c.Sub(r).Add(u),
	}
	uv := [4]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	ns := [3]math3d.Vec3{n, n, n}

	return [2]Face{
		{Positions: [3]math3d.Vec3{p[0], p[1], p[2]}, Normals: ns, UVs: [3]math3d.Vec2{uv[0], uv[1], uv[2]}},
		{Positions: [3]math3d.Vec3{p[0], p[2], p[3]}, Normals: ns, UVs: [3]math3d.Vec2{uv[0], uv[2], uv[3]}},
	}
}

// NewQuad creates a size×size square in the XY plane facing +Z.
func NewQuad(size float64, material *Material) *Mesh {
	f := quadFaces(math3d.Vec3{}, math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), size/2)
	return NewMesh("quad", f[:], material)
}

// NewCube creates an axis-aligned cube centered at the origin.
func NewCube(size float64, material *Material) *Mesh {
	h := size / 2
	sides := []struct{ normal, right, up math3d.Vec3 }{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}

	faces := make([]Face, 0, 12)
	for _, s := range sides {
		f := quadFaces(s.normal.Scale(h), s.right, s.up, h)
		faces = append(faces, f[0], f[1])
	}
	return NewMesh("cube", faces, material)
}

// NewSphere creates a UV sphere centered at the origin.
func NewSphere(radius float64, rings, segments int, material *Material) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)

	point := func(i, j int) (math3d.Vec3, math3d.Vec2) {
		theta := math.Pi * float64(i) / float64(rings)
		phi := 2 * math.Pi * float64(j) / float64(segments)
		n := math3d.V3(
			math.Sin(theta)*math.Cos(phi),
			math.Cos(theta),
			-math.Sin(theta)*math.Sin(phi),
		)
		return n, math3d.V2(float64(j)/float64(segments), 1-float64(i)/float64(rings))
	}

	var faces []Face
	for i := range rings {
		for j := range segments {
			na, ta := point(i, j)
			nb, tb := point(i+1, j)
			nc, tc := point(i+1, j+1)
			nd, td := point(i, j+1)

			if i != rings-1 {
				faces = append(faces, Face{
					Positions: [3]math3d.Vec3{na.Scale(radius), nb.Scale(radius), nc.Scale(radius)},
					Normals:   [3]math3d.Vec3{na, nb, nc},
					UVs:       [3]math3d.Vec2{ta, tb, tc},
				})
			}
			if i != 0 {
				faces = append(faces, Face{
					Positions: [3]math3d.Vec3{na.Scale(radius), nc.Scale(radius), nd.Scale(radius)},
					Normals:   [3]math3d.Vec3{na, nc, nd},
					UVs:       [3]math3d.Vec2{ta, tc, td},
				})
			}
		}
	}
	return NewMesh("sphere", faces, material)
}
