package render

import "github.com/taigrr/lumen/pkg/math3d"

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Distance returns the signed distance from the plane to p; positive is
// on the side the normal points to.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

func (p *Plane) normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Div(l)
	p.D /= l
}

// Frustum holds the six view planes with inward-facing normals.
type Frustum struct {
	Planes [6]Plane
}

// Plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a projection * view matrix
// (Gribb/Hartmann). Each plane is row 3 plus or minus row 0, 1 or 2.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row := func(r int) (math3d.Vec3, float64) {
		return math3d.V3(m.Get(r, 0), m.Get(r, 1), m.Get(r, 2)), m.Get(r, 3)
	}
	w, wd := row(3)

	var f Frustum
	for axis := range 3 {
		a, ad := row(axis)
		f.Planes[axis*2] = Plane{Normal: w.Add(a), D: wd + ad}
		f.Planes[axis*2+1] = Plane{Normal: w.Sub(a), D: wd - ad}
	}
	for i := range f.Planes {
		f.Planes[i].normalize()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Transform returns the box bounding all eight corners after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := AABB{Min: m.MulVec3(b.Min), Max: m.MulVec3(b.Min)}
	for i := 1; i < 8; i++ {
		c := math3d.V3(
			pick(i&1 != 0, b.Max.X, b.Min.X),
			pick(i&2 != 0, b.Max.Y, b.Min.Y),
			pick(i&4 != 0, b.Max.Z, b.Min.Z),
		)
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint reports whether p is inside the box.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectAABB reports whether any part of the box may be inside the
// frustum. For each plane only the corner furthest along the normal is
// tested; the result is conservative near frustum edges.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, pl := range f.Planes {
		corner := math3d.V3(
			pick(pl.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(pl.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(pl.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if pl.Distance(corner) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB reports whether the whole box is inside the frustum.
func (f Frustum) ContainsAABB(box AABB) bool {
	for _, pl := range f.Planes {
		corner := math3d.V3(
			pick(pl.Normal.X >= 0, box.Min.X, box.Max.X),
			pick(pl.Normal.Y >= 0, box.Min.Y, box.Max.Y),
			pick(pl.Normal.Z >= 0, box.Min.Z, box.Max.Z),
		)
		if pl.Distance(corner) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere may be inside the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for _, pl := range f.Planes {
		if pl.Distance(center) < -radius {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
