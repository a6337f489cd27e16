package models

import "github.com/taigrr/lumen/pkg/math3d"

// Body is the content of an Object: exactly one of *Leaf or *Group.
type Body interface {
	isBody()
}

// Leaf is a body holding a single mesh.
type Leaf struct {
	Mesh *Mesh
}

// Group is a body holding child objects.
type Group struct {
	Children []*Object
}

func (*Leaf) isBody()  {}
func (*Group) isBody() {}

// Object is a node in the scene tree with a local transform.
type Object struct {
	Position math3d.Vec3
	Rotation math3d.Vec3 // Euler angles in radians about X, Y and Z
	Scale    math3d.Vec3
	Body     Body
}

// NewLeaf wraps a mesh in an object with an identity transform.
func NewLeaf(mesh *Mesh) *Object {
	return &Object{Scale: math3d.Splat3(1), Body: &Leaf{Mesh: mesh}}
}

// NewGroup wraps already built children in an object with an identity
// transform. Trees are assembled bottom-up, so they cannot contain cycles.
func NewGroup(children ...*Object) *Object {
	return &Object{Scale: math3d.Splat3(1), Body: &Group{Children: children}}
}

// Empty returns a leaf with an empty mesh, used in place of assets that
// failed to load.
func Empty(name string) *Object {
	return NewLeaf(NewMesh(name, nil, nil))
}

// Mesh returns the mesh of a leaf object, or nil for groups.
func (o *Object) Mesh() *Mesh {
	if l, ok := o.Body.(*Leaf); ok {
		return l.Mesh
	}
	return nil
}

// ModelMatrix returns translate * rotate * scale.
func (o *Object) ModelMatrix() math3d.Mat4 {
	return math3d.Translate(o.Position).
		Mul(math3d.RotateEuler(o.Rotation)).
		Mul(math3d.Scale(o.Scale))
}

// Walk visits every mesh below o in pre-order with its composed world
// matrix. Matrices are recomputed on every call.
func (o *Object) Walk(parent math3d.Mat4, visit func(mesh *Mesh, world math3d.Mat4)) {
	world := parent.Mul(o.ModelMatrix())
	switch b := o.Body.(type) {
	case *Leaf:
		if b.Mesh != nil {
			visit(b.Mesh, world)
		}
	case *Group:
		for _, child := range b.Children {
			child.Walk(world, visit)
		}
	}
}

// Meshes returns every mesh below o in traversal order.
func (o *Object) Meshes() []*Mesh {
	var meshes []*Mesh
	o.Walk(math3d.Identity(), func(m *Mesh, _ math3d.Mat4) {
		meshes = append(meshes, m)
	})
	return meshes
}

// TriangleCount returns the number of triangles below o.
func (o *Object) TriangleCount() int {
	n := 0
	for _, m := range o.Meshes() {
		n += m.TriangleCount()
	}
	return n
}

// Bounds returns the bounding box of every mesh below o in o's local
// space: nested child transforms apply, o's own transform does not.
func (o *Object) Bounds() (min, max math3d.Vec3) {
	first := true
	visit := func(m *Mesh, world math3d.Mat4) {
		if m == nil || len(m.Faces) == 0 {
			return
		}
		for _, c := range boxCorners(m.BoundsMin, m.BoundsMax) {
			p := world.MulVec3(c)
			if first {
				min, max = p, p
				first = false
				continue
			}
			min = min.Min(p)
			max = max.Max(p)
		}
	}

	switch b := o.Body.(type) {
	case *Leaf:
		visit(b.Mesh, math3d.Identity())
	case *Group:
		for _, child := range b.Children {
			child.Walk(math3d.Identity(), visit)
		}
	}
	return min, max
}

func boxCorners(min, max math3d.Vec3) [8]math3d.Vec3 {
	return [8]math3d.Vec3{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
	}
}
