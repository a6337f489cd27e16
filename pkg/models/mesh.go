// Package models provides the geometry and material model for lumen: faces,
// materials, meshes and object trees, plus loaders for OBJ and glTF files.
package models

import (
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/texture"
)

// Face is a triangle with per-vertex attributes in object space.
type Face struct {
	Positions [3]math3d.Vec3
	Normals   [3]math3d.Vec3
	UVs       [3]math3d.Vec2
}

// FaceNormal returns the normalized geometric normal of a counter-clockwise
// triangle.
func (f *Face) FaceNormal() math3d.Vec3 {
	e1 := f.Positions[1].Sub(f.Positions[0])
	e2 := f.Positions[2].Sub(f.Positions[0])
	return e1.Cross(e2).Normalize()
}

// Material holds base colors and optional texture maps for one mesh.
type Material struct {
	Name      string
	Ambient   math3d.Vec3
	Diffuse   math3d.Vec3
	Specular  math3d.Vec3
	Shininess int

	AmbientMap  texture.ID
	DiffuseMap  texture.ID
	SpecularMap texture.ID // specular color, or packed occlusion/roughness/metalness
	NormalMap   texture.ID // tangent space, signed
}

// DefaultMaterial returns the material used for faces without one.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		Ambient:   math3d.Splat3(0.1),
		Diffuse:   math3d.Splat3(0.7),
		Specular:  math3d.Splat3(0.2),
		Shininess: 32,
	}
}

// Mesh is an ordered list of faces sharing one material.
type Mesh struct {
	Name     string
	Faces    []Face
	Material *Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates a mesh and computes its bounds. A nil material is
// replaced by DefaultMaterial.
func NewMesh(name string, faces []Face, material *Material) *Mesh {
	if material == nil {
		material = DefaultMaterial()
	}
	m := &Mesh{
		Name:     name,
		Faces:    faces,
		Material: material,
	}
	m.CalculateBounds()
	return m
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Faces) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Faces[0].Positions[0]
	m.BoundsMax = m.Faces[0].Positions[0]

	for i := range m.Faces {
		for _, p := range m.Faces[i].Positions {
			m.BoundsMin = m.BoundsMin.Min(p)
			m.BoundsMax = m.BoundsMax.Max(p)
		}
	}
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// FillMissingNormals assigns the face normal to vertices whose normal is
// zero.
func (m *Mesh) FillMissingNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		var n math3d.Vec3
		for j := range 3 {
			if !f.Normals[j].IsZero() {
				continue
			}
			if n.IsZero() {
				n = f.FaceNormal()
			}
			f.Normals[j] = n
		}
	}
}
