// Package scene holds what a frame is rendered from: the object trees, the
// lights and the camera.
package scene

import (
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/models"
)

// ObjectID is the index of a root object in a Scene.
type ObjectID int

// Scene is a set of root objects, lights and a camera.
type Scene struct {
	Objects []*models.Object
	Lights  []Light
	Camera  Camera
}

// New returns an empty scene with the default camera.
func New() *Scene {
	return &Scene{Camera: NewCamera()}
}

// AddObject appends a root object and returns its id.
func (s *Scene) AddObject(obj *models.Object) ObjectID {
	s.Objects = append(s.Objects, obj)
	return ObjectID(len(s.Objects) - 1)
}

// Object returns the root object with the given id, or nil.
func (s *Scene) Object(id ObjectID) *models.Object {
	if id < 0 || int(id) >= len(s.Objects) {
		return nil
	}
	return s.Objects[id]
}

// AddLight appends a light and returns its index.
func (s *Scene) AddLight(l Light) int {
	s.Lights = append(s.Lights, l)
	return len(s.Lights) - 1
}

// ProjView returns projection * view for the given aspect ratio.
func (s *Scene) ProjView(aspect float64) math3d.Mat4 {
	return s.Camera.Projection(aspect).Mul(s.Camera.View())
}

// Walk visits every mesh of every root object with its world matrix.
func (s *Scene) Walk(visit func(mesh *models.Mesh, world math3d.Mat4)) {
	for _, obj := range s.Objects {
		obj.Walk(math3d.Identity(), visit)
	}
}

// TriangleCount returns the number of triangles in the scene.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, obj := range s.Objects {
		n += obj.TriangleCount()
	}
	return n
}
