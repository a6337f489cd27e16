package render

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/models"
	"github.com/taigrr/lumen/pkg/scene"
	"github.com/taigrr/lumen/pkg/texture"
)

// trianglesPerChunk is the smallest run of triangles worth a goroutine.
const trianglesPerChunk = 64

// Renderer draws scenes into a FrameBuffer.
type Renderer struct {
	Workers           int  // parallelism of each phase; <= 0 means GOMAXPROCS
	ParallelTriangles bool // split each mesh's triangles across workers
	CullMeshes        bool // skip meshes whose bounds are outside the frustum
	Stats             Stats
}

// Stats describes the last rendered frame.
type Stats struct {
	MeshesTested int // Total meshes tested for culling
	MeshesCulled int // Meshes culled (not rendered)
	MeshesDrawn  int // Meshes that passed culling

	Triangles       int64 // triangles submitted
	TrianglesCulled int64 // rejected by backface or clip tests
	Fragments       int64 // fragments that won the depth test when written
}

// NewRenderer returns a renderer using every CPU.
func NewRenderer() *Renderer {
	return &Renderer{
		Workers:           runtime.GOMAXPROCS(0),
		ParallelTriangles: true,
		CullMeshes:        true,
	}
}

// Render draws one frame: clear, rasterize, shade, then splat lights.
// Phases run one after another; each is parallel inside.
func (r *Renderer) Render(fb *FrameBuffer, sc *scene.Scene, store *texture.Store) error {
	fb.Clear(r.Workers)
	if err := r.RasterizeScene(fb, sc, store); err != nil {
		return err
	}
	r.Shade(fb, sc, store)
	SplatLights(fb, sc)
	return nil
}

// RasterizeScene walks the scene graph and rasterizes every mesh into the
// G-buffer. World matrices are recomputed from the object transforms.
func (r *Renderer) RasterizeScene(fb *FrameBuffer, sc *scene.Scene, store *texture.Store) error {
	r.Stats = Stats{}
	if fb.Width == 0 || fb.Height == 0 {
		return nil
	}

	projView := sc.ProjView(float64(fb.Width) / float64(fb.Height))
	frustum := NewFrustumFromMatrix(projView)

	var counters rasterCounters
	var err error
	sc.Walk(func(mesh *models.Mesh, world math3d.Mat4) {
		if err != nil || len(mesh.Faces) == 0 {
			return
		}
		if r.CullMeshes {
			r.Stats.MeshesTested++
			if !frustum.IntersectAABB(NewAABB(mesh.Bounds()).Transform(world)) {
				r.Stats.MeshesCulled++
				return
			}
		}
		r.Stats.MeshesDrawn++
		err = r.drawMesh(fb, mesh, world, projView, store, &counters)
	})

	r.Stats.Triangles = counters.triangles.Load()
	r.Stats.TrianglesCulled = counters.culled.Load()
	r.Stats.Fragments = counters.fragments.Load()
	return err
}

type rasterCounters struct {
	triangles atomic.Int64
	culled    atomic.Int64
	fragments atomic.Int64
}

// meshDraw is the per-mesh state shared by every triangle of the mesh.
type meshDraw struct {
	fb       *FrameBuffer
	mesh     *models.Mesh
	world    math3d.Mat4
	projView math3d.Mat4
	normal   math3d.Mat3

	// diffuse is set when the diffuse map has transparency; such
	// fragments are textured while rasterizing so alpha 0 can be dropped.
	diffuse *texture.Texture

	counters *rasterCounters
}

func (r *Renderer) drawMesh(fb *FrameBuffer, mesh *models.Mesh, world, projView math3d.Mat4, store *texture.Store, counters *rasterCounters) error {
	inv, err := world.Inverse()
	if err != nil {
		return fmt.Errorf("mesh %q: normal matrix: %w", mesh.Name, err)
	}

	d := &meshDraw{
		fb:       fb,
		mesh:     mesh,
		world:    world,
		projView: projView,
		normal:   inv.Transpose().Mat3(),
		counters: counters,
	}
	if id := mesh.Material.DiffuseMap; id.Exists() {
		if tex := store.Get(id); tex.Transparent {
			d.diffuse = tex
		}
	}

	n := len(mesh.Faces)
	if !r.ParallelTriangles || n < 2*trianglesPerChunk {
		d.drawFaces(0, n)
		return nil
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	parallelFor(n, min(workers, n/trianglesPerChunk), d.drawFaces)
	return nil
}

func (d *meshDraw) drawFaces(lo, hi int) {
	var culled, fragments int64
	for i := lo; i < hi; i++ {
		n, ok := d.drawFace(&d.mesh.Faces[i])
		if !ok {
			culled++
		}
		fragments += n
	}
	d.counters.triangles.Add(int64(hi - lo))
	d.counters.culled.Add(culled)
	d.counters.fragments.Add(fragments)
}

// vertex is a triangle corner after projection.
type vertex struct {
	clip   math3d.Vec4
	screen math3d.Vec3 // x, y in pixels; z is NDC depth
	world  math3d.Vec3
	normal math3d.Vec3
	uv     math3d.Vec3 // (u, v, 1)
}

// drawFace rasterizes one triangle. It returns the number of fragments
// written and false if the triangle was culled.
func (d *meshDraw) drawFace(f *models.Face) (int64, bool) {
	var v [3]vertex
	for i := range 3 {
		v[i].world = d.world.MulVec3(f.Positions[i])
		v[i].clip = d.projView.MulVec4(math3d.V4FromV3(v[i].world, 1))
	}
	if cullTriangle(v[0].clip, v[1].clip, v[2].clip) {
		return 0, false
	}

	w, h := float64(d.fb.Width), float64(d.fb.Height)
	for i := range 3 {
		ndc := v[i].clip.PerspectiveDivide()
		v[i].screen = math3d.V3((ndc.X+0.5)*w, (-ndc.Y+0.5)*h, ndc.Z)
		v[i].normal = d.normal.MulVec3(f.Normals[i])
		v[i].uv = f.UVs[i].Extend(1)
	}

	mat := d.mesh.Material
	var tangent, bitangent math3d.Vec3
	if mat.NormalMap.Exists() {
		tangent, bitangent = tangentFrame(f)
		tangent = d.normal.MulVec3(tangent)
		bitangent = d.normal.MulVec3(bitangent)
	}

	return d.raster(&v, mat, tangent, bitangent), true
}

// cullTriangle reports whether a clip-space triangle can be skipped:
// it faces away from the camera, a vertex is at or behind the eye, or all
// three vertices are outside the same frustum plane.
//
// A single vertex past the near plane (z < -w) does not reject the
// triangle. Triangles crossing the near plane still rasterize, and the
// per-fragment depth range test crops the part in front of it. Only w <= 0
// is rejected, since the perspective divide flips there.
func cullTriangle(c0, c1, c2 math3d.Vec4) bool {
	n := c1.Sub(c0).Vec3().Cross(c2.Sub(c0).Vec3()).Normalize()
	if c0.Vec3().Dot(n) <= 0 {
		return true
	}

	if c0.W <= 0 || c1.W <= 0 || c2.W <= 0 {
		return true
	}

	outside := func(test func(c math3d.Vec4) bool) bool {
		return test(c0) && test(c1) && test(c2)
	}
	return outside(func(c math3d.Vec4) bool { return c.Z > c.W }) ||
		outside(func(c math3d.Vec4) bool { return c.X < -c.W }) ||
		outside(func(c math3d.Vec4) bool { return c.X > c.W }) ||
		outside(func(c math3d.Vec4) bool { return c.Y < -c.W }) ||
		outside(func(c math3d.Vec4) bool { return c.Y > c.W }) ||
		outside(func(c math3d.Vec4) bool { return c.Z < -c.W })
}

// tangentFrame solves for the object-space tangent and bitangent of a
// face from its UV deltas. Faces with degenerate UVs get a zero frame.
func tangentFrame(f *models.Face) (tangent, bitangent math3d.Vec3) {
	e1 := f.Positions[1].Sub(f.Positions[0])
	e2 := f.Positions[2].Sub(f.Positions[0])
	duv1 := f.UVs[1].Sub(f.UVs[0])
	duv2 := f.UVs[2].Sub(f.UVs[0])

	det := duv1.X*duv2.Y - duv2.X*duv1.Y
	if det == 0 {
		return math3d.Vec3{}, math3d.Vec3{}
	}
	r := 1 / det
	tangent = e1.Scale(duv2.Y).Sub(e2.Scale(duv1.Y)).Scale(r)
	bitangent = e2.Scale(duv1.X).Sub(e1.Scale(duv2.X)).Scale(r)
	return tangent, bitangent
}

// screenTriangle holds the 2D corners of a projected triangle and the
// denominator of its barycentric weights.
type screenTriangle struct {
	x0, y0, x1, y1, x2, y2 float64
	denom                  float64
}

// newScreenTriangle returns false for triangles with zero area.
func newScreenTriangle(a, b, c math3d.Vec3) (screenTriangle, bool) {
	t := screenTriangle{x0: a.X, y0: a.Y, x1: b.X, y1: b.Y, x2: c.X, y2: c.Y}
	t.denom = (t.y1-t.y2)*(t.x0-t.x2) + (t.x2-t.x1)*(t.y0-t.y2)
	return t, t.denom != 0
}

// weights returns the barycentric coordinates of (px, py).
func (t *screenTriangle) weights(px, py float64) (w0, w1, w2 float64) {
	w0 = ((t.y1-t.y2)*(px-t.x2) + (t.x2-t.x1)*(py-t.y2)) / t.denom
	w1 = ((t.y2-t.y0)*(px-t.x2) + (t.x0-t.x2)*(py-t.y2)) / t.denom
	return w0, w1, 1 - w0 - w1
}

// raster fills the triangle's pixels. Barycentric weights are computed at
// integer pixel coordinates; a pixel is covered when all three are
// non-negative.
func (d *meshDraw) raster(v *[3]vertex, mat *models.Material, tangent, bitangent math3d.Vec3) int64 {
	tri, ok := newScreenTriangle(v[0].screen, v[1].screen, v[2].screen)
	if !ok {
		return 0
	}

	minX := max(0, int(math.Floor(min(tri.x0, tri.x1, tri.x2))))
	maxX := min(d.fb.Width-1, int(math.Ceil(max(tri.x0, tri.x1, tri.x2))))
	minY := max(0, int(math.Floor(min(tri.y0, tri.y1, tri.y2))))
	maxY := min(d.fb.Height-1, int(math.Ceil(max(tri.y0, tri.y1, tri.y2))))

	// Perspective-correct interpolation weights: attribute/w, then
	// divided by the interpolated 1/w.
	invW := [3]float64{1 / v[0].clip.W, 1 / v[1].clip.W, 1 / v[2].clip.W}

	base := Pixel{
		Ambient:     mat.Ambient,
		Diffuse:     mat.Diffuse,
		Specular:    mat.Specular,
		AmbientMap:  mat.AmbientMap,
		DiffuseMap:  mat.DiffuseMap,
		SpecularMap: mat.SpecularMap,
		NormalMap:   mat.NormalMap,
		Shininess:   mat.Shininess,
		Tangent:     tangent,
		Bitangent:   bitangent,
	}

	var written int64
	for y := minY; y <= maxY; y++ {
		py := float64(y)
		for x := minX; x <= maxX; x++ {
			px := float64(x)

			w0, w1, w2 := tri.weights(px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			depth := w0*v[0].screen.Z + w1*v[1].screen.Z + w2*v[2].screen.Z
			if depth < 0 || depth > 1 {
				continue
			}

			norm := 1 / (w0*invW[0] + w1*invW[1] + w2*invW[2])
			p0, p1, p2 := w0*invW[0]*norm, w1*invW[1]*norm, w2*invW[2]*norm

			pixel := base
			uv := math3d.Barycentric(v[0].uv, v[1].uv, v[2].uv, p0, p1, p2)
			pixel.UV = math3d.V2(uv.X, uv.Y)
			pixel.Normal = math3d.Barycentric(v[0].normal, v[1].normal, v[2].normal, p0, p1, p2)
			pixel.Position = math3d.Barycentric(v[0].world, v[1].world, v[2].world, p0, p1, p2)
			pixel.Depth = DepthCode(depth)

			if d.diffuse != nil {
				s := d.diffuse.Sample(pixel.UV)
				if s.W == 0 {
					continue
				}
				pixel.Diffuse = s.Vec3()
				pixel.DiffuseMap = 0
			}

			if d.fb.SetSmallerDepth(x, y, &pixel) {
				written++
			}
		}
	}
	return written
}
