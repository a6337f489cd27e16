package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/models"
	"github.com/taigrr/lumen/pkg/scene"
	"github.com/taigrr/lumen/pkg/texture"
)

const testSize = 64

// triangleObject wraps one face in a leaf. Missing normals are filled with
// the face normal.
func triangleObject(p0, p1, p2 math3d.Vec3, mat *models.Material) *models.Object {
	mesh := models.NewMesh("tri", []models.Face{{Positions: [3]math3d.Vec3{p0, p1, p2}}}, mat)
	mesh.FillMissingNormals()
	return models.NewLeaf(mesh)
}

// rasterize runs only the geometry pass over a fresh frame buffer.
func rasterize(t *testing.T, sc *scene.Scene, store *texture.Store, cullMeshes bool) (*FrameBuffer, Stats) {
	t.Helper()
	fb := NewFrameBuffer(testSize, testSize)
	r := NewRenderer()
	r.CullMeshes = cullMeshes
	if err := r.RasterizeScene(fb, sc, store); err != nil {
		t.Fatalf("RasterizeScene: %v", err)
	}
	return fb, r.Stats
}

func coverage(fb *FrameBuffer) int {
	n := 0
	for _, p := range fb.Pixels() {
		if !p.Normal.IsZero() {
			n++
		}
	}
	return n
}

func TestScreenTriangleWeights(t *testing.T) {
	tri, ok := newScreenTriangle(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0))
	if !ok {
		t.Fatal("triangle reported as degenerate")
	}

	tests := []struct {
		name       string
		px, py     float64
		w0, w1, w2 float64
	}{
		{"vertex 0", 0, 0, 1, 0, 0},
		{"vertex 1", 1, 0, 0, 1, 0},
		{"vertex 2", 0, 1, 0, 0, 1},
		{"centroid", 1.0 / 3, 1.0 / 3, 1.0 / 3, 1.0 / 3, 1.0 / 3},
		{"outside", -1, -1, 3, -1, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w0, w1, w2 := tri.weights(tc.px, tc.py)
			if math.Abs(w0-tc.w0) > 1e-9 || math.Abs(w1-tc.w1) > 1e-9 || math.Abs(w2-tc.w2) > 1e-9 {
				t.Errorf("weights(%v, %v) = %v, %v, %v; want %v, %v, %v",
					tc.px, tc.py, w0, w1, w2, tc.w0, tc.w1, tc.w2)
			}
		})
	}

	if _, ok := newScreenTriangle(math3d.V3(0, 0, 0), math3d.V3(1, 1, 0), math3d.V3(2, 2, 0)); ok {
		t.Error("collinear triangle should be degenerate")
	}
}

func TestBackfaceCulling(t *testing.T) {
	a, b, c := math3d.V3(-0.5, -0.5, 0), math3d.V3(0.5, -0.5, 0), math3d.V3(0.5, 0.5, 0)

	tests := []struct {
		name      string
		obj       *models.Object
		wantDrawn bool
	}{
		{"counter-clockwise", triangleObject(a, b, c, nil), true},
		{"clockwise", triangleObject(a, c, b, nil), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sc := scene.New()
			sc.AddObject(tc.obj)
			fb, stats := rasterize(t, sc, texture.NewStore(), true)

			if got := coverage(fb) > 0; got != tc.wantDrawn {
				t.Errorf("drawn = %v (coverage %d), want %v", got, coverage(fb), tc.wantDrawn)
			}
			if !tc.wantDrawn && stats.TrianglesCulled != 1 {
				t.Errorf("TrianglesCulled = %d, want 1", stats.TrianglesCulled)
			}
		})
	}
}

func TestClipRejection(t *testing.T) {
	tests := []struct {
		name      string
		p         [3]math3d.Vec3
		wantDrawn bool
	}{
		{"behind camera", [3]math3d.Vec3{{X: -0.5, Y: -0.5, Z: 10}, {X: 0.5, Y: -0.5, Z: 10}, {X: 0.5, Y: 0.5, Z: 10}}, false},
		{"behind camera reversed", [3]math3d.Vec3{{X: -0.5, Y: -0.5, Z: 10}, {X: 0.5, Y: 0.5, Z: 10}, {X: 0.5, Y: -0.5, Z: 10}}, false},
		{"vertex behind eye", [3]math3d.Vec3{{X: -1, Y: -1}, {Y: 0, Z: 6}, {X: 1, Y: -1}}, false},
		{"beyond far plane", [3]math3d.Vec3{{X: -0.5, Y: -0.5, Z: -600}, {X: 0.5, Y: -0.5, Z: -600}, {X: 0.5, Y: 0.5, Z: -600}}, false},
		{"outside right plane", [3]math3d.Vec3{{X: 29.5, Y: -0.5}, {X: 30.5, Y: -0.5}, {X: 30.5, Y: 0.5}}, false},
		{"straddles near plane", [3]math3d.Vec3{{X: -1, Y: -1, Z: 4.95}, {X: 1, Y: -1, Z: 4.95}, {X: 0, Y: 1, Z: -5}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sc := scene.New()
			sc.AddObject(triangleObject(tc.p[0], tc.p[1], tc.p[2], nil))
			fb, _ := rasterize(t, sc, texture.NewStore(), false)

			if got := coverage(fb) > 0; got != tc.wantDrawn {
				t.Errorf("drawn = %v (coverage %d), want %v", got, coverage(fb), tc.wantDrawn)
			}
		})
	}
}

func TestCullTriangleNearStraddle(t *testing.T) {
	// One vertex in front of the near plane, two well inside.
	c0 := math3d.V4(0, 0, -0.15, 0.05)
	c1 := math3d.V4(-1, -1, 4.8, 5)
	c2 := math3d.V4(1, -1, 4.8, 5)
	if cullTriangle(c0, c2, c1) && cullTriangle(c0, c1, c2) {
		t.Error("triangle crossing the near plane was culled in both windings")
	}
	behind := math3d.V4(0, 0, -1, -1)
	if !cullTriangle(behind, c1, c2) || !cullTriangle(behind, c2, c1) {
		t.Error("triangle with a vertex behind the eye should be culled")
	}
}

func TestPerspectiveCorrectInterpolation(t *testing.T) {
	// A triangle tilted in depth with UVs equal to its x and y coordinates.
	// Affine screen-space interpolation would bend the mapping.
	p := [3]math3d.Vec3{math3d.V3(-1, -1, -1), math3d.V3(1, -1, 1), math3d.V3(0, 1, 0)}
	mesh := models.NewMesh("tilted", []models.Face{{
		Positions: p,
		UVs:       [3]math3d.Vec2{math3d.V2(-1, -1), math3d.V2(1, -1), math3d.V2(0, 1)},
	}}, nil)
	mesh.FillMissingNormals()

	sc := scene.New()
	sc.AddObject(models.NewLeaf(mesh))
	fb, _ := rasterize(t, sc, texture.NewStore(), true)
	if coverage(fb) == 0 {
		t.Fatal("tilted triangle not drawn")
	}

	projView := sc.ProjView(1)
	for y := range fb.Height {
		for x := range fb.Width {
			px := fb.At(x, y)
			if px.Normal.IsZero() {
				continue
			}
			if math.Abs(px.UV.X-px.Position.X) > 1e-9 || math.Abs(px.UV.Y-px.Position.Y) > 1e-9 {
				t.Fatalf("pixel (%d, %d): uv %v does not match position %v", x, y, px.UV, px.Position)
			}
			// The interpolated position projects back onto its own pixel.
			ndc := projView.MulVec4(math3d.V4FromV3(px.Position, 1)).PerspectiveDivide()
			sx, sy := (ndc.X+0.5)*testSize, (-ndc.Y+0.5)*testSize
			if math.Abs(sx-float64(x)) > 1e-6 || math.Abs(sy-float64(y)) > 1e-6 {
				t.Fatalf("pixel (%d, %d) reprojects to (%f, %f)", x, y, sx, sy)
			}
		}
	}

	// The screen-space centroid is covered.
	var cx, cy float64
	for _, v := range p {
		ndc := projView.MulVec4(math3d.V4FromV3(v, 1)).PerspectiveDivide()
		cx += (ndc.X + 0.5) * testSize / 3
		cy += (-ndc.Y + 0.5) * testSize / 3
	}
	if fb.At(int(math.Round(cx)), int(math.Round(cy))).Normal.IsZero() {
		t.Errorf("centroid pixel (%.1f, %.1f) not covered", cx, cy)
	}
}

func TestRenderOrderIndependence(t *testing.T) {
	red := models.DefaultMaterial()
	red.Diffuse = math3d.V3(1, 0, 0)
	green := models.DefaultMaterial()
	green.Diffuse = math3d.V3(0, 1, 0)

	build := func(nearFirst bool) *scene.Scene {
		near := models.NewLeaf(models.NewQuad(1, red))
		near.Position = math3d.V3(0.2, 0, 1.5)
		far := models.NewLeaf(models.NewCube(2, green))

		sc := scene.New()
		if nearFirst {
			sc.AddObject(near)
			sc.AddObject(far)
		} else {
			sc.AddObject(far)
			sc.AddObject(near)
		}
		sc.AddLight(scene.NewLight(math3d.V3(1, 2, 3)))
		return sc
	}

	frames := make([]*FrameBuffer, 2)
	for i, nearFirst := range []bool{true, false} {
		fb := NewFrameBuffer(testSize, testSize)
		if err := NewRenderer().Render(fb, build(nearFirst), texture.NewStore()); err != nil {
			t.Fatalf("Render: %v", err)
		}
		frames[i] = fb
	}

	a, b := frames[0].Pixels(), frames[1].Pixels()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pixel %d differs between draw orders: %+v vs %+v", i, a[i], b[i])
		}
	}
	// The nearer quad wins at the screen center.
	if z := frames[0].At(testSize/2, testSize/2).Position.Z; math.Abs(z-1.5) > 1e-9 {
		t.Errorf("center pixel at z = %f, want the near quad at 1.5", z)
	}
}

func TestParallelTrianglesMatchSerial(t *testing.T) {
	sc := scene.New()
	sc.AddObject(models.NewLeaf(models.NewSphere(1.5, 24, 32, nil)))
	store := texture.NewStore()

	serial := NewFrameBuffer(testSize, testSize)
	r := NewRenderer()
	r.Workers = 1
	r.ParallelTriangles = false
	if err := r.RasterizeScene(serial, sc, store); err != nil {
		t.Fatal(err)
	}

	parallel := NewFrameBuffer(testSize, testSize)
	r = NewRenderer()
	r.Workers = 8
	if err := r.RasterizeScene(parallel, sc, store); err != nil {
		t.Fatal(err)
	}

	// The same fragment wins regardless of which worker wrote first,
	// ties included.
	for y := range testSize {
		for x := range testSize {
			if a, b := serial.At(x, y), parallel.At(x, y); *a != *b {
				t.Fatalf("pixel (%d, %d) differs: serial %+v parallel %+v", x, y, *a, *b)
			}
		}
	}
	if want := int64(24*32*2 - 2*32); r.Stats.Triangles != want {
		t.Errorf("Triangles = %d, want %d", r.Stats.Triangles, want)
	}
}

func TestSingularWorldMatrix(t *testing.T) {
	flat := models.NewLeaf(models.NewQuad(1, nil))
	flat.Scale = math3d.V3(1, 0, 1)

	sc := scene.New()
	sc.AddObject(flat)
	err := NewRenderer().Render(NewFrameBuffer(8, 8), sc, texture.NewStore())
	if !errors.Is(err, math3d.ErrSingularMatrix) {
		t.Errorf("Render error = %v, want ErrSingularMatrix", err)
	}
}

func TestMeshCulling(t *testing.T) {
	visible := models.NewLeaf(models.NewCube(1, nil))
	hidden := models.NewLeaf(models.NewCube(1, nil))
	hidden.Position = math3d.V3(0, 0, 20) // behind the camera

	sc := scene.New()
	sc.AddObject(visible)
	sc.AddObject(hidden)
	sc.AddObject(models.Empty("nothing"))

	_, stats := rasterize(t, sc, texture.NewStore(), true)
	if stats.MeshesTested != 2 || stats.MeshesCulled != 1 || stats.MeshesDrawn != 1 {
		t.Errorf("stats = %+v, want 2 tested, 1 culled, 1 drawn", stats)
	}
}

func TestTransparentDiffuse(t *testing.T) {
	store := texture.NewStore()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 0})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})
	tex := store.Add("half", img, texture.ModeColor)
	if !tex.Transparent {
		t.Fatal("texture with a clear texel should be transparent")
	}

	mat := models.DefaultMaterial()
	mat.DiffuseMap = tex.ID()
	sc := scene.New()
	sc.AddObject(models.NewLeaf(models.NewQuad(1, mat)))
	fb, _ := rasterize(t, sc, store, true)

	row := testSize / 2
	for x := 0; x <= 30; x++ {
		if !fb.At(x, row).Normal.IsZero() {
			t.Fatalf("pixel (%d, %d) in the clear half was drawn", x, row)
		}
	}
	for x := 34; x <= 42; x++ {
		p := fb.At(x, row)
		if p.Normal.IsZero() {
			t.Fatalf("pixel (%d, %d) in the opaque half was not drawn", x, row)
		}
		if p.Diffuse != math3d.V3(1, 0, 0) || p.DiffuseMap.Exists() {
			t.Fatalf("pixel (%d, %d): diffuse %v map %d, want sampled red and no map", x, row, p.Diffuse, p.DiffuseMap)
		}
	}
}

func TestNormalMapTangentFrame(t *testing.T) {
	store := texture.NewStore()
	mat := models.DefaultMaterial()
	mat.NormalMap = store.Add("flat", image.NewNRGBA(image.Rect(0, 0, 1, 1)), texture.ModeNormal).ID()

	sc := scene.New()
	sc.AddObject(models.NewLeaf(models.NewQuad(1, mat)))
	fb, _ := rasterize(t, sc, store, true)

	p := fb.At(testSize/2+4, testSize/2+4)
	if p.Normal.IsZero() {
		t.Fatal("quad not drawn")
	}
	// UV u runs along +X and v along +Y on the quad.
	if got := p.Tangent.Normalize(); got.Sub(math3d.V3(1, 0, 0)).Len() > 1e-9 {
		t.Errorf("tangent = %v, want +X", got)
	}
	if got := p.Bitangent.Normalize(); got.Sub(math3d.V3(0, 1, 0)).Len() > 1e-9 {
		t.Errorf("bitangent = %v, want +Y", got)
	}

	plain := models.NewLeaf(models.NewQuad(1, nil))
	sc.Objects[0] = plain
	fb, _ = rasterize(t, sc, store, true)
	if p := fb.At(testSize/2+4, testSize/2+4); !p.Tangent.IsZero() {
		t.Errorf("tangent without a normal map = %v, want zero", p.Tangent)
	}
}

func BenchmarkRender(b *testing.B) {
	sc := scene.New()
	sc.AddObject(models.NewLeaf(models.NewSphere(1.5, 32, 48, nil)))
	sc.AddLight(scene.NewLight(math3d.V3(2, 2, 2)))
	sc.AddLight(scene.NewGlobalLight(math3d.V3(0, 1, 1)))
	store := texture.NewStore()

	for _, size := range []struct {
		name string
		w, h int
	}{{"160x120", 160, 120}, {"720x480", 720, 480}} {
		b.Run(size.name, func(b *testing.B) {
			fb := NewFrameBuffer(size.w, size.h)
			r := NewRenderer()
			for b.Loop() {
				if err := r.Render(fb, sc, store); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
