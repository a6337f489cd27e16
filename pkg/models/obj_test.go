package models

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/texture"
)

const quadOBJ = `# two materials, one quad each
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
o left
usemtl red
f 1/1/1 2/2/1 3/3/1 4/4/1
o right
usemtl brick
f -4/-4 -3/-3 -2/-2
`

const sceneMTL = `newmtl red
Ka 0.2 0 0
Kd 1 0 0
Ks 0.5 0.5 0.5
Ns 64

newmtl brick
Kd 0.8 0.8 0.8
map_Kd brick.png
map_Ks -bm 1 brick_spec.png
map_Bump brick_normal.png
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range 4 {
		img.Set(i%2, i/2, color.NRGBA{200, 100, 50, 255})
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scene.obj", quadOBJ)
	writeFile(t, dir, "scene.mtl", sceneMTL)
	writeImage(t, dir, "brick.png")
	writeImage(t, dir, "brick_spec.png")
	writeImage(t, dir, "brick_normal.png")

	store := texture.NewStore()
	obj, err := LoadOBJ(filepath.Join(dir, "scene.obj"), store)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}

	meshes := obj.Meshes()
	if len(meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(meshes))
	}
	if obj.TriangleCount() != 3 {
		t.Errorf("TriangleCount = %d, want 3", obj.TriangleCount())
	}

	red, brick := meshes[0], meshes[1]
	if red.Material.Name != "red" || brick.Material.Name != "brick" {
		t.Fatalf("materials = %q, %q", red.Material.Name, brick.Material.Name)
	}
	if red.Name != "left" {
		t.Errorf("mesh name = %q, want left", red.Name)
	}

	t.Run("material values", func(t *testing.T) {
		m := red.Material
		if m.Diffuse != math3d.V3(1, 0, 0) {
			t.Errorf("Kd = %v", m.Diffuse)
		}
		if m.Ambient != math3d.V3(0.2, 0, 0) {
			t.Errorf("Ka = %v", m.Ambient)
		}
		if m.Shininess != 64 {
			t.Errorf("Ns = %d", m.Shininess)
		}
		if m.DiffuseMap.Exists() {
			t.Error("red should have no diffuse map")
		}
	})

	t.Run("texture maps", func(t *testing.T) {
		m := brick.Material
		if !m.DiffuseMap.Exists() || !m.SpecularMap.Exists() || !m.NormalMap.Exists() {
			t.Fatalf("maps not loaded: %+v", m)
		}
		if store.Len() != 3 {
			t.Errorf("store has %d textures, want 3", store.Len())
		}
		// Normal maps are decoded to the signed range.
		n := store.Get(m.NormalMap).At(0, 0)
		if n.X <= 0.5 || n.Z >= 0 {
			t.Errorf("normal map texel = %v, want signed decode", n)
		}
	})

	t.Run("fan triangulation", func(t *testing.T) {
		f := red.Faces[1]
		want := [3]math3d.Vec3{{X: 0}, {X: 1, Y: 1}, {Y: 1}}
		if f.Positions != want {
			t.Errorf("second fan triangle = %v, want %v", f.Positions, want)
		}
		if f.UVs[1] != math3d.V2(1, 1) {
			t.Errorf("uv = %v, want (1, 1)", f.UVs[1])
		}
	})

	t.Run("negative indices and filled normals", func(t *testing.T) {
		f := brick.Faces[0]
		if f.Positions[0] != math3d.V3(0, 0, 0) {
			t.Errorf("v -4 = %v, want origin", f.Positions[0])
		}
		if f.Normals[0] != math3d.V3(0, 0, 1) {
			t.Errorf("filled normal = %v, want (0, 0, 1)", f.Normals[0])
		}
	})
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "# nothing\n", wantErr: ErrNoFaces},
		{name: "vertices only", input: "v 0 0 0\nv 1 0 0\n", wantErr: ErrNoFaces},
		{name: "index out of range", input: "v 0 0 0\nf 1 2 3\n"},
		{name: "bad vertex", input: "v 0 zero 0\n"},
		{name: "short face", input: "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.input), t.TempDir(), texture.NewStore())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseOBJUnknownMaterial(t *testing.T) {
	input := "v 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl missing\nf 1 2 3\n"
	obj, err := ParseOBJ(strings.NewReader(input), t.TempDir(), texture.NewStore())
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	meshes := obj.Meshes()
	if len(meshes) != 1 || meshes[0].Material.Name != "default" {
		t.Errorf("faces with an unknown material should use the default material")
	}
}

func TestParseMTLMissingTexture(t *testing.T) {
	store := texture.NewStore()
	mats, err := ParseMTL(strings.NewReader("newmtl m\nmap_Kd nope.png\n"), t.TempDir(), store)
	if err != nil {
		t.Fatalf("ParseMTL: %v", err)
	}
	if len(mats) != 1 || !mats[0].DiffuseMap.Exists() {
		t.Fatal("missing texture should still yield a handle")
	}
	tex := store.Get(mats[0].DiffuseMap)
	if tex.Width != 1 || tex.Height != 1 {
		t.Errorf("placeholder is %dx%d, want 1x1", tex.Width, tex.Height)
	}
}
