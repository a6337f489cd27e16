package render

import (
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/models"
	"github.com/taigrr/lumen/pkg/scene"
	"github.com/taigrr/lumen/pkg/texture"
)

func TestInDisc(t *testing.T) {
	tests := []struct {
		dx, dy int
		r      float64
		want   bool
	}{
		{0, 0, 0, true},
		{1, 0, 0, false},
		{3, 4, 5, true},
		{3, 4, 4.99, false},
		{-2, 2, 3, true},
	}
	for _, tt := range tests {
		if got := inDisc(tt.dx, tt.dy, tt.r); got != tt.want {
			t.Errorf("inDisc(%d, %d, %v) = %v, want %v", tt.dx, tt.dy, tt.r, got, tt.want)
		}
	}
}

func redLight(pos math3d.Vec3) scene.Light {
	l := scene.NewLight(pos)
	l.Color = math3d.V3(1, 0, 0)
	return l
}

func splatted(p *Pixel) bool {
	return p.Diffuse == math3d.V3(1, 0, 0) && p.Normal == math3d.Splat3(1)
}

func TestSplatLights(t *testing.T) {
	sc := scene.New()
	sc.AddLight(redLight(math3d.Vec3{}))
	fb := NewFrameBuffer(testSize, testSize)
	SplatLights(fb, sc)

	// Radius 0.2 at distance 5 with a 60 degree view covers about 4.4
	// pixels around the center.
	tests := []struct {
		x, y int
		want bool
	}{
		{32, 32, true},
		{36, 32, true},
		{37, 32, false},
		{32, 28, true},
		{35, 35, true},
		{36, 36, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := splatted(fb.At(tt.x, tt.y)); got != tt.want {
			t.Errorf("pixel (%d, %d) splatted = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSplatLightsSkipped(t *testing.T) {
	tests := []struct {
		name  string
		light scene.Light
	}{
		{"behind camera", redLight(math3d.V3(0, 0, 10))},
		{"outside view", redLight(math3d.V3(50, 0, 0))},
		{"global", func() scene.Light {
			l := scene.NewGlobalLight(math3d.V3(0, 0, 1))
			l.Color = math3d.V3(1, 0, 0)
			return l
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := scene.New()
			sc.AddLight(tt.light)
			fb := NewFrameBuffer(testSize, testSize)
			SplatLights(fb, sc)
			for i := range fb.Pixels() {
				if splatted(&fb.Pixels()[i]) {
					t.Fatalf("pixel %d was splatted", i)
				}
			}
		})
	}
}

func TestSplatLightsOccluded(t *testing.T) {
	front := models.NewLeaf(models.NewQuad(1, nil))
	front.Position = math3d.V3(0, 0, 1)

	sc := scene.New()
	sc.AddObject(front)
	sc.AddLight(redLight(math3d.Vec3{}))

	fb := NewFrameBuffer(testSize, testSize)
	if err := NewRenderer().Render(fb, sc, texture.NewStore()); err != nil {
		t.Fatal(err)
	}
	if splatted(fb.At(32, 32)) {
		t.Error("light behind the quad was drawn over it")
	}

	// Moved in front of the quad it shows up again.
	sc.Lights[0].Position = math3d.V3(0, 0, 2)
	if err := NewRenderer().Render(fb, sc, texture.NewStore()); err != nil {
		t.Fatal(err)
	}
	if !splatted(fb.At(32, 32)) {
		t.Error("light in front of the quad was not drawn")
	}
}

func TestSplatLightsDepthBoundary(t *testing.T) {
	sc := scene.New()
	sc.AddLight(redLight(math3d.Vec3{}))
	fb := NewFrameBuffer(testSize, testSize)

	c := sc.ProjView(1).MulVec4(math3d.V4FromV3(math3d.Vec3{}, 1))
	code := DepthCode(c.PerspectiveDivide().Z)

	// A surface exactly at the light's depth is drawn over; one code
	// nearer hides the light.
	fb.At(32, 32).Depth = code
	fb.At(33, 32).Depth = code - 1
	SplatLights(fb, sc)

	if !splatted(fb.At(32, 32)) {
		t.Error("pixel at the light's depth was not splatted")
	}
	if splatted(fb.At(33, 32)) {
		t.Error("pixel nearer than the light was splatted")
	}
}
