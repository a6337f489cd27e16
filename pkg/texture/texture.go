// Package texture holds decoded image textures and the store that owns them.
package texture

import (
	"image"
	"image/color"
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// ID is a handle to a texture owned by a Store. The zero ID means "no
// texture"; stores issue IDs starting at 1.
type ID uint32

// Exists reports whether the handle refers to a texture.
func (id ID) Exists() bool {
	return id != 0
}

// Mode selects how decoded samples are interpreted.
type Mode int

const (
	ModeColor  Mode = iota // 8-bit channels mapped to [0,1]
	ModeNormal             // 8-bit channels mapped to [-1,1] (alpha stays [0,1])
	ModeLinear             // native precision, no remapping
)

func (m Mode) String() string {
	switch m {
	case ModeColor:
		return "color"
	case ModeNormal:
		return "normal"
	case ModeLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// Texture is a decoded RGBA image. Textures are immutable once stored.
type Texture struct {
	Width       int
	Height      int
	Pixels      []math3d.Vec4 // Row-major, top row first
	Transparent bool          // Any alpha != 1
	id          ID
}

// ID returns the handle the owning store assigned.
func (t *Texture) ID() ID {
	return t.id
}

// At returns the texel at (x, y) without wrapping.
func (t *Texture) At(x, y int) math3d.Vec4 {
	return t.Pixels[y*t.Width+x]
}

// Sample returns the texel containing uv, wrapping in both directions.
// v runs up from the bottom of the image, so v in [0, 1/H) is the last row.
func (t *Texture) Sample(uv math3d.Vec2) math3d.Vec4 {
	x := math3d.EuclidMod(int(math.Floor(uv.X*float64(t.Width))), t.Width)
	y := math3d.EuclidMod(t.Height-1-int(math.Floor(uv.Y*float64(t.Height))), t.Height)
	return t.Pixels[y*t.Width+x]
}

// fromImage converts img into texel data according to mode.
func fromImage(img image.Image, mode Mode) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]math3d.Vec4, width*height),
	}

	for y := range height {
		for x := range width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			px := convert(c, mode)
			if px.W != 1 {
				tex.Transparent = true
			}
			tex.Pixels[y*width+x] = px
		}
	}

	return tex
}

func convert(c color.Color, mode Mode) math3d.Vec4 {
	switch mode {
	case ModeLinear:
		n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
		return math3d.V4(
			float64(n.R)/0xffff,
			float64(n.G)/0xffff,
			float64(n.B)/0xffff,
			float64(n.A)/0xffff,
		)
	case ModeNormal:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return math3d.V4(
			float64(n.R)/255*2-1,
			float64(n.G)/255*2-1,
			float64(n.B)/255*2-1,
			float64(n.A)/255,
		)
	default:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return math3d.V4(
			float64(n.R)/255,
			float64(n.G)/255,
			float64(n.B)/255,
			float64(n.A)/255,
		)
	}
}

// placeholder is substituted for textures that fail to load. (0,0,1) is the
// flat tangent-space normal, so a missing normal map leaves shading intact.
func placeholder() *Texture {
	return &Texture{
		Width:  1,
		Height: 1,
		Pixels: []math3d.Vec4{math3d.V4(0, 0, 1, 1)},
	}
}

// NewChecker creates a procedural checkerboard image.
func NewChecker(width, height, checkSize int, c1, c2 color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				img.Set(x, y, c1)
			} else {
				img.Set(x, y, c2)
			}
		}
	}
	return img
}
