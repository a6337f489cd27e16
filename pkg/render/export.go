package render

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
)

const displayGamma = 2.2

// ToImage converts the shaded frame to an 8-bit image with gamma 2.2.
// Pixels where nothing was drawn are fully transparent.
func (fb *FrameBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i := range fb.pixels {
		p := &fb.pixels[i]
		o := i * 4
		img.Pix[o+0] = gammaByte(p.Diffuse.X)
		img.Pix[o+1] = gammaByte(p.Diffuse.Y)
		img.Pix[o+2] = gammaByte(p.Diffuse.Z)
		if !p.Normal.IsZero() {
			img.Pix[o+3] = 255
		}
	}
	return img
}

// gammaByte encodes a linear channel value. Negative values clamp to 0.
func gammaByte(c float64) uint8 {
	if c <= 0 || math.IsNaN(c) {
		return 0
	}
	return uint8(math.Min(255, math.Pow(c, 1/displayGamma)*255))
}

// SavePNG writes the frame to path as a PNG file.
func (fb *FrameBuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
