// Package render turns a scene into pixels: triangles are rasterized into a
// G-buffer, shaded in a deferred pass, and light positions are splatted on
// top.
package render

import (
	"runtime"
	"sync/atomic"
)

// FrameBuffer is the G-buffer: one Pixel per screen position, row-major,
// with a lock word per pixel for concurrent depth-tested writes. It must
// not be copied after first use.
type FrameBuffer struct {
	Width  int
	Height int

	pixels []Pixel
	locks  []atomic.Uint32
}

// NewFrameBuffer creates a cleared frame buffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the buffer for a new size and clears it.
func (fb *FrameBuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	fb.Width = width
	fb.Height = height
	fb.pixels = make([]Pixel, width*height)
	fb.locks = make([]atomic.Uint32, width*height)
	fb.clearRange(0, height)
}

// Clear resets every pixel, in parallel over rows.
func (fb *FrameBuffer) Clear(workers int) {
	parallelFor(fb.Height, workers, fb.clearRange)
}

func (fb *FrameBuffer) clearRange(y0, y1 int) {
	empty := ResetPixel()
	for i := y0 * fb.Width; i < y1*fb.Width; i++ {
		fb.pixels[i] = empty
	}
}

// InBounds reports whether (x, y) is inside the buffer.
func (fb *FrameBuffer) InBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// At returns the pixel at (x, y). It panics if the position is out of
// bounds.
func (fb *FrameBuffer) At(x, y int) *Pixel {
	return &fb.pixels[y*fb.Width+x]
}

// Pixels returns the row-major pixel slice.
func (fb *FrameBuffer) Pixels() []Pixel {
	return fb.pixels
}

// SetSmallerDepth stores p at (x, y) if it is nearer than the pixel already
// there, and reports whether it did. Compare and copy happen under the
// pixel's lock, so concurrent writers leave the nearest fragment regardless
// of order. Equal depths go to the fragment that precedes; fragments at
// EmptyDepth are never stored.
func (fb *FrameBuffer) SetSmallerDepth(x, y int, p *Pixel) bool {
	i := y*fb.Width + x
	lock := &fb.locks[i]
	for !lock.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}

	dst := &fb.pixels[i]
	nearer := p.Depth < dst.Depth ||
		(p.Depth == dst.Depth && p.Depth != EmptyDepth && precedes(p, dst))
	if nearer {
		*dst = *p
	}

	lock.Store(0)
	return nearer
}
