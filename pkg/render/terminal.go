package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalView draws one G-buffer channel as terminal cells. Each cell
// shows two frame buffer rows with the upper half block: foreground is the
// top pixel, background the bottom one.
type TerminalView struct {
	Channel Channel
	buf     []float32
}

// FrameSize returns the frame buffer size that fills cols × rows cells.
func FrameSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Draw blits fb into area of scr. The frame buffer height should be twice
// the area height.
func (v *TerminalView) Draw(scr uv.Screen, area uv.Rectangle, fb *FrameBuffer) {
	v.buf = fb.Channel(v.Channel, v.buf)

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: v.pixelColor(fb, x, topY),
					Bg: v.pixelColor(fb, x, topY+1),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// pixelColor returns the displayed color of (x, y) after the channel's
// post-processing, or nil where nothing was drawn.
func (v *TerminalView) pixelColor(fb *FrameBuffer, x, y int) color.Color {
	if !fb.InBounds(x, y) {
		return nil
	}
	i := y*fb.Width + x
	if fb.pixels[i].Normal.IsZero() {
		return nil // Transparent = no color
	}
	c := PostProcess(v.Channel, [4]float32(v.buf[i*4:i*4+4]))
	return color.RGBA{toByte(c[0]), toByte(c[1]), toByte(c[2]), 255}
}

func toByte(c float32) uint8 {
	return uint8(c*255 + 0.5)
}
