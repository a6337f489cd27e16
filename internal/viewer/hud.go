package viewer

import (
	"fmt"
	"time"
)

// HUD tracks the frame rate and formats the status line.
type HUD struct {
	title     string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD.
func NewHUD(title string, polyCount int) *HUD {
	return &HUD{
		title:     title,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS(now time.Time) {
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 {
	return h.fps
}

// Line returns the status line for the controller's current state.
func (h *HUD) Line(c *Controller) string {
	mode := "fly"
	if c.Orbit {
		mode = "orbit"
	}
	return fmt.Sprintf(" %.0f FPS | %s | %d polys | %s | %s ",
		h.fps, h.title, h.polyCount, c.Channel, mode)
}
