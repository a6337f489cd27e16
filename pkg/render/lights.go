package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// SplatLights draws every point light whose position is inside the view
// frustum as a filled disc of the light's color, sized by the light's
// radius and depth tested against the shaded frame.
func SplatLights(fb *FrameBuffer, sc *scene.Scene) {
	if fb.Width == 0 || fb.Height == 0 {
		return
	}
	w, h := float64(fb.Width), float64(fb.Height)
	projView := sc.ProjView(w / h)
	scale := w / math.Tan(sc.Camera.FOV/2)
	marker := math3d.Splat3(1)

	for i := range sc.Lights {
		l := &sc.Lights[i]
		if l.Global {
			continue
		}
		c := projView.MulVec4(math3d.V4FromV3(l.Position, 1))
		if !c.InsideClip() {
			continue
		}

		ndc := c.PerspectiveDivide()
		cx := int(math.Floor((ndc.X + 0.5) * w))
		cy := int(math.Floor((-ndc.Y + 0.5) * h))
		r := math.Max(0, math.Min(w, l.Radius/c.W*scale))
		depth := DepthCode(ndc.Z)

		ri := int(r)
		for dy := -ri; dy <= ri; dy++ {
			for dx := -ri; dx <= ri; dx++ {
				if !inDisc(dx, dy, r) {
					continue
				}
				x, y := cx+dx, cy+dy
				if !fb.InBounds(x, y) {
					continue
				}
				p := fb.At(x, y)
				if p.Depth >= depth {
					p.Diffuse = l.Color
					p.Normal = marker
				}
			}
		}
	}
}

// inDisc reports whether the offset (dx, dy) is within radius r, boundary
// included.
func inDisc(dx, dy int, r float64) bool {
	return float64(dx*dx+dy*dy) <= r*r
}
