package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/texture"
)

// EmptyDepth is the depth code of a cleared pixel. Depth code 1.0 maps
// here too, so only fragments strictly nearer than the far plane are kept.
const EmptyDepth uint32 = 0xFFFFFFFE

// Pixel is one G-buffer cell: the surface attributes of the nearest
// fragment, later overwritten in place by the shading pass.
type Pixel struct {
	Ambient  math3d.Vec3
	Diffuse  math3d.Vec3
	Specular math3d.Vec3

	AmbientMap  texture.ID
	DiffuseMap  texture.ID
	SpecularMap texture.ID
	NormalMap   texture.ID
	Shininess   int

	UV        math3d.Vec2
	Normal    math3d.Vec3
	Tangent   math3d.Vec3
	Bitangent math3d.Vec3
	Position  math3d.Vec3 // world space

	Depth uint32
}

// ResetPixel returns an empty cell.
func ResetPixel() Pixel {
	return Pixel{Depth: EmptyDepth}
}

// DepthCode quantizes a depth in [0, 1] to the integer compared by the
// depth test. Values outside the range are clamped.
func DepthCode(d float64) uint32 {
	d = math.Max(0, math.Min(1, d))
	return uint32(math.Round(d * float64(EmptyDepth)))
}

// precedes is a total order over fragments of equal depth. The depth test
// keeps the preceding one, so ties resolve the same for any write order.
func precedes(a, b *Pixel) bool {
	ka, kb := a.tieKey(), b.tieKey()
	for i := range ka {
		if ka[i] != kb[i] {
			return ka[i] < kb[i]
		}
	}
	return false
}

func (p *Pixel) tieKey() [28]float64 {
	return [28]float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Normal.X, p.Normal.Y, p.Normal.Z,
		p.UV.X, p.UV.Y,
		p.Diffuse.X, p.Diffuse.Y, p.Diffuse.Z,
		p.Ambient.X, p.Ambient.Y, p.Ambient.Z,
		p.Specular.X, p.Specular.Y, p.Specular.Z,
		p.Tangent.X, p.Tangent.Y, p.Tangent.Z,
		p.Bitangent.X, p.Bitangent.Y, p.Bitangent.Z,
		float64(p.AmbientMap), float64(p.DiffuseMap),
		float64(p.SpecularMap), float64(p.NormalMap),
		float64(p.Shininess),
	}
}
