package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
	"github.com/taigrr/lumen/pkg/texture"
)

// Shading defaults for pixels without a specular map.
const (
	defaultAmbient = 0.1
	roughnessBias  = 1e-6
)

// Shade runs the lighting pass over every pixel, in parallel over rows.
func (r *Renderer) Shade(fb *FrameBuffer, sc *scene.Scene, store *texture.Store) {
	parallelFor(fb.Height, r.Workers, func(y0, y1 int) {
		for i := y0 * fb.Width; i < y1*fb.Width; i++ {
			ShadePixel(&fb.pixels[i], sc, store)
		}
	})
}

// ShadePixel replaces the pixel's Diffuse with its lit color. Pixels
// without a normal (nothing rasterized) are left untouched.
func ShadePixel(p *Pixel, sc *scene.Scene, store *texture.Store) {
	if p.Normal.IsZero() {
		return
	}

	n := p.Normal
	if p.NormalMap.Exists() {
		s := store.Get(p.NormalMap).Sample(p.UV)
		tbn := math3d.Mat3FromColumns(p.Tangent.Normalize(), p.Bitangent.Normalize(), p.Normal.Normalize())
		n = tbn.MulVec3(s.Vec3())
	}
	n = n.Normalize()

	if p.AmbientMap.Exists() {
		p.Ambient = store.Get(p.AmbientMap).Sample(p.UV).Vec3()
	}
	if p.DiffuseMap.Exists() {
		p.Diffuse = store.Get(p.DiffuseMap).Sample(p.UV).Vec3()
	}

	shine := p.Shininess
	metal := 0.0
	ambient := defaultAmbient
	var spec math3d.Vec4
	if p.SpecularMap.Exists() {
		spec = store.Get(p.SpecularMap).Sample(p.UV)
		ambient = spec.X
		rough := spec.Y * spec.Y
		rough *= rough
		shine = int(1 / (roughnessBias + rough))
		metal = spec.Z
	}

	view := sc.Camera.Position.Sub(p.Position).Normalize()
	// Metals tint highlights with the base color, dielectrics keep the
	// light's color.
	specTint := p.Diffuse.Scale(metal).Add(math3d.Splat3(1 - metal))

	var diffLight, specLight math3d.Vec3
	for i := range sc.Lights {
		l := &sc.Lights[i]
		dir, distSq := l.Direction(p.Position)
		lambert := math.Max(0, dir.Dot(n))
		power := l.Intensity / distSq

		if lambert > 0 {
			half := dir.Add(view).Normalize()
			s := Pow(math.Max(0, n.Dot(half)), shine)
			specLight = specLight.Add(l.Color.Mul(specTint).Scale(s * power))
		}
		diffLight = diffLight.Add(l.Color.Scale(lambert * power))
	}

	p.Diffuse = p.Diffuse.Scale(ambient * (1 - metal)).
		Add(p.Diffuse.Mul(diffLight)).
		Add(specLight)
	if p.SpecularMap.Exists() {
		p.Specular = spec.Vec3()
	}
}

// Pow raises base to a non-negative integer power by repeated squaring.
// Negative exponents are treated as zero.
func Pow(base float64, exp int) float64 {
	result := 1.0
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
