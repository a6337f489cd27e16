package render

import (
	"fmt"
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Channel selects which G-buffer attribute is displayed.
type Channel int

const (
	ChannelColor Channel = iota
	ChannelDepth
	ChannelNormal
	ChannelBitangent
	ChannelTangent
	ChannelPosition
)

var channelNames = [...]string{"color", "depth", "normal", "bitangent", "tangent", "position"}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel returns the channel with the given name.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return ChannelColor, fmt.Errorf("unknown channel %q", name)
}

// Channel writes the raw values of ch into dst as RGBA floats, 4 per
// pixel, growing dst if needed, and returns it.
func (fb *FrameBuffer) Channel(ch Channel, dst []float32) []float32 {
	n := len(fb.pixels) * 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for i := range fb.pixels {
		p := &fb.pixels[i]
		var v math3d.Vec3
		switch ch {
		case ChannelColor:
			v = p.Diffuse
		case ChannelDepth:
			v.X = float64(p.Depth) / float64(EmptyDepth)
		case ChannelNormal:
			v = p.Normal
		case ChannelBitangent:
			v = p.Bitangent
		case ChannelTangent:
			v = p.Tangent
		case ChannelPosition:
			v = p.Position
		}
		o := i * 4
		dst[o+0] = float32(v.X)
		dst[o+1] = float32(v.Y)
		dst[o+2] = float32(v.Z)
		dst[o+3] = 1
	}
	return dst
}

// PostProcess maps a raw channel value to a displayable color in [0, 1].
func PostProcess(ch Channel, rgba [4]float32) [4]float32 {
	switch ch {
	case ChannelColor:
		for i := range 3 {
			rgba[i] = float32(math.Pow(math.Max(0, float64(rgba[i])), 1/displayGamma))
		}
	case ChannelDepth:
		// Near is bright. The code is non-linear, so stretch the near end.
		d := 1 - float32(math.Pow(float64(rgba[0]), 64))
		rgba[0], rgba[1], rgba[2] = d, d, d
	default:
		for i := range 3 {
			rgba[i] = rgba[i]*0.5 + 0.5
		}
	}
	for i := range 3 {
		rgba[i] = max(0, min(1, rgba[i]))
	}
	rgba[3] = 1
	return rgba
}
