package colors

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Colorful converts to a go-colorful color for blending in other color spaces.
func (c Rgb) Colorful() colorful.Color {
	r, g, b := c.Unpack()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// FromColorful converts back, clamping to the RGB gamut first.
func FromColorful(c colorful.Color) Rgb {
	r, g, b := c.Clamped().RGB255()
	return Pack(int(r), int(g), int(b))
}

// Gradient blends from one color to another in CIE-L*a*b* space. The first
// entry is from, the last is to. Fewer than two steps yields just from.
func Gradient(from, to Rgb, steps int) []Rgb {
	if steps < 2 {
		return []Rgb{from}
	}
	c1, c2 := from.Colorful(), to.Colorful()
	out := make([]Rgb, steps)
	for i := range out {
		out[i] = FromColorful(c1.BlendLab(c2, float64(i)/float64(steps-1)))
	}
	out[0], out[steps-1] = from, to
	return out
}
