package colors

import (
	"math"
)

// HslToRgb converts hue (degrees), saturation and lightness (both 0-1).
//
// The hue is not wrapped, callers keep it inside [0, 360). The offset added to
// every channel is the hue sector less half the chroma.
func HslToRgb(hue, saturation, lightness float64) Rgb {
	chroma := (1 - math.Abs(2*lightness-1)) * saturation
	sector := hue / 60
	x := chroma * (1 - math.Abs(math.Mod(sector, 2)-1))

	var r, g, b float64
	switch {
	case sector >= 0 && sector < 1:
		r, g, b = chroma, x, 0
	case sector >= 1 && sector < 2:
		r, g, b = x, chroma, 0
	case sector >= 2 && sector < 3:
		r, g, b = 0, chroma, x
	case sector >= 3 && sector < 4:
		r, g, b = 0, x, chroma
	case sector >= 4 && sector < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	correction := sector - chroma/2
	return Pack(round255(r+correction), round255(g+correction), round255(b+correction))
}

// round255 scales to 0-255 and rounds halves up, -127.5 becomes -127.
func round255(v float64) int {
	return int(math.Floor(v*255 + 0.5))
}

// DefaultBrightness is the lightness, in percent, used by Rainbow.
const DefaultBrightness = 50

// Rainbow returns a fully saturated color for hue at the default brightness.
func Rainbow(hue float64) Rgb {
	return RainbowBrightness(hue, DefaultBrightness)
}

// RainbowBrightness returns a fully saturated color for hue with brightness
// given in percent. Hue is capped at 360 but not raised to 0, negative hues are
// passed through. Brightness is clamped to 0-100.
func RainbowBrightness(hue, brightness float64) Rgb {
	hue = math.Min(hue, 360)
	brightness = math.Min(math.Max(brightness, 0), 100)
	return HslToRgb(hue, 1, brightness/100)
}
