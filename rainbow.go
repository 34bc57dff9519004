package ledsense

// This file contains a simple animation that spreads the color wheel along a
// strip and rotates it over time.

import (
	"math"
	"time"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

// Rainbow produces animation frames of hues spread evenly along a strip.
type Rainbow struct {
	// Period is the time taken for the wheel to rotate once.
	Period time.Duration
	// Brightness is the HSL lightness in percent, see colors.RainbowBrightness.
	Brightness float64

	count int
	start time.Time
}

// NewRainbow starts an animation of count pixels at start.
func NewRainbow(count int, period time.Duration, start time.Time) (rb *Rainbow) {
	return &Rainbow{
		Period:     period,
		Brightness: colors.DefaultBrightness,
		count:      count,
		start:      start,
	}
}

// Frame returns the pixels to show at tm.
func (rb *Rainbow) Frame(tm time.Time) (frame []colors.Rgb) {
	offset := 0.0
	if rb.Period > 0 {
		elapsed := tm.Sub(rb.start)
		offset = math.Mod(float64(elapsed)/float64(rb.Period), 1) * 360
		if offset < 0 {
			offset += 360
		}
	}

	frame = make([]colors.Rgb, rb.count)
	for i := range frame {
		hue := math.Mod(offset+360*float64(i)/float64(rb.count), 360)
		frame[i] = colors.RainbowBrightness(hue, rb.Brightness)
	}
	return frame
}

// Render writes the frame for tm to strip and latches it.
func (rb *Rainbow) Render(strip *Strip, tm time.Time) (err errors.Error) {
	strip.SetFrame(rb.Frame(tm))
	return strip.Show()
}
