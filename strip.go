package ledsense

// This file contains the LED pipeline that sits between callers choosing colors
// and the hardware, or network, output that drives the pixels.  Every color
// is optionally dimmed and then gamma corrected before being forwarded.

import (
	"math"
	"sync"

	"github.com/go-stack/stack"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

// Output receives final pixel values.
type Output interface {
	Set(index int, color colors.Rgb)
}

// Shower is implemented by outputs that buffer pixels until a frame is
// latched.
type Shower interface {
	Show() error
}

type stripConfig struct {
	maxBrightness int
	linearize     bool
}

// Strip is a fixed length string of pixels with a brightness limit and gamma
// correction applied to everything written through it.
type Strip struct {
	out   Output
	count int

	cfg stripConfig
	sync.Mutex
}

// NewStrip wraps out with count pixels, full brightness and gamma correction
// enabled.  A negative count is treated as an empty strip.
func NewStrip(out Output, count int) (strip *Strip) {
	if count < 0 {
		count = 0
	}
	return &Strip{
		out:   out,
		count: count,
		cfg: stripConfig{
			maxBrightness: 255,
			linearize:     true,
		},
	}
}

// Len is the number of pixels on the strip.
func (strip *Strip) Len() int {
	return strip.count
}

// SetOption overrides the stored strip configuration for a single call.
type SetOption func(cfg *stripConfig)

// WithMaxBrightness overrides the brightness limit, clamped to 0-255.
func WithMaxBrightness(max int) SetOption {
	if max < 0 {
		max = 0
	}
	if max > 255 {
		max = 255
	}
	return func(cfg *stripConfig) {
		cfg.maxBrightness = max
	}
}

// WithLinearize overrides gamma correction.
func WithLinearize(enabled bool) SetOption {
	return func(cfg *stripConfig) {
		cfg.linearize = enabled
	}
}

// SetMaxBrightness stores the brightness limit, clamped to 0-255 and rounded.
func (strip *Strip) SetMaxBrightness(max float64) {
	max = math.Round(math.Min(math.Max(max, 0), 255))

	strip.Lock()
	strip.cfg.maxBrightness = int(max)
	strip.Unlock()
}

// SetMaxBrightnessPercent stores the brightness limit as a percentage.
func (strip *Strip) SetMaxBrightnessPercent(percent float64) {
	percent = math.Min(math.Max(percent, 0), 100)
	strip.SetMaxBrightness(percent * 255 / 100)
}

// MaxBrightness returns the stored brightness limit.
func (strip *Strip) MaxBrightness() int {
	strip.Lock()
	defer strip.Unlock()
	return strip.cfg.maxBrightness
}

// SetLinearize stores whether gamma correction is applied.
func (strip *Strip) SetLinearize(enabled bool) {
	strip.Lock()
	strip.cfg.linearize = enabled
	strip.Unlock()
}

// Linearize returns the stored gamma correction setting.
func (strip *Strip) Linearize() bool {
	strip.Lock()
	defer strip.Unlock()
	return strip.cfg.linearize
}

// Apply runs color through the pipeline without forwarding it.  Dimming
// always happens before gamma correction.
func (strip *Strip) Apply(color colors.Rgb, opts ...SetOption) colors.Rgb {
	strip.Lock()
	cfg := strip.cfg
	strip.Unlock()

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxBrightness < 255 {
		color = colors.StretchChannelsEvenly(color, cfg.maxBrightness)
	}
	if cfg.linearize {
		color = colors.Linearize(color)
	}
	return color
}

// Set writes one pixel through the pipeline.
func (strip *Strip) Set(index int, color colors.Rgb, opts ...SetOption) (err errors.Error) {
	if index < 0 || index >= strip.count {
		return errors.Wrap(ErrIndexRange).With("index", index).With("count", strip.count).With("stack", stack.Trace().TrimRuntime())
	}
	strip.out.Set(index, strip.Apply(color, opts...))
	return nil
}

// SetAll writes the same color to every pixel, running the pipeline once.
func (strip *Strip) SetAll(color colors.Rgb, opts ...SetOption) {
	color = strip.Apply(color, opts...)
	for i := 0; i < strip.count; i++ {
		strip.out.Set(i, color)
	}
}

// SetFrame writes consecutive pixels starting at index 0, ignoring colors
// beyond the end of the strip.
func (strip *Strip) SetFrame(frame []colors.Rgb, opts ...SetOption) {
	for i, color := range frame {
		if i >= strip.count {
			return
		}
		strip.out.Set(i, strip.Apply(color, opts...))
	}
}

// Clear turns every pixel off without going through the pipeline.
func (strip *Strip) Clear() {
	for i := 0; i < strip.count; i++ {
		strip.out.Set(i, colors.Off)
	}
}

// Show latches the frame when the output buffers pixels.
func (strip *Strip) Show() (err errors.Error) {
	shower, isShower := strip.out.(Shower)
	if !isShower {
		return nil
	}
	if errGo := shower.Show(); errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}
