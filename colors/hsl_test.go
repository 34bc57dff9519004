package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHslToRgb(t *testing.T) {
	data := []struct {
		h, s, l  float64
		expected Rgb
	}{
		{0, 1, 0, 0x000000},
		{0, 1, 1, 0x000000},
		{0, 0, 0.5, 0x000000},
		{0, 1, 0.5, 0x808181},
		{0, 1, 0.25, 0x40c0c0},
		{60, 1, 0.5, 0x7f7f80},
		{240, 1, 0.5, 0x7d7d7c},
	}
	for i, line := range data {
		if actual := HslToRgb(line.h, line.s, line.l); actual != line.expected {
			t.Fatalf("line %d: HslToRgb(%g, %g, %g) == %s, expected %s", i, line.h, line.s, line.l, actual, line.expected)
		}
	}
}

func TestRainbowClampsHueAbove(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Rainbow(360), Rainbow(400))
	assert.Equal(Rgb(0x7a7b7b), Rainbow(360))
}

func TestRainbowNegativeHuePassesThrough(t *testing.T) {
	assert.Equal(t, HslToRgb(-30, 1, 0.5), Rainbow(-30))
	assert.Equal(t, Rgb(0x000182), Rainbow(-30))
}

func TestRainbowBrightnessClamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(RainbowBrightness(120, 100), RainbowBrightness(120, 150))
	assert.Equal(RainbowBrightness(120, 0), RainbowBrightness(120, -5))
	assert.Equal(HslToRgb(120, 1, 0.5), Rainbow(120))
}

func TestPalette(t *testing.T) {
	data := []struct {
		name     string
		actual   Rgb
		expected Rgb
	}{
		{"red", Red, 0x808181},
		{"orange", Orange, 0xf266f3},
		{"yellow", Yellow, 0x654c66},
		{"green", Green, 0x7f5354},
		{"light_blue", LightBlue, 0x717063},
		{"blue", Blue, 0x7d7d7c},
		{"purple", Purple, 0xfb3c3b},
		{"pink", Pink, 0xdcdd7b},
		{"white", White, 0xffffff},
		{"off", Off, 0x000000},
	}
	for _, line := range data {
		if line.actual != line.expected {
			t.Fatalf("%s == %s, expected %s", line.name, line.actual, line.expected)
		}
	}
}
