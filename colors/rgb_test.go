package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpack(t *testing.T) {
	for _, v := range []int{0, 1, 0x7f, 0x80, 0xfe, 0xff} {
		for _, w := range []int{0, 0x33, 0xff} {
			c := Pack(v, w, 255-v)
			r, g, b := c.Unpack()
			if int(r) != v || int(g) != w || int(b) != 255-v {
				t.Fatalf("Pack(%d, %d, %d).Unpack() == %d, %d, %d", v, w, 255-v, r, g, b)
			}
		}
	}
}

func TestPackMasksChannels(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Rgb(0x00ff00), Pack(0x100, 0xff, 0x100))
	assert.Equal(Rgb(0x0101ff), Pack(-255, 257, -1))
	assert.Equal(Rgb(0x123456), Pack(0x12, 0x34, 0x56))
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#0a0b0c", Pack(10, 11, 12).Hex())
	assert.Equal(t, "#ffffff", White.String())
}

func TestHexToRgb(t *testing.T) {
	data := []struct {
		in       string
		expected Rgb
	}{
		{"#ff0000", 0xff0000},
		{"00FF00", 0x00ff00},
		{"#0A3306", 0x0a3306},
		{"36ff1f", 0x36ff1f},
		{"#000000", 0},
	}
	for i, line := range data {
		actual, err := HexToRgb(line.in)
		if err != nil {
			t.Fatalf("line %d: HexToRgb(%q) failed: %v", i, line.in, err)
		}
		if actual != line.expected {
			t.Fatalf("line %d: HexToRgb(%q) == %s, expected %s", i, line.in, actual, line.expected)
		}
	}
}

func TestHexToRgbRoundTrip(t *testing.T) {
	for v := 0; v < 0x1000000; v += 0x010203 {
		c := Rgb(v)
		actual, err := HexToRgb(c.Hex())
		if err != nil || actual != c {
			t.Fatalf("HexToRgb(%q) == %s, %v", c.Hex(), actual, err)
		}
	}
}

func TestHexToRgbInvalid(t *testing.T) {
	for _, in := range []string{"", "#", "#fff", "fffffff", "##ffffff", "#gg0000", "0x1234", "#+12345", "# 12345"} {
		c, err := HexToRgb(in)
		var fe *FormatError
		if !assert.ErrorAs(t, err, &fe, in) {
			continue
		}
		assert.Equal(t, in, fe.Input)
		assert.Equal(t, Rgb(0), c)
	}
}

func TestMustHexPanics(t *testing.T) {
	assert.Panics(t, func() { MustHex("nope") })
	assert.Equal(t, Rgb(0x36ff1f), MustHex("#36FF1F"))
}
