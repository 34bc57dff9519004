package colors

import (
	"fmt"
)

// Rgb is a color packed as R<<16 | G<<8 | B.
type Rgb uint32

// Pack combines three channels into an Rgb. Values are masked to 8 bits and
// not clamped, so an out of range channel wraps instead of spilling into its
// neighbours.
func Pack(r, g, b int) Rgb {
	return Rgb((r&0xff)<<16 | (g&0xff)<<8 | b&0xff)
}

// Unpack splits the color into its channels.
func (c Rgb) Unpack() (r, g, b uint8) {
	return c.R(), c.G(), c.B()
}

// R is the red channel.
func (c Rgb) R() uint8 {
	return uint8(c >> 16)
}

// G is the green channel.
func (c Rgb) G() uint8 {
	return uint8(c >> 8)
}

// B is the blue channel.
func (c Rgb) B() uint8 {
	return uint8(c)
}

// Hex formats the color as #rrggbb.
func (c Rgb) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

func (c Rgb) String() string {
	return c.Hex()
}
