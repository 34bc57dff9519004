package colors

// gammaTable holds ChannelGamma for every input.
var gammaTable [256]uint8

func init() {
	for i := range gammaTable {
		gammaTable[i] = channelGamma(uint8(i))
	}
}

// ChannelGamma applies the x^3 curve with a bias of 4 used for WS2812 LEDs.
func ChannelGamma(c uint8) uint8 {
	return gammaTable[c]
}

// channelGamma is evaluated in 32 bit signed arithmetic. The cube times 251
// overflows for inputs above 204 and the wrapped value is kept, so the top of
// the curve is not monotonic.
func channelGamma(c uint8) uint8 {
	if c == 0 {
		return 0
	}
	v := int32(c)
	v = v * v * v * 251
	return uint8((4 + (v >> 24)) & 0xff)
}

// Linearize applies ChannelGamma to each channel.
func Linearize(color Rgb) Rgb {
	r, g, b := color.Unpack()
	return Pack(int(gammaTable[r]), int(gammaTable[g]), int(gammaTable[b]))
}
