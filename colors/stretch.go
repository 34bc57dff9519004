package colors

// StretchChannels scales each channel by max/256 using (value * max) >> 8.
// A max of 255 therefore dims slightly instead of passing the color through.
func StretchChannels(color Rgb, maxR, maxG, maxB int) Rgb {
	r, g, b := color.Unpack()
	return Pack(
		(int(r)*maxR)>>8,
		(int(g)*maxG)>>8,
		(int(b)*maxB)>>8,
	)
}

// StretchChannelsEvenly scales all channels to the same max.
func StretchChannelsEvenly(color Rgb, max int) Rgb {
	return StretchChannels(color, max, max, max)
}
