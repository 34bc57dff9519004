// Package colors packs and converts colors for addressable LED strips.
//
// Colors are carried as Rgb, a 24 bit value laid out as 0xRRGGBB. The package
// covers construction from HSL and hex text, the cubic gamma curve used by
// WS2812 style LEDs and the integer brightness stretch applied before it.
package colors
