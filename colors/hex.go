package colors

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports hex color text that is not six hex digits.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("colors: invalid hex color %q, expected #RRGGBB", e.Input)
}

// HexToRgb parses RRGGBB with an optional leading '#'.
func HexToRgb(hex string) (Rgb, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return 0, &FormatError{Input: hex}
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, &FormatError{Input: hex}
	}
	return Pack(int(v>>16), int(v>>8), int(v)), nil
}

// MustHex is HexToRgb for literals known to be valid. It panics otherwise.
func MustHex(hex string) Rgb {
	c, err := HexToRgb(hex)
	if err != nil {
		panic(err)
	}
	return c
}
