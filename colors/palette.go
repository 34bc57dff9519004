package colors

// Basic colors for LED strips. They are computed once when the package is
// initialised and must be treated as constants.
var (
	Red       = Rainbow(0)
	Orange    = Rainbow(27)
	Yellow    = Rainbow(54)
	Green     = Rainbow(110)
	LightBlue = Rainbow(177)
	Blue      = Rainbow(240)
	Purple    = Rainbow(285)
	Pink      = Rainbow(323)
)

const (
	White Rgb = 0xffffff
	Off   Rgb = 0x000000
)
