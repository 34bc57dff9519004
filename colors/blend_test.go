package colors

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
)

func TestColorfulRoundTrip(t *testing.T) {
	for _, c := range []Rgb{Off, White, 0x0a3306, 0x36ff1f, 0x00066b} {
		assert.Equal(t, c, FromColorful(c.Colorful()))
	}
}

func TestHexAgreesWithColorful(t *testing.T) {
	for _, s := range []string{"#0A3306", "#36FF1F", "#00066B", "#000FFF"} {
		expected, err := colorful.Hex(s)
		assert.NoError(t, err)

		actual, err := HexToRgb(s)
		assert.NoError(t, err)
		assert.Equal(t, FromColorful(expected), actual)
	}
}

func TestGradient(t *testing.T) {
	assert := assert.New(t)

	from, to := MustHex("#0A3306"), MustHex("#36FF1F")
	g := Gradient(from, to, 101)

	assert.Len(g, 101)
	assert.Equal(from, g[0])
	assert.Equal(to, g[100])

	assert.Equal([]Rgb{from}, Gradient(from, to, 1))
	assert.Equal([]Rgb{from}, Gradient(from, to, 0))
	assert.Equal([]Rgb{from, to}, Gradient(from, to, 2))
}
