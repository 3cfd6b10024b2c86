package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette returns n colours blended from cold to hot in HCL space, one per
// temperature bucket. Unparseable endpoints fall back to blue and red.
func Palette(cold, hot lipgloss.Color, n int) []lipgloss.Color {
	if n <= 0 {
		return nil
	}
	c0, err := colorful.Hex(string(cold))
	if err != nil {
		c0 = colorful.Color{B: 1}
	}
	c1, err := colorful.Hex(string(hot))
	if err != nil {
		c1 = colorful.Color{R: 1}
	}

	out := make([]lipgloss.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = lipgloss.Color(c0.BlendHcl(c1, t).Clamped().Hex())
	}
	return out
}
