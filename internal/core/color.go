package core

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with straight (non-premultiplied) alpha.
// Channels and alpha are in [0, 1].
type Color struct {
	R, G, B float64
	A       float64
}

// Common colors.
var (
	Black = Color{A: 1}
	White = Color{R: 1, G: 1, B: 1, A: 1}
)

// ParseHex parses "#rrggbb" (or "#rgb") into an opaque color.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("core: invalid color %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// WithAlpha returns c with its alpha replaced, clamped to [0, 1].
func (c Color) WithAlpha(a float64) Color {
	c.A = ClampF(a, 0, 1)
	return c
}

// Over composites c on top of the opaque color dst and returns an opaque result.
func (c Color) Over(dst Color) Color {
	a := ClampF(c.A, 0, 1)
	if a == 0 {
		dst.A = 1
		return dst
	}
	out := dst.colorful().BlendRgb(c.colorful(), a).Clamped()
	return Color{R: out.R, G: out.G, B: out.B, A: 1}
}

// Mix returns the midpoint between c and other, ignoring alpha.
func (c Color) Mix(other Color) Color {
	out := c.colorful().BlendRgb(other.colorful(), 0.5)
	return Color{R: out.R, G: out.G, B: out.B, A: 1}
}

// Hex returns the "#rrggbb" form of c, ignoring alpha.
func (c Color) Hex() string {
	return c.colorful().Clamped().Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}
