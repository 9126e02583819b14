package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit sRGB triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSL holds hue, saturation and lightness, each normalized to [0,1].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// LAB is a CIE-LAB color under the D65 illuminant, L in [0,100].
type LAB struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HSL converts c to normalized HSL.
func (c RGB) HSL() HSL {
	h, s, l := c.colorful().Hsl()
	return HSL{H: h / 360, S: s, L: l}
}

// LAB converts c to CIE-LAB through linear sRGB and XYZ with the D65 reference white.
func (c RGB) LAB() LAB {
	l, a, b := c.colorful().Lab()
	return LAB{L: l * 100, A: a * 100, B: b * 100}
}

// RGB converts h back to 8-bit sRGB.
func (h HSL) RGB() RGB {
	c := colorful.Hsl(wrapHue(h.H)*360, clamp01(h.S), clamp01(h.L)).Clamped()
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}
}

// Hex formats h as "#rrggbb".
func (h HSL) Hex() string {
	return h.RGB().Hex()
}

// ParseHex parses a "#rrggbb" (or "#rgb") string.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// IsHexColor reports whether s is a valid "#rrggbb" string.
func IsHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9', ch >= 'a' && ch <= 'f', ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

func wrapHue(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	return h
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
