package ink

import (
	"image/color"
	"strconv"
	"strings"
)

// RGBA is a straight-alpha colour with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colours.
var (
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{1, 1, 1, 1}
	Transparent = RGBA{}
)

// RGB creates an opaque colour.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Color converts to color.NRGBA.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

// FromColor converts any color.Color.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with or without a
// leading '#'. Anything else yields opaque black.
func Hex(hex string) RGBA {
	c, ok := parseHexColor(hex)
	if !ok {
		return Black
	}
	return c
}

func parseHexColor(hex string) (RGBA, bool) {
	hex = strings.TrimPrefix(hex, "#")
	var v [4]uint32
	v[3] = 255
	switch len(hex) {
	case 3, 4:
		for i := range len(hex) {
			d, ok := hexDigit(hex[i])
			if !ok {
				return RGBA{}, false
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := range len(hex) / 2 {
			hi, ok1 := hexDigit(hex[2*i])
			lo, ok2 := hexDigit(hex[2*i+1])
			if !ok1 || !ok2 {
				return RGBA{}, false
			}
			v[i] = hi<<4 | lo
		}
	default:
		return RGBA{}, false
	}
	return RGBA{
		R: float64(v[0]) / 255,
		G: float64(v[1]) / 255,
		B: float64(v[2]) / 255,
		A: float64(v[3]) / 255,
	}, true
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return uint32(c - 'A' + 10), true
	}
	return 0, false
}

// Premultiply returns the colour with RGB scaled by alpha.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// UnmarshalText parses a hex colour so configs can carry colours as
// strings. Malformed colours are rejected with a *ConfigError.
func (c *RGBA) UnmarshalText(b []byte) error {
	v, ok := parseHexColor(string(b))
	if !ok {
		return &ConfigError{Field: "Color", Reason: "invalid hex colour " + strconv.Quote(string(b))}
	}
	*c = v
	return nil
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
