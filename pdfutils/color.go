package pdfutils

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// RGB is an 8-bit per channel colour as supplied by callers.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// DefaultTextColor is the ink used when a request does not name a colour.
var DefaultTextColor = RGB{R: 2, G: 53, B: 139}

func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func toHEXStr(i uint8) string {
	s := fmt.Sprintf("%x", i)

	if len(s) == 1 {
		return "0" + s
	}

	return s
}

func (c RGB) Hex() string {
	return "#" + toHEXStr(c.R) + toHEXStr(c.G) + toHEXStr(c.B)
}

// Darken scales every channel by factor, truncating and clamping to 255.
func (c RGB) Darken(factor float64) RGB {
	scale := func(v uint8) uint8 {
		s := int(float64(v) * factor)
		if s > 255 {
			return 255
		}
		if s < 0 {
			return 0
		}
		return uint8(s)
	}

	return RGB{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (RGB, error) {
	clr, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, errors.Wrapf(ErrMalformedRequest, "color %q", s)
	}

	r, g, b := clr.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// RGBFromTriple validates a caller-supplied [r, g, b] triple.
func RGBFromTriple(v []float64) (RGB, error) {
	if len(v) != 3 {
		return RGB{}, errors.Wrapf(ErrMalformedRequest, "color needs 3 components, got %d", len(v))
	}

	var out [3]uint8
	for i, c := range v {
		if c < 0 || c > 255 {
			return RGB{}, errors.Wrapf(ErrMalformedRequest, "color component %v out of range", c)
		}
		out[i] = uint8(c)
	}

	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

// ColorCategory names the hue family of c. Used to label placement events.
func ColorCategory(c RGB) string {
	clr := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
	h, s, l := clr.Hsl()

	// define color category based on HSL
	if l < 0.12 {
		return "Black"
	}
	if l > 0.98 {
		return "White"
	}
	if s < 0.2 {
		return "Gray"
	}
	if h < 15 {
		return "Red"
	}
	if h < 45 {
		return "Orange"
	}
	if h < 65 {
		return "Yellow"
	}
	if h < 170 {
		return "Green"
	}
	if h < 190 {
		return "Cyan"
	}
	if h < 263 {
		return "Blue"
	}
	if h < 280 {
		return "Purple"
	}
	if h < 335 {
		return "Magenta"
	}
	return "Red"
}
