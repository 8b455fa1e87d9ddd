package render

import (
	"image/color"
	"strconv"
	"strings"
)

// Theme palette. World background and grid dots per theme.
var (
	lightBackground = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	darkBackground  = color.NRGBA{R: 24, G: 24, B: 27, A: 255}
	lightGridDot    = color.NRGBA{R: 190, G: 190, B: 195, A: 255}
	darkGridDot     = color.NRGBA{R: 70, G: 70, B: 76, A: 255}

	trailColor     = color.NRGBA{R: 150, G: 150, B: 155, A: 110}
	laserColor     = color.NRGBA{R: 235, G: 50, B: 35, A: 255}
	badgeFill      = color.NRGBA{R: 30, G: 30, B: 30, A: 150}
	badgeText      = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
	selectionFill  = color.NRGBA{R: 66, G: 133, B: 244, A: 36}
	selectionLine  = color.NRGBA{R: 66, G: 133, B: 244, A: 220}
	handleFill     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	caretColor     = color.NRGBA{R: 66, G: 133, B: 244, A: 255}
)

// ParseColor decodes #rgb, #rrggbb and #rrggbbaa strings. Anything
// unparseable falls back to opaque black.
func ParseColor(s string) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	hex := func(sub string) uint8 {
		v, err := strconv.ParseUint(sub, 16, 8)
		if err != nil {
			return 0
		}
		return uint8(v)
	}
	switch len(s) {
	case 3:
		return color.NRGBA{
			R: hex(string([]byte{s[0], s[0]})),
			G: hex(string([]byte{s[1], s[1]})),
			B: hex(string([]byte{s[2], s[2]})),
			A: 255,
		}
	case 6:
		return color.NRGBA{R: hex(s[0:2]), G: hex(s[2:4]), B: hex(s[4:6]), A: 255}
	case 8:
		return color.NRGBA{R: hex(s[0:2]), G: hex(s[2:4]), B: hex(s[4:6]), A: hex(s[6:8])}
	}
	return color.NRGBA{A: 255}
}

func withAlpha(c color.NRGBA, factor float32) color.NRGBA {
	c.A = uint8(float32(c.A) * factor)
	return c
}
