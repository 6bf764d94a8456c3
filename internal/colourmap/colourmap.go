// SPDX-License-Identifier: MIT

// Package colourmap generates the 256-entry palettes used to colour
// spectrogram magnitudes, and defines the packed pixel format shared by all
// rendering surfaces.
package colourmap

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Size is the number of entries in every palette.
const Size = 256

// Blank is the fully transparent packed pixel.
const Blank uint32 = 0

// Mode selects a palette.
type Mode int

const (
	Default Mode = iota
	Monochrome
	Inverse
)

var modeNames = [...]string{"default", "monochrome", "inverse"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles to the following mode.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % len(modeNames))
}

// ParseMode converts a case-insensitive name to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return Default, fmt.Errorf("unknown colour map %q", s)
}

// Table maps a normalised magnitude index to a packed colour.
type Table [Size]uint32

// Pack stores r, g, b, a so that the in-memory byte order is R, G, B, A.
func Pack(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// Unpack is the inverse of Pack.
func Unpack(p uint32) (r, g, b, a uint8) {
	return uint8(p), uint8(p >> 8), uint8(p >> 16), uint8(p >> 24)
}

// NRGBA converts a packed pixel to a non-premultiplied colour.
func NRGBA(p uint32) color.NRGBA {
	r, g, b, a := Unpack(p)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// gradient stops for the default palette, from quiet to loud.
var defaultStops = []struct {
	hex string
	pos float64
}{
	{"#0b1030", 0.0},
	{"#1f2f8f", 0.2},
	{"#008fd5", 0.4},
	{"#20d0a0", 0.6},
	{"#f5e050", 0.8},
	{"#ff5030", 1.0},
}

// Create builds the palette for mode. Unknown modes fall back to Default.
func Create(mode Mode) Table {
	var t Table
	for i := range t {
		v := float64(i) / float64(Size-1)
		var c colorful.Color
		switch mode {
		case Monochrome:
			c = colorful.Color{R: v, G: v, B: v}
		case Inverse:
			c = colorful.Color{R: 1 - v, G: 1 - v, B: 1 - v}
		default:
			c = gradientAt(v)
		}
		r, g, b := c.Clamped().RGB255()
		t[i] = Pack(r, g, b, 255)
	}
	return t
}

func gradientAt(v float64) colorful.Color {
	for i := 0; i < len(defaultStops)-1; i++ {
		lo, hi := defaultStops[i], defaultStops[i+1]
		if v <= hi.pos {
			c1, _ := colorful.Hex(lo.hex)
			c2, _ := colorful.Hex(hi.hex)
			t := (v - lo.pos) / (hi.pos - lo.pos)
			return c1.BlendLab(c2, t)
		}
	}
	c, _ := colorful.Hex(defaultStops[len(defaultStops)-1].hex)
	return c
}
