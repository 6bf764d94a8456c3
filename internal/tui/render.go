// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"

	"stripchart/internal/colourmap"
	"stripchart/internal/plotter"
)

const upperHalf = "▀"

// styleCacheSize bounds the colour pairs kept between frames. Two 256
// entry palettes plus the waveform colours fit comfortably.
const styleCacheSize = 4096

// cellRenderer draws surfaces with one terminal cell per column and two
// pixel rows per line, using the upper half block glyph.
type cellRenderer struct {
	styles *lru.Cache[[2]uint32, lipgloss.Style]
}

func newCellRenderer() *cellRenderer {
	styles, err := lru.New[[2]uint32, lipgloss.Style](styleCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &cellRenderer{styles: styles}
}

func terminalColour(p uint32) lipgloss.TerminalColor {
	r, g, b, a := colourmap.Unpack(p)
	if a == 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

func (c *cellRenderer) style(top, bottom uint32) lipgloss.Style {
	k := [2]uint32{top, bottom}
	if st, ok := c.styles.Get(k); ok {
		return st
	}
	st := lipgloss.NewStyle().
		Foreground(terminalColour(top)).
		Background(terminalColour(bottom))
	c.styles.Add(k, st)
	return st
}

// render writes the surface as ceil(Height/2) lines.
func (c *cellRenderer) render(sb *strings.Builder, s *plotter.Surface) {
	for y := 0; y < s.Height; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		x := 0
		for x < s.Width {
			top, bottom := c.pair(s, x, y)
			run := 1
			for x+run < s.Width {
				t, b := c.pair(s, x+run, y)
				if t != top || b != bottom {
					break
				}
				run++
			}
			glyph := upperHalf
			if top>>24 == 0 && bottom>>24 == 0 {
				glyph = " "
			}
			sb.WriteString(c.style(top, bottom).Render(strings.Repeat(glyph, run)))
			x += run
		}
	}
}

func (c *cellRenderer) pair(s *plotter.Surface, x, y int) (top, bottom uint32) {
	top = s.At(x, y)
	if y+1 < s.Height {
		bottom = s.At(x, y+1)
	}
	return top, bottom
}
