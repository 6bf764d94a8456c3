// SPDX-License-Identifier: MIT
package plotter

import (
	"math"

	"stripchart/internal/colourmap"
)

// MinMax holds the sample span of the pending waveform column. Samples are
// stored sign-inverted so that positive signal is drawn upwards.
type MinMax struct {
	Min int32
	Max int32
}

// NewMinMax returns an empty span.
func NewMinMax() MinMax {
	return MinMax{Min: math.MaxInt16, Max: math.MinInt16}
}

// Reset empties the span.
func (m *MinMax) Reset() {
	*m = NewMinMax()
}

// Add widens the span to include sample.
func (m *MinMax) Add(sample int32) {
	if sample > m.Max {
		m.Max = sample
	}
	if sample < m.Min {
		m.Min = sample
	}
}

// Empty reports whether no sample has been added since the last reset.
func (m MinMax) Empty() bool {
	return m.Min > m.Max
}

// Rows maps the span onto a surface of the given height. Rows in
// [top, bottom] are lit; an empty span yields top > bottom.
func (m MinMax) Rows(height int) (top, bottom int) {
	half := float64(height) / 2
	mult := half / 32768
	top = int(math.Round(float64(m.Min)*mult + half))
	bottom = int(math.Round(float64(m.Max)*mult + half))
	return top, bottom
}

// paintWaveformColumn writes the span into column x, blanking rows outside it.
func paintWaveformColumn(s *Surface, x int, m MinMax, colour uint32) {
	if x < 0 || x >= s.Width {
		return
	}
	top, bottom := m.Rows(s.Height)
	if m.Empty() {
		top, bottom = 1, 0
	}
	for y := range s.Height {
		p := colourmap.Blank
		if y >= top && y <= bottom {
			p = colour
		}
		s.Pix[y*s.Width+x] = p
	}
}

// paintCentreLine blanks the surface and lights its middle row.
func paintCentreLine(s *Surface, colour uint32) {
	s.Clear()
	s.FillRow(int(math.Round(float64(s.Height)/2)), colour)
}
