// SPDX-License-Identifier: MIT
package plotter

import (
	"math"

	"stripchart/internal/colourmap"
)

// ColourScale is the magnitude range spread across the palette.
type ColourScale struct {
	Min float64
	Max float64
}

var (
	StandardScale     = ColourScale{Min: 2, Max: 15}
	LowAmplitudeScale = ColourScale{Min: -3, Max: 12}
)

// ScaleFor selects the standard or low-amplitude range.
func ScaleFor(lowAmplitude bool) ColourScale {
	if lowAmplitude {
		return LowAmplitudeScale
	}
	return StandardScale
}

// Index normalises v to a palette index, clamping to [0, 255]. NaN and
// -Inf map to 0.
func (c ColourScale) Index(v float32) int {
	x := (colourmap.Size - 1) * (float64(v) - c.Min) / (c.Max - c.Min)
	if !(x > 0) {
		return 0
	}
	if x >= colourmap.Size-1 {
		return colourmap.Size - 1
	}
	return int(math.Round(x))
}

// RowLookup maps each spectrogram row to a frame bin. Row 0 is the top of
// the surface and shows the highest bin.
type RowLookup []int

// NewRowLookup builds the table for a surface of the given height.
func NewRowLookup(rows, bins int) RowLookup {
	l := make(RowLookup, max(rows, 0))
	if rows == 1 {
		l[0] = bins - 1
		return l
	}
	for i := range l {
		l[i] = bins - 1 - int(math.Round(float64(i)*float64(bins-2)/float64(rows-1)))
	}
	return l
}

// PeakHold reduces every frame that falls inside one column to their
// element-wise maximum.
type PeakHold struct {
	peak  []float32
	fresh bool
}

// NewPeakHold returns an accumulator for frames of bins values.
func NewPeakHold(bins int) *PeakHold {
	return &PeakHold{peak: make([]float32, bins), fresh: true}
}

// Ingest folds one frame into the pending column. The first frame after a
// flush replaces the held values.
func (p *PeakHold) Ingest(frame []float32) {
	n := min(len(frame), len(p.peak))
	if p.fresh {
		copy(p.peak, frame[:n])
		p.fresh = false
		return
	}
	for i, v := range frame[:n] {
		if v > p.peak[i] {
			p.peak[i] = v
		}
	}
}

// Flush returns the held vector for the column being emitted and starts a
// new column. When no frame arrived since the previous flush the previous
// values are returned again. The slice is owned by PeakHold.
func (p *PeakHold) Flush() []float32 {
	p.fresh = true
	return p.peak
}

// Reset zeroes the held vector.
func (p *PeakHold) Reset() {
	clear(p.peak)
	p.fresh = true
}

// paintSpectrogramColumn colours column x from a peak vector.
func paintSpectrogramColumn(s *Surface, x int, peak []float32, rows RowLookup, scale ColourScale, table *colourmap.Table) {
	if x < 0 || x >= s.Width {
		return
	}
	for y := range s.Height {
		s.Pix[y*s.Width+x] = table[scale.Index(peak[rows[y]])]
	}
}
