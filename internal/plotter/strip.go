// SPDX-License-Identifier: MIT
package plotter

import (
	"stripchart/internal/colourmap"
	"stripchart/pkg/bitint"
)

// strip is one resolution's pair of surfaces plus the column state that
// feeds them. Live and Export each own one.
type strip struct {
	waveform    *Surface
	spectrogram *Surface

	acc   Accumulator
	span  MinMax
	peak  *PeakHold
	rows  RowLookup
	table colourmap.Table
}

func newStrip(width, waveformHeight, spectrogramHeight int, table colourmap.Table) *strip {
	s := &strip{
		span:  NewMinMax(),
		peak:  NewPeakHold(STFTOutputSamples),
		table: table,
	}
	s.resize(width, waveformHeight, spectrogramHeight)
	return s
}

func (s *strip) resize(width, waveformHeight, spectrogramHeight int) {
	s.waveform = NewSurface(width, waveformHeight)
	s.spectrogram = NewSurface(width, spectrogramHeight)
	s.rows = NewRowLookup(s.spectrogram.Height, STFTOutputSamples)
}

// resetColumns discards the pending column.
func (s *strip) resetColumns() {
	s.acc.Reset()
	s.span.Reset()
	s.peak.Reset()
}

// pass describes one run of the column routine.
type pass struct {
	offset              int // ring index of the first sample
	samples             int
	displayWidthSamples int
	mode                Mode
	redraw              bool
	flatLine            bool // too little history: draw a centre line instead of waveform columns
	scale               ColourScale
	foreground          uint32
}

// run renders p.samples samples into the surfaces and returns the number of
// columns emitted.
func (s *strip) run(src Source, p pass) int {
	ring := src.Samples()
	frames := src.Frames()
	capacity := len(ring)

	width := s.waveform.Width
	expected := s.acc.Begin(p.samples, width, p.displayWidthSamples)

	drawWave := p.mode.waveform() && !p.flatLine
	drawSpec := p.mode.spectrogram()

	if drawWave {
		s.waveform.ScrollOrClear(p.redraw, expected)
	}
	if drawSpec {
		s.spectrogram.ScrollOrClear(p.redraw, expected)
	}
	// Stale after a height change is an internal error; rebuild rather than index out of range.
	if len(s.rows) != s.spectrogram.Height {
		s.rows = NewRowLookup(s.spectrogram.Height, STFTOutputSamples)
	}

	emit := func() {
		x := width - expected + s.acc.Emitted() - 1
		if drawWave {
			paintWaveformColumn(s.waveform, x, s.span, p.foreground)
		}
		s.span.Reset()
		peak := s.peak.Flush()
		if drawSpec {
			paintSpectrogramColumn(s.spectrogram, x, peak, s.rows, p.scale, &s.table)
		}
	}

	if capacity > 0 {
		idx := p.offset % capacity
		for range p.samples {
			s.span.Add(-int32(ring[idx]))
			if idx%STFTInputSamples == 0 {
				start := idx / stftRatio
				if start+STFTOutputSamples <= len(frames) {
					s.peak.Ingest(frames[start : start+STFTOutputSamples])
				}
			}
			for range s.acc.Step() {
				emit()
			}
			idx++
			if idx == capacity {
				idx = 0
			}
		}
	}

	for owed := s.acc.Finish(); owed > 0; owed-- {
		// The owed columns are the rightmost ones, filled left to right.
		x := width - owed
		if drawWave {
			paintWaveformColumn(s.waveform, x, s.span, p.foreground)
		}
		s.span.Reset()
		peak := s.peak.Flush()
		if drawSpec {
			paintSpectrogramColumn(s.spectrogram, x, peak, s.rows, p.scale, &s.table)
		}
	}

	if p.mode.waveform() && p.flatLine {
		paintCentreLine(s.waveform, p.foreground)
	}
	return expected
}

// ringOffset is the index of the first of n samples ending at index.
func ringOffset(capacity, index, n int) int {
	return bitint.Mod(index-n, capacity)
}
