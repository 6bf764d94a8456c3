// SPDX-License-Identifier: MIT
package plotter

import (
	"sync/atomic"

	"stripchart/internal/colourmap"
	applog "stripchart/internal/log"
)

// UpdateParams is the state of the capture buffers and display settings
// for one frame.
type UpdateParams struct {
	Mode                Mode
	ForceRedraw         bool
	Index               int   // ring index the next sample will be written to
	Count               int64 // samples written since the producer last reset
	DisplayWidthSamples int
	SampleRate          int
	NightMode           bool
	LowAmplitudeScale   bool
	ColourMap           colourmap.Mode
}

// UpdateResult reports what an update changed.
type UpdateResult struct {
	Columns int  // columns drawn at the right edge
	Redrawn bool // surfaces were rebuilt from history
	Touched bool // at least one surface changed and should be shown
}

// Stats are running totals readable from any goroutine.
type Stats struct {
	Updates   uint64
	Columns   uint64
	Redraws   uint64
	LastCount int64
}

// Live is the on-screen renderer. It is not safe for concurrent use apart
// from Stats.
type Live struct {
	strip     *strip
	colourMap colourmap.Mode

	lastCount  int64
	mode       Mode
	night      bool
	width      int // display width in samples
	sampleRate int
	dirty      bool // surfaces replaced since the last update
	flat       bool // last update had too little history for columns

	updates  atomic.Uint64
	columns  atomic.Uint64
	redraws  atomic.Uint64
	lastSeen atomic.Int64
}

// NewLive creates a renderer with surfaces of the given size.
func NewLive(width, waveformHeight, spectrogramHeight int, mode colourmap.Mode) *Live {
	l := &Live{
		strip:     newStrip(width, waveformHeight, spectrogramHeight, colourmap.Create(mode)),
		colourMap: mode,
		dirty:     true,
	}
	applog.Debugf("Live: Created %dx%d waveform, %dx%d spectrogram", width, waveformHeight, width, spectrogramHeight)
	return l
}

// Waveform returns the live waveform surface. The pointer changes on Reset and Resize.
func (l *Live) Waveform() *Surface { return l.strip.waveform }

// Spectrogram returns the live spectrogram surface.
func (l *Live) Spectrogram() *Surface { return l.strip.spectrogram }

// Reset regenerates the palette and blanks both surfaces.
func (l *Live) Reset(mode colourmap.Mode) {
	l.colourMap = mode
	l.strip.table = colourmap.Create(mode)
	l.strip.resize(l.strip.waveform.Width, l.strip.waveform.Height, l.strip.spectrogram.Height)
	l.strip.resetColumns()
	l.dirty = true
}

// Resize reallocates the surfaces. A height of zero or less keeps the
// current height. The old content is stretched into the new surfaces until
// the next update redraws them.
func (l *Live) Resize(width, waveformHeight, spectrogramHeight int) {
	oldWave, oldSpec := l.strip.waveform, l.strip.spectrogram
	if waveformHeight <= 0 {
		waveformHeight = oldWave.Height
	}
	if spectrogramHeight <= 0 {
		spectrogramHeight = oldSpec.Height
	}
	l.strip.resize(width, waveformHeight, spectrogramHeight)
	l.strip.waveform.StretchFrom(oldWave)
	l.strip.spectrogram.StretchFrom(oldSpec)
	l.dirty = true
	applog.Debugf("Live: Resized to width %d (waveform %d, spectrogram %d)", width, waveformHeight, spectrogramHeight)
}

// Update draws every sample that arrived since the previous call.
//
// Any change of display settings or update mode, a gap of a whole display window or more,
// or a count that went backwards rebuilds both surfaces from the most
// recent window of history. Otherwise the surfaces scroll left by the number
// of new columns.
func (l *Live) Update(src Source, p UpdateParams) UpdateResult {
	if p.DisplayWidthSamples <= 0 {
		return UpdateResult{}
	}

	redraw, reason := p.ForceRedraw, "forced"
	mark := func(cond bool, why string) {
		if cond && !redraw {
			redraw, reason = true, why
		}
	}
	mark(l.dirty, "surfaces reset")
	mark(p.Mode != l.mode, "update mode")
	mark(p.NightMode != l.night, "night mode")
	if p.ColourMap != l.colourMap {
		l.colourMap = p.ColourMap
		l.strip.table = colourmap.Create(p.ColourMap)
		mark(true, "colour map")
	}
	mark(p.DisplayWidthSamples != l.width, "display width")
	mark(p.SampleRate != l.sampleRate, "sample rate")

	n := p.Count - l.lastCount
	mark(n < 0, "sample count went backwards")
	mark(n >= int64(p.DisplayWidthSamples), "display window overrun")

	flat := p.Count < int64(p.DisplayWidthSamples)
	mark(l.flat && !flat, "display window filled")

	if redraw {
		n = min(p.Count, int64(p.DisplayWidthSamples))
		l.strip.resetColumns()
		applog.Debugf("Live: Redraw (%s)", reason)
	}

	capacity := len(src.Samples())
	n = min(n, int64(capacity))

	columns := l.strip.run(src, pass{
		offset:              ringOffset(capacity, p.Index, int(n)),
		samples:             int(n),
		displayWidthSamples: p.DisplayWidthSamples,
		mode:                p.Mode,
		redraw:              redraw,
		flatLine:            flat,
		scale:               ScaleFor(p.LowAmplitudeScale),
		foreground:          Foreground(p.NightMode, p.ColourMap),
	})

	l.mode = p.Mode
	l.night = p.NightMode
	l.width = p.DisplayWidthSamples
	l.sampleRate = p.SampleRate
	l.lastCount = p.Count
	l.dirty = false
	l.flat = flat

	l.updates.Add(1)
	l.columns.Add(uint64(columns))
	if redraw {
		l.redraws.Add(1)
	}
	l.lastSeen.Store(p.Count)

	return UpdateResult{
		Columns: columns,
		Redrawn: redraw,
		Touched: redraw || columns > 0,
	}
}

// Position returns the fractional position inside the pending column.
func (l *Live) Position() float64 {
	return l.strip.acc.Position()
}

// Stats returns running totals. Safe to call from any goroutine.
func (l *Live) Stats() Stats {
	return Stats{
		Updates:   l.updates.Load(),
		Columns:   l.columns.Load(),
		Redraws:   l.redraws.Load(),
		LastCount: l.lastSeen.Load(),
	}
}
