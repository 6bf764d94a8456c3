// SPDX-License-Identifier: MIT
package plotter

import (
	"errors"
	"fmt"
	"math"

	"stripchart/internal/colourmap"
)

// Export plot sizes in pixels.
const (
	ExportWidth             = 748
	ExportWaveformHeight    = 238
	ExportSpectrogramHeight = 255
)

var (
	ErrDisplayWidth = errors.New("display width must be positive")
	ErrSampleRate   = errors.New("sample rate must be positive")
)

// ExportParams selects the window of history to render.
type ExportParams struct {
	Index               int
	Count               int64
	DisplayWidthSeconds float64
	SampleRate          int
	LowAmplitudeScale   bool
	ColourMap           colourmap.Mode
}

// Snapshot is a prepared export: both surfaces plus axis labels in plot
// coordinates.
type Snapshot struct {
	Waveform    *Surface
	Spectrogram *Surface

	Time      []AxisLabel // along the shared x axis
	Amplitude []AxisLabel // waveform y axis
	Frequency []AxisLabel // spectrogram y axis
}

// Export renders a static window at plate resolution.
type Export struct {
	strip *strip
	mode  colourmap.Mode
}

// NewExport creates an export renderer at the standard plate sizes.
func NewExport() *Export {
	return NewExportSize(ExportWidth, ExportWaveformHeight, ExportSpectrogramHeight)
}

// NewExportSize creates an export renderer with custom surface sizes.
func NewExportSize(width, waveformHeight, spectrogramHeight int) *Export {
	return &Export{
		strip: newStrip(width, waveformHeight, spectrogramHeight, colourmap.Create(colourmap.Default)),
		mode:  colourmap.Default,
	}
}

// Prepare renders the most recent DisplayWidthSeconds of history ending at
// p.Index. The returned surfaces are owned by e and overwritten by the next
// call.
func (e *Export) Prepare(src Source, p ExportParams) (*Snapshot, error) {
	if !(p.DisplayWidthSeconds > 0) {
		return nil, ErrDisplayWidth
	}
	if p.SampleRate <= 0 {
		return nil, ErrSampleRate
	}
	displayWidthSamples := int(math.Round(p.DisplayWidthSeconds * float64(p.SampleRate)))
	if displayWidthSamples <= 0 {
		return nil, fmt.Errorf("display width of %gs at %d Hz is under one sample: %w", p.DisplayWidthSeconds, p.SampleRate, ErrDisplayWidth)
	}

	if p.ColourMap != e.mode {
		e.mode = p.ColourMap
		e.strip.table = colourmap.Create(p.ColourMap)
	}

	capacity := len(src.Samples())
	n := int(min(max(p.Count, 0), int64(displayWidthSamples), int64(capacity)))

	e.strip.resetColumns()
	e.strip.run(src, pass{
		offset:              ringOffset(capacity, p.Index, n),
		samples:             n,
		displayWidthSamples: displayWidthSamples,
		mode:                UpdateBoth,
		redraw:              true,
		flatLine:            p.Count < int64(displayWidthSamples),
		scale:               ScaleFor(p.LowAmplitudeScale),
		foreground:          Foreground(false, p.ColourMap),
	})

	w := e.strip.waveform
	s := e.strip.spectrogram
	return &Snapshot{
		Waveform:    w,
		Spectrogram: s,
		Time:        TimeLabels(p.DisplayWidthSeconds, p.SampleRate, w.Width),
		Amplitude:   AmplitudeLabels(w.Height),
		Frequency:   FrequencyLabels(p.SampleRate, s.Height),
	}, nil
}
