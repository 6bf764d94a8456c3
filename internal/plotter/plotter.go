// SPDX-License-Identifier: MIT

// Package plotter renders a sample ring and its spectral frames into pixel
// columns for two strip charts: a min/max waveform and a peak-hold
// spectrogram. Live draws incrementally at screen resolution; Export draws a
// full window at a fixed plate resolution. Both share the same column routine.
package plotter

import (
	"stripchart/internal/analysis"
	"stripchart/internal/colourmap"
)

// Spectral frame layout, fixed by the upstream transform.
const (
	STFTInputSamples  = analysis.WindowSize
	STFTOutputSamples = analysis.Bins
	stftRatio         = analysis.Ratio
)

// Waveform foreground colours.
var (
	PixelColour                = colourmap.Pack(0, 77, 153, 255)
	PixelColourNight           = colourmap.Pack(0, 170, 250, 220)
	PixelColourMonochrome      = colourmap.Pack(48, 48, 48, 255)
	PixelColourMonochromeNight = colourmap.Pack(210, 210, 210, 220)
)

// Foreground picks the waveform colour for a display mode.
func Foreground(night bool, mode colourmap.Mode) uint32 {
	switch {
	case night && mode == colourmap.Default:
		return PixelColourNight
	case night:
		return PixelColourMonochromeNight
	case mode == colourmap.Default:
		return PixelColour
	default:
		return PixelColourMonochrome
	}
}

// Mode selects which surfaces an update draws.
type Mode int

const (
	UpdateBoth Mode = iota
	UpdateWaveform
	UpdateSpectrogram
)

func (m Mode) String() string {
	switch m {
	case UpdateWaveform:
		return "waveform"
	case UpdateSpectrogram:
		return "spectrogram"
	default:
		return "both"
	}
}

func (m Mode) waveform() bool    { return m == UpdateBoth || m == UpdateWaveform }
func (m Mode) spectrogram() bool { return m == UpdateBoth || m == UpdateSpectrogram }

// Source is the read side of the capture buffers. Samples is the circular
// store of 16-bit samples; Frames holds one frame of STFTOutputSamples
// values for every STFTInputSamples samples, so the frame for the window
// starting at ring index i begins at Frames()[i/2]. Both slices are read
// only for the renderer.
type Source interface {
	Samples() []int16
	Frames() []float32
}

// Rings is a Source over plain slices.
type Rings struct {
	SampleRing []int16
	FrameRing  []float32
}

// NewRings allocates zeroed rings for capacity samples.
func NewRings(capacity int) *Rings {
	return &Rings{
		SampleRing: make([]int16, capacity),
		FrameRing:  make([]float32, capacity/stftRatio),
	}
}

func (r *Rings) Samples() []int16  { return r.SampleRing }
func (r *Rings) Frames() []float32 { return r.FrameRing }
