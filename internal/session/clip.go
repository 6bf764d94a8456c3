// SPDX-License-Identifier: MIT
package session

import (
	"io"
	"math"
	"time"

	"stripchart/internal/analysis"
	"stripchart/internal/audio"
	"stripchart/internal/colourmap"
	"stripchart/internal/config"
	applog "stripchart/internal/log"
	"stripchart/internal/plate"
	"stripchart/internal/plotter"
)

// ClipOptions control an offline plate of a clip.
type ClipOptions struct {
	DisplayWidthSeconds int // zero picks the shortest width covering the clip
	LowAmplitudeScale   bool
	ColourMap           colourmap.Mode
	Window              analysis.WindowFunc
	Title               string
}

// FitDisplayWidth returns the shortest selectable display width that
// covers d, or the longest one if none does.
func FitDisplayWidth(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	for _, w := range config.DisplayWidths {
		if w >= secs {
			return w
		}
	}
	return config.DisplayWidths[len(config.DisplayWidths)-1]
}

// ExportClip runs clip through fresh capture buffers and writes a plate of
// its final display window to w.
func ExportClip(w io.Writer, clip *audio.Clip, format plate.Format, opts ClipOptions) error {
	if len(clip.Samples) == 0 {
		return audio.ErrEmptyClip
	}
	width := opts.DisplayWidthSeconds
	if width <= 0 {
		width = FitDisplayWidth(clip.Duration())
	}

	rate := float64(clip.SampleRate)
	buffers, err := audio.NewBuffers(audio.CapacityFor(width, rate), analysis.NewSTFT(opts.Window))
	if err != nil {
		return err
	}
	buffers.Write(clip.Samples)

	c := buffers.Cursor()
	applog.Infof("Session: Exporting %s of %d samples at %d Hz (%ds window)",
		format, c.Count, clip.SampleRate, width)
	snap, err := plotter.NewExport().Prepare(buffers, plotter.ExportParams{
		Index:               c.Index,
		Count:               c.Count,
		DisplayWidthSeconds: float64(width),
		SampleRate:          clip.SampleRate,
		LowAmplitudeScale:   opts.LowAmplitudeScale,
		ColourMap:           opts.ColourMap,
	})
	if err != nil {
		return err
	}
	return plate.Encode(w, snap, opts.Title, format)
}
