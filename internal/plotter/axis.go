// SPDX-License-Identifier: MIT
package plotter

import (
	"math"
	"strconv"
)

// AxisLabel is one tick on a plot axis. Coordinates are in plot pixels
// along the axis: x from the left edge for the time axis, y from the top
// edge for the vertical axes.
type AxisLabel struct {
	Text string
	Pos  float64 // where the label text is anchored
	Tick float64 // tick line coordinate, snapped to a pixel centre inside the plot
}

// Time axis tick spacing in seconds, by display width in seconds.
var timeIncrements = map[float64]float64{
	60: 15,
	20: 4,
	10: 2,
	5:  1,
	1:  0.2,
}

// Frequency axis label count by sample rate.
var frequencyLabelCounts = map[int]int{
	8000:   4,
	16000:  4,
	32000:  4,
	48000:  4,
	96000:  4,
	192000: 4,
	250000: 5,
	384000: 4,
}

const (
	defaultFrequencyLabelCount = 4
	timeLabelEdgeOffset        = 2.0
	amplitudeLabelStep         = 20 // percent
)

// TimeIncrement returns the tick spacing for a display width.
func TimeIncrement(displayWidthSeconds float64) float64 {
	if inc, ok := timeIncrements[displayWidthSeconds]; ok {
		return inc
	}
	return displayWidthSeconds / 5
}

// FrequencyLabelCount returns how many intervals the frequency axis is split into.
func FrequencyLabelCount(sampleRate int) int {
	if n, ok := frequencyLabelCounts[sampleRate]; ok {
		return n
	}
	return defaultFrequencyLabelCount
}

// snap moves a coordinate onto the centre of the pixel it falls in, keeping
// the far edge inside the plot.
func snap(v float64, extent int) float64 {
	if v >= float64(extent) {
		v -= 0.5
	}
	return math.Floor(v) + 0.5
}

// TimeLabels labels a plot width pixels wide showing displayWidthSeconds.
// The first and last labels are pulled inwards so they stay centred on
// visible text.
func TimeLabels(displayWidthSeconds float64, sampleRate, width int) []AxisLabel {
	total := int(math.Round(displayWidthSeconds * float64(sampleRate)))
	step := int(math.Round(TimeIncrement(displayWidthSeconds) * float64(sampleRate)))
	if total <= 0 || step <= 0 || width <= 0 {
		return nil
	}

	var labels []AxisLabel
	for sample := 0; sample <= total; sample += step {
		x := float64(sample) / float64(total) * float64(width)
		pos := x
		switch x {
		case 0:
			pos += timeLabelEdgeOffset
		case float64(width):
			pos -= timeLabelEdgeOffset
		}
		labels = append(labels, AxisLabel{
			Text: strconv.FormatFloat(float64(sample)/float64(sampleRate), 'f', -1, 64),
			Pos:  pos,
			Tick: snap(x, width),
		})
	}
	return labels
}

// AmplitudeLabels labels the waveform axis from 100% at the bottom through
// 0% at the centre to 100% at the top.
func AmplitudeLabels(height int) []AxisLabel {
	if height <= 0 {
		return nil
	}
	centre := float64(height) / 2
	var below, above []AxisLabel
	for pct := 0; pct <= 100; pct += amplitudeLabelStep {
		text := strconv.Itoa(pct) + "%"
		offset := float64(pct) / 100 * centre
		above = append(above, AxisLabel{Text: text, Pos: centre - offset, Tick: snap(centre-offset, height)})
		if pct > 0 {
			below = append(below, AxisLabel{Text: text, Pos: centre + offset, Tick: snap(centre+offset, height)})
		}
	}
	labels := make([]AxisLabel, 0, len(below)+len(above))
	for i := len(below) - 1; i >= 0; i-- {
		labels = append(labels, below[i])
	}
	return append(labels, above...)
}

// FrequencyLabels labels the spectrogram axis from 0 Hz at the bottom to
// Nyquist at the top, in kHz.
func FrequencyLabels(sampleRate, height int) []AxisLabel {
	if height <= 0 || sampleRate <= 0 {
		return nil
	}
	count := FrequencyLabelCount(sampleRate)
	nyquist := float64(sampleRate) / 2
	labels := make([]AxisLabel, 0, count+1)
	for i := 0; i <= count; i++ {
		khz := float64(i) * nyquist / float64(count) / 1000
		y := float64(height) - float64(i)*float64(height)/float64(count)
		labels = append(labels, AxisLabel{
			Text: strconv.FormatFloat(khz, 'f', -1, 64) + "kHz",
			Pos:  y,
			Tick: snap(y, height),
		})
	}
	return labels
}
