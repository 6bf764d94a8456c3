// SPDX-License-Identifier: MIT

// Package plate composes an exported strip chart: both plots, their
// borders, axis ticks and labels, captions and a title. The layout is
// computed once and replayed onto a Canvas, so the raster and PDF outputs
// share every coordinate.
package plate

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"stripchart/internal/plotter"
)

// Plate size and margins in pixels (points in the PDF).
const (
	Width  = 840
	Height = Width / 4 * 3

	xAxisLabelH  = 10
	yAxisLabelW  = 15
	xAxisMarkerH = 25
	yAxisMarkerW = 40
	edgeSpacingW = 15
	edgeSpacingH = 15
	topSpacing   = 30 + edgeSpacingH
	xAxisH       = xAxisMarkerH + xAxisLabelH
	yAxisW       = yAxisMarkerW + yAxisLabelW + edgeSpacingW

	markerLength  = 5
	labelGap      = 7
	labelFontSize = 10
	titleFontSize = 13
)

// Align positions text horizontally against its anchor.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Baseline positions text vertically against its anchor.
type Baseline int

const (
	BaselineTop Baseline = iota
	BaselineMiddle
)

// Text is a single label.
type Text struct {
	S        string
	X, Y     float64
	Size     float64
	Align    Align
	Baseline Baseline
	// Rotated turns the text a quarter anticlockwise about (X, Y) so it
	// reads bottom to top.
	Rotated bool
}

// Canvas is the set of drawing primitives a plate needs.
type Canvas interface {
	Image(img image.Image, x, y float64) error
	Line(x0, y0, x1, y1 float64)
	StrokeRect(x, y, w, h float64)
	Text(t Text)
}

// Layout is a prepared snapshot placed on the plate.
type Layout struct {
	snap  *plotter.Snapshot
	title string

	plotX        float64
	waveformY    float64
	spectrogramY float64
}

// NewLayout places snap on the plate.
func NewLayout(snap *plotter.Snapshot, title string) *Layout {
	wh := float64(snap.Waveform.Height)
	sh := float64(snap.Spectrogram.Height)
	plotSpacing := Height - (topSpacing + wh + sh + xAxisH + edgeSpacingH)
	return &Layout{
		snap:         snap,
		title:        title,
		plotX:        yAxisW,
		waveformY:    topSpacing,
		spectrogramY: topSpacing + wh + plotSpacing,
	}
}

// Draw replays the plate onto c.
func (l *Layout) Draw(c Canvas) error {
	wave, spec := l.snap.Waveform, l.snap.Spectrogram
	plotW := float64(wave.Width)
	wh, sh := float64(wave.Height), float64(spec.Height)

	if err := c.Image(wave.NRGBA(), l.plotX, l.waveformY); err != nil {
		return fmt.Errorf("failed to draw waveform: %w", err)
	}
	if err := c.Image(spec.NRGBA(), l.plotX, l.spectrogramY); err != nil {
		return fmt.Errorf("failed to draw spectrogram: %w", err)
	}

	// Borders run along pixel centres just inside each plot.
	c.StrokeRect(l.plotX+0.5, l.waveformY+0.5, plotW-1, wh-1)
	c.StrokeRect(l.plotX+0.5, l.spectrogramY+0.5, float64(spec.Width)-1, sh-1)

	waveBottom := l.waveformY + wh
	specBottom := l.spectrogramY + sh
	for _, label := range l.snap.Time {
		x := l.plotX + label.Tick
		c.Line(x, waveBottom, x, waveBottom+markerLength)
		c.Line(x, specBottom, x, specBottom+markerLength)
		c.Text(Text{S: label.Text, X: l.plotX + label.Pos, Y: specBottom + labelGap, Size: labelFontSize, Align: AlignCenter, Baseline: BaselineTop})
	}
	l.yAxis(c, l.snap.Amplitude, l.waveformY)
	l.yAxis(c, l.snap.Frequency, l.spectrogramY)

	centreX := l.plotX + plotW/2
	c.Text(Text{S: "Time (s)", X: centreX, Y: specBottom + xAxisMarkerH, Size: labelFontSize, Align: AlignCenter, Baseline: BaselineTop})
	c.Text(Text{S: "Amplitude", X: edgeSpacingW, Y: l.waveformY + wh/2, Size: labelFontSize, Align: AlignCenter, Baseline: BaselineTop, Rotated: true})
	c.Text(Text{S: "Frequency", X: edgeSpacingW, Y: l.spectrogramY + sh/2, Size: labelFontSize, Align: AlignCenter, Baseline: BaselineTop, Rotated: true})
	if l.title != "" {
		c.Text(Text{S: l.title, X: centreX, Y: edgeSpacingH + 8, Size: titleFontSize, Align: AlignCenter, Baseline: BaselineTop})
	}
	return nil
}

func (l *Layout) yAxis(c Canvas, labels []plotter.AxisLabel, top float64) {
	for _, label := range labels {
		y := top + label.Tick
		c.Line(l.plotX, y, l.plotX-markerLength, y)
		c.Text(Text{S: label.Text, X: l.plotX - labelGap, Y: y, Size: labelFontSize, Align: AlignRight, Baseline: BaselineMiddle})
	}
}

// textOffset returns where a run of text width wide starts along its
// direction and where its baseline sits, relative to the anchor, for a font
// with the given ascent and descent (both positive).
func textOffset(t Text, width, ascent, descent float64) (dx, dy float64) {
	switch t.Align {
	case AlignCenter:
		dx = -width / 2
	case AlignRight:
		dx = -width
	}
	switch t.Baseline {
	case BaselineTop:
		dy = ascent
	case BaselineMiddle:
		dy = (ascent - descent) / 2
	}
	return dx, dy
}

// Format is an export file format.
type Format int

const (
	PNG Format = iota
	JPEG
	PDF
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts png, jpg, jpeg and pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	default:
		return PNG, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext returns the file extension, with the dot.
func (f Format) Ext() string {
	switch f {
	case JPEG:
		return ".jpg"
	case PDF:
		return ".pdf"
	default:
		return ".png"
	}
}

func (f Format) String() string {
	return strings.TrimPrefix(f.Ext(), ".")
}
