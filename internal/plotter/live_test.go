// SPDX-License-Identifier: MIT
package plotter

import (
	"testing"

	"stripchart/internal/colourmap"
)

const (
	testWidth      = 50
	testWaveHeight = 40
	testSpecHeight = 32
	testRate       = 5000
	testDWS        = 5000 // one second, 100 samples per column
	testCapacity   = 16384
)

func liveParams(p *producer) UpdateParams {
	return UpdateParams{
		Mode:                UpdateBoth,
		Index:               p.index(),
		Count:               p.count,
		DisplayWidthSamples: testDWS,
		SampleRate:          testRate,
	}
}

func newTestLive() *Live {
	return NewLive(testWidth, testWaveHeight, testSpecHeight, colourmap.Default)
}

func TestLiveScrollPreservesContent(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(testDWS, tone)
	l := newTestLive()

	res := l.Update(p.rings, liveParams(p))
	if !res.Redrawn || res.Columns != testWidth {
		t.Fatalf("first update = %+v, want full redraw of %d columns", res, testWidth)
	}
	wave, spec := cloneSurface(l.Waveform()), cloneSurface(l.Spectrogram())

	p.write(300, tone)
	res = l.Update(p.rings, liveParams(p))
	if res.Redrawn {
		t.Fatal("incremental update redrew")
	}
	if res.Columns != 3 || !res.Touched {
		t.Fatalf("update = %+v, want 3 touched columns", res)
	}
	assertColumnsShifted(t, "waveform", wave, l.Waveform(), res.Columns)
	assertColumnsShifted(t, "spectrogram", spec, l.Spectrogram(), res.Columns)
}

func TestLiveForcedRedrawClearsHistory(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(2000, tone)
	l := newTestLive()
	l.Update(p.rings, liveParams(p))

	p.write(500, tone)
	params := liveParams(p)
	params.ForceRedraw = true
	res := l.Update(p.rings, params)
	if !res.Redrawn || res.Columns != 25 {
		t.Fatalf("update = %+v, want redraw of 25 columns", res)
	}
	spec := l.Spectrogram()
	for x := 0; x < testWidth-res.Columns; x++ {
		if !columnBlank(spec, x) {
			t.Fatalf("spectrogram column %d not blank after redraw", x)
		}
	}
	for x := testWidth - res.Columns; x < testWidth; x++ {
		if columnBlank(spec, x) {
			t.Fatalf("spectrogram column %d blank, want drawn", x)
		}
	}
}

func TestLiveColdStartDrawsCentreLine(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(1200, tone)
	l := newTestLive()
	res := l.Update(p.rings, liveParams(p))
	if res.Columns != 12 {
		t.Errorf("columns = %d, want 12", res.Columns)
	}
	wave := l.Waveform()
	centre := testWaveHeight / 2
	for x := range testWidth {
		for y := range testWaveHeight {
			lit := wave.At(x, y) != colourmap.Blank
			if lit != (y == centre) {
				t.Fatalf("pixel (%d,%d) lit = %v", x, y, lit)
			}
		}
	}
}

func TestLiveWindowFillingRedraws(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(4900, tone)
	l := newTestLive()
	l.Update(p.rings, liveParams(p))
	p.write(200, tone)
	res := l.Update(p.rings, liveParams(p))
	if !res.Redrawn || res.Columns != testWidth {
		t.Errorf("update = %+v, want redraw over the full window", res)
	}
	if columnBlank(l.Waveform(), 0) {
		t.Error("waveform history was not drawn once the window filled")
	}
}

func TestLiveRedrawTriggers(t *testing.T) {
	tests := []struct {
		name   string
		change func(p *producer, params *UpdateParams)
	}{
		{"sample rate", func(p *producer, params *UpdateParams) { params.SampleRate = 4000 }},
		{"display width", func(p *producer, params *UpdateParams) { params.DisplayWidthSamples = 2500 }},
		{"night mode", func(p *producer, params *UpdateParams) { params.NightMode = true }},
		{"update mode", func(p *producer, params *UpdateParams) { params.Mode = UpdateSpectrogram }},
		{"colour map", func(p *producer, params *UpdateParams) { params.ColourMap = colourmap.Monochrome }},
		{"window overrun", func(p *producer, params *UpdateParams) {
			p.write(testDWS, tone)
			params.Index, params.Count = p.index(), p.count
		}},
		{"count went backwards", func(p *producer, params *UpdateParams) {
			p.count = 0
			p.write(700, tone)
			params.Index, params.Count = p.index(), p.count
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProducer(testCapacity)
			p.write(6000, tone)
			l := newTestLive()
			l.Update(p.rings, liveParams(p))

			p.write(100, tone)
			params := liveParams(p)
			tt.change(p, &params)
			res := l.Update(p.rings, params)
			if !res.Redrawn {
				t.Errorf("update = %+v, want redraw", res)
			}
		})
	}
}

func TestLiveIdleUpdateTouchesNothing(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(6000, tone)
	l := newTestLive()
	l.Update(p.rings, liveParams(p))
	res := l.Update(p.rings, liveParams(p))
	if res.Touched || res.Columns != 0 || res.Redrawn {
		t.Errorf("idle update = %+v, want zero value", res)
	}
	// Fewer samples than one column.
	p.write(50, tone)
	if res := l.Update(p.rings, liveParams(p)); res.Touched {
		t.Errorf("sub-column update = %+v, want untouched", res)
	}
}

func TestLiveWaveformOnlyMode(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(6000, tone)
	l := newTestLive()
	params := liveParams(p)
	params.Mode = UpdateWaveform
	l.Update(p.rings, params)
	spec := cloneSurface(l.Spectrogram())
	wave := cloneSurface(l.Waveform())

	p.write(400, tone)
	params = liveParams(p)
	params.Mode = UpdateWaveform
	res := l.Update(p.rings, params)
	if res.Columns != 4 {
		t.Fatalf("columns = %d, want 4", res.Columns)
	}
	if !l.Spectrogram().Equal(spec) {
		t.Error("spectrogram changed in waveform-only mode")
	}
	assertColumnsShifted(t, "waveform", wave, l.Waveform(), res.Columns)
}

func TestLiveResizeRebuildsRowLookup(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(6000, tone)
	l := newTestLive()
	l.Update(p.rings, liveParams(p))

	l.Resize(80, 0, 64)
	if l.Waveform().Height != testWaveHeight {
		t.Errorf("waveform height = %d, want unchanged %d", l.Waveform().Height, testWaveHeight)
	}
	if l.Waveform().Width != 80 || l.Spectrogram().Width != 80 {
		t.Fatal("surface widths differ after resize")
	}
	if len(l.strip.rows) != 64 {
		t.Fatalf("row lookup length = %d, want 64", len(l.strip.rows))
	}
	if columnBlank(l.Spectrogram(), 0) {
		t.Error("resize did not stretch the previous content")
	}
	res := l.Update(p.rings, liveParams(p))
	if !res.Redrawn || res.Columns != 80 {
		t.Errorf("update after resize = %+v, want full redraw", res)
	}
}

func TestLiveResetBlanksSurfaces(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(6000, tone)
	l := newTestLive()
	l.Update(p.rings, liveParams(p))
	l.Reset(colourmap.Inverse)
	for x := range testWidth {
		if !columnBlank(l.Spectrogram(), x) {
			t.Fatal("spectrogram not blank after reset")
		}
	}
	params := liveParams(p)
	params.ColourMap = colourmap.Inverse
	if res := l.Update(p.rings, params); !res.Redrawn {
		t.Error("update after reset did not redraw")
	}
}

func TestLiveStats(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(6000, tone)
	l := newTestLive()
	l.Update(p.rings, liveParams(p))
	p.write(200, tone)
	l.Update(p.rings, liveParams(p))

	s := l.Stats()
	if s.Updates != 2 || s.Redraws != 1 || s.Columns != testWidth+2 || s.LastCount != 6200 {
		t.Errorf("stats = %+v", s)
	}
}

func TestLiveMatchesExportAtSameResolution(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(7000, tone)

	l := newTestLive()
	l.Update(p.rings, liveParams(p))

	e := NewExportSize(testWidth, testWaveHeight, testSpecHeight)
	snap, err := e.Prepare(p.rings, ExportParams{
		Index:               p.index(),
		Count:               p.count,
		DisplayWidthSeconds: 1,
		SampleRate:          testRate,
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !snap.Waveform.Equal(l.Waveform()) {
		t.Error("waveform differs between live and export")
	}
	if !snap.Spectrogram.Equal(l.Spectrogram()) {
		t.Error("spectrogram differs between live and export")
	}
}

func TestLiveModeChangeKeepsSurfacesInStep(t *testing.T) {
	p := newProducer(testCapacity)
	p.write(6000, tone)
	l := newTestLive()
	for range 5 {
		p.write(300, tone)
		params := liveParams(p)
		params.Mode = UpdateWaveform
		l.Update(p.rings, params)
	}

	p.write(300, tone)
	res := l.Update(p.rings, liveParams(p))
	if !res.Redrawn || res.Columns != testWidth {
		t.Fatalf("update after mode change = %+v, want full redraw", res)
	}

	e := NewExportSize(testWidth, testWaveHeight, testSpecHeight)
	snap, err := e.Prepare(p.rings, ExportParams{
		Index:               p.index(),
		Count:               p.count,
		DisplayWidthSeconds: 1,
		SampleRate:          testRate,
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !snap.Waveform.Equal(l.Waveform()) {
		t.Error("waveform out of step after mode change")
	}
	if !snap.Spectrogram.Equal(l.Spectrogram()) {
		t.Error("spectrogram out of step after mode change")
	}
}

func BenchmarkLiveUpdate(b *testing.B) {
	p := newProducer(1 << 20)
	l := NewLive(1200, 200, 256, colourmap.Default)
	p.write(48000, tone)
	l.Update(p.rings, UpdateParams{Index: p.index(), Count: p.count, DisplayWidthSamples: 480000, SampleRate: 48000})

	b.ReportAllocs()
	for b.Loop() {
		p.write(800, tone)
		l.Update(p.rings, UpdateParams{Index: p.index(), Count: p.count, DisplayWidthSamples: 480000, SampleRate: 48000})
	}
}
