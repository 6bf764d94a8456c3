// SPDX-License-Identifier: MIT
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"stripchart/internal/analysis"
	"stripchart/internal/audio"
	"stripchart/internal/colourmap"
	"stripchart/internal/config"
	"stripchart/internal/plate"
	"stripchart/internal/plotter"
)

const testRate = 8000

func newTestSession(t *testing.T) (*Session, *audio.Player) {
	t.Helper()
	buffers, err := audio.NewBuffers(audio.CapacityFor(8, testRate), analysis.NewSTFT(analysis.Sine))
	if err != nil {
		t.Fatal(err)
	}
	player, err := audio.NewPlayer(buffers, audio.Synthesize(testRate, 440, 2))
	if err != nil {
		t.Fatal(err)
	}
	s := NewWithSource(player, buffers, Settings{
		DisplayWidthSeconds: 1,
		ColourMap:           colourmap.Default,
	}, 80, 20, 16)
	s.SetExportConfig(config.ExportConfig{OutputDir: t.TempDir(), Format: "png", Title: "Test"})
	return s, player
}

func tick(p *audio.Player, n int) {
	for range n {
		p.Tick()
	}
}

func TestStep(t *testing.T) {
	s, p := newTestSession(t)

	res := s.Step()
	if !res.Redrawn {
		t.Error("first step should redraw")
	}

	tick(p, 150) // 1.5s, more than the display window
	res = s.Step()
	if !res.Redrawn || !res.Touched {
		t.Errorf("window fill should redraw: %+v", res)
	}

	tick(p, 10)
	res = s.Step()
	if res.Redrawn || res.Columns == 0 {
		t.Errorf("incremental step = %+v, want scrolled columns", res)
	}
	if st := s.Stats(); st.Updates != 3 || st.LastCount != s.Buffers().Cursor().Count {
		t.Errorf("stats = %+v", st)
	}
}

func TestParams(t *testing.T) {
	s, p := newTestSession(t)
	tick(p, 20)

	params := s.Params()
	c := s.Buffers().Cursor()
	if params.Count != c.Count || params.Index != c.Index {
		t.Errorf("cursor = %d/%d, want %d/%d", params.Index, params.Count, c.Index, c.Count)
	}
	if params.DisplayWidthSamples != testRate || params.SampleRate != testRate {
		t.Errorf("widths = %d at %d", params.DisplayWidthSamples, params.SampleRate)
	}
}

func TestToggles(t *testing.T) {
	s, _ := newTestSession(t)
	s.Step()

	s.ToggleNightMode()
	s.CycleColourMap()
	s.ToggleLowAmplitude()
	got := s.Settings()
	if !got.NightMode || got.ColourMap != colourmap.Monochrome || !got.LowAmplitudeScale {
		t.Errorf("settings = %+v", got)
	}
	if !s.Params().ForceRedraw {
		t.Error("scale change should force a redraw")
	}
	if res := s.Step(); !res.Redrawn {
		t.Error("step after toggles should redraw")
	}
	if s.Params().ForceRedraw {
		t.Error("redraw request not cleared by step")
	}

	s.CycleMode()
	if s.Settings().Mode != plotter.UpdateWaveform {
		t.Errorf("mode = %v, want waveform only", s.Settings().Mode)
	}
	if res := s.Step(); !res.Redrawn {
		t.Error("step after a mode change should redraw")
	}
	s.CycleMode()
	s.CycleMode()
	if s.Settings().Mode != plotter.UpdateBoth {
		t.Errorf("mode = %v, want both after a full cycle", s.Settings().Mode)
	}
}

func TestDisplayWidth(t *testing.T) {
	s, _ := newTestSession(t)

	if got := s.StepDisplayWidth(-1); got != 1 {
		t.Errorf("step below first = %d, want 1", got)
	}
	if got := s.StepDisplayWidth(1); got != 5 {
		t.Errorf("step +1 = %d, want 5", got)
	}
	// 8s of history holds no window longer than 5s.
	if got := s.StepDisplayWidth(10); got != 5 {
		t.Errorf("step past history = %d, want 5", got)
	}
	if err := s.SetDisplayWidth(20); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("SetDisplayWidth(20) err = %v, want ErrInvalid", err)
	}

	if err := s.SetDisplayWidth(1); err != nil {
		t.Fatalf("SetDisplayWidth(1): %v", err)
	}
	if err := s.SetDisplayWidth(3); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("SetDisplayWidth(3) err = %v, want ErrInvalid", err)
	}
	if s.Settings().DisplayWidthSeconds != 1 {
		t.Errorf("width = %d, want 1", s.Settings().DisplayWidthSeconds)
	}
}

func TestDisplayWidthsFitHistory(t *testing.T) {
	tests := []struct {
		seconds int
		want    []int
	}{
		{1, []int{1}},
		{8, []int{1, 5}},
		{16, []int{1, 5, 10}},
		{64, []int{1, 5, 10, 20, 60}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%ds", tt.seconds), func(t *testing.T) {
			buffers, err := audio.NewBuffers(audio.CapacityFor(tt.seconds, testRate), analysis.NewSTFT(analysis.Sine))
			if err != nil {
				t.Fatal(err)
			}
			player, err := audio.NewPlayer(buffers, audio.Synthesize(testRate, 440, 1))
			if err != nil {
				t.Fatal(err)
			}
			s := NewWithSource(player, buffers, Settings{DisplayWidthSeconds: 1}, 10, 4, 4)
			if got := s.DisplayWidths(); !slices.Equal(got, tt.want) {
				t.Errorf("DisplayWidths() = %v, want %v", got, tt.want)
			}
			last := tt.want[len(tt.want)-1]
			if got := s.StepDisplayWidth(len(config.DisplayWidths)); got != last {
				t.Errorf("step to end = %d, want %d", got, last)
			}
		})
	}
}

func TestPauseFreezesCursor(t *testing.T) {
	s, p := newTestSession(t)
	tick(p, 20)
	before := s.Buffers().Cursor()

	s.TogglePause()
	tick(p, 20)
	if c := s.Buffers().Cursor(); c != before {
		t.Errorf("cursor moved while paused: %+v -> %+v", before, c)
	}

	s.TogglePause()
	tick(p, 20)
	if c := s.Buffers().Cursor(); c.Count <= before.Count {
		t.Error("cursor did not move after resume")
	}
}

func TestExport(t *testing.T) {
	s, p := newTestSession(t)
	tick(p, 120)

	var buf bytes.Buffer
	if err := s.Export(&buf, plate.PNG, "Test"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != plate.Width || b.Dy() != plate.Height {
		t.Errorf("bounds = %v", b)
	}

	buf.Reset()
	if err := s.Export(&buf, plate.PDF, ""); err != nil {
		t.Fatalf("Export pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("pdf export has no header")
	}
}

func TestExportFile(t *testing.T) {
	s, p := newTestSession(t)
	tick(p, 50)

	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	path, err := s.ExportFile(now)
	if err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	if filepath.Base(path) != "stripchart-20240501-093000.png" {
		t.Errorf("path = %s", path)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("export file missing or empty: %v", err)
	}

	wavPath, err := s.SaveWAVFile(now)
	if err != nil {
		t.Fatalf("SaveWAVFile: %v", err)
	}
	if !strings.HasSuffix(wavPath, ".wav") {
		t.Errorf("wav path = %s", wavPath)
	}
	clip, err := audio.LoadWAVFile(wavPath)
	if err != nil {
		t.Fatalf("LoadWAVFile: %v", err)
	}
	// Less than a display window has been captured.
	if int64(len(clip.Samples)) != s.Buffers().Cursor().Count {
		t.Errorf("saved %d samples, want %d", len(clip.Samples), s.Buffers().Cursor().Count)
	}
}

func TestSaveWAVEmpty(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.SaveWAVFile(time.Now()); !errors.Is(err, audio.ErrNoSamples) {
		t.Errorf("err = %v, want ErrNoSamples", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.SampleRate = testRate
	cfg.Audio.BufferSeconds = 8
	cfg.Display.WidthSeconds = 1

	s, err := New(cfg, 40, 10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	if s.SampleRate() != testRate {
		t.Errorf("sample rate = %d", s.SampleRate())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Errorf("Run: %v", err)
	}
	if s.Buffers().Cursor().Count == 0 {
		t.Error("simulator delivered nothing")
	}

	cfg.Audio.Source = config.SourceWAV
	cfg.Audio.WAVFile = filepath.Join(t.TempDir(), "missing.wav")
	if _, err := New(cfg, 40, 10, 10); err == nil {
		t.Error("expected error for missing WAV file")
	}
}
