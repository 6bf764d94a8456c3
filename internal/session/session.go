// SPDX-License-Identifier: MIT

// Package session ties a capture source to the live renderer and holds the
// user's display settings. The terminal view and the headless server both
// drive one.
package session

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"stripchart/internal/analysis"
	"stripchart/internal/audio"
	"stripchart/internal/colourmap"
	"stripchart/internal/config"
	applog "stripchart/internal/log"
	"stripchart/internal/plate"
	"stripchart/internal/plotter"
)

// Source feeds the session's buffers until its context is cancelled.
type Source interface {
	Run(ctx context.Context) error
	SampleRate() float64
}

// Settings are the user-adjustable display options.
type Settings struct {
	DisplayWidthSeconds int
	NightMode           bool
	LowAmplitudeScale   bool
	ColourMap           colourmap.Mode
	Mode                plotter.Mode
	Paused              bool
}

// Session owns the capture buffers, the active source and the live
// renderer. Its methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	buffers  *audio.Buffers
	source   Source
	live     *plotter.Live
	export   *plotter.Export
	settings Settings
	redraw   bool

	sampleRate int
	exportCfg  config.ExportConfig
	cleanup    func() error
}

// New builds a session from cfg with live surfaces of the given size.
// A microphone source initialises PortAudio; Close releases it.
func New(cfg *config.Config, width, waveformHeight, spectrogramHeight int) (*Session, error) {
	mode, err := colourmap.ParseMode(cfg.Display.ColourMap)
	if err != nil {
		return nil, err
	}
	window, err := analysis.ParseWindowFunc(cfg.Audio.Window)
	if err != nil {
		return nil, err
	}

	var clip *audio.Clip
	rate := cfg.Audio.SampleRate
	switch cfg.Audio.Source {
	case config.SourceSimulator:
		clip = audio.Synthesize(int(rate), cfg.Audio.ToneHz, 4)
	case config.SourceWAV:
		if clip, err = audio.LoadWAVFile(cfg.Audio.WAVFile); err != nil {
			return nil, err
		}
		rate = float64(clip.SampleRate)
	}

	buffers, err := audio.NewBuffers(audio.CapacityFor(cfg.Audio.BufferSeconds, rate), analysis.NewSTFT(window))
	if err != nil {
		return nil, err
	}

	s := &Session{
		buffers: buffers,
		live:    plotter.NewLive(width, waveformHeight, spectrogramHeight, mode),
		export:  plotter.NewExport(),
		settings: Settings{
			DisplayWidthSeconds: cfg.Display.WidthSeconds,
			NightMode:           cfg.Display.NightMode,
			LowAmplitudeScale:   cfg.Display.LowAmplitudeScale,
			ColourMap:           mode,
			Mode:                plotter.UpdateBoth,
		},
		sampleRate: int(math.Round(rate)),
		exportCfg:  cfg.Export,
		cleanup:    func() error { return nil },
	}

	if clip != nil {
		if s.source, err = audio.NewPlayer(buffers, clip); err != nil {
			return nil, err
		}
	} else {
		if err := audio.Initialize(); err != nil {
			return nil, err
		}
		engine, err := audio.NewEngine(&cfg.Audio, buffers)
		if err != nil {
			audio.Terminate()
			return nil, err
		}
		s.source = engine
		s.cleanup = audio.Terminate
	}

	applog.Infof("Session: %s source at %d Hz, %d sample history", cfg.Audio.Source, s.sampleRate, buffers.Capacity())
	return s, nil
}

// NewWithSource builds a session around an existing source and buffers.
func NewWithSource(source Source, buffers *audio.Buffers, settings Settings, width, waveformHeight, spectrogramHeight int) *Session {
	return &Session{
		buffers:    buffers,
		source:     source,
		live:       plotter.NewLive(width, waveformHeight, spectrogramHeight, settings.ColourMap),
		export:     plotter.NewExport(),
		settings:   settings,
		sampleRate: int(math.Round(source.SampleRate())),
		exportCfg:  config.ExportConfig{OutputDir: config.DefaultExportDir, Format: config.DefaultExportFormat},
		cleanup:    func() error { return nil },
	}
}

// SetExportConfig changes where and how ExportFile and SaveWAVFile write.
func (s *Session) SetExportConfig(cfg config.ExportConfig) {
	s.mu.Lock()
	s.exportCfg = cfg
	s.mu.Unlock()
}

// Run feeds the buffers from the source until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	return s.source.Run(ctx)
}

// Close releases the audio subsystem if the session opened it.
func (s *Session) Close() error {
	return s.cleanup()
}

func (s *Session) Buffers() *audio.Buffers { return s.buffers }
func (s *Session) SampleRate() int         { return s.sampleRate }

// Settings returns a copy of the current settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Params returns the update parameters for the next frame.
func (s *Session) Params() plotter.UpdateParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params()
}

func (s *Session) params() plotter.UpdateParams {
	c := s.buffers.Cursor()
	return plotter.UpdateParams{
		Mode:                s.settings.Mode,
		ForceRedraw:         s.redraw,
		Index:               c.Index,
		Count:               c.Count,
		DisplayWidthSamples: s.settings.DisplayWidthSeconds * s.sampleRate,
		SampleRate:          s.sampleRate,
		NightMode:           s.settings.NightMode,
		LowAmplitudeScale:   s.settings.LowAmplitudeScale,
		ColourMap:           s.settings.ColourMap,
	}
}

// Step renders everything captured since the previous step.
func (s *Session) Step() plotter.UpdateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.live.Update(s.buffers, s.params())
	s.redraw = false
	return res
}

// View calls fn with the live surfaces while no step can run.
func (s *Session) View(fn func(waveform, spectrogram *plotter.Surface)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.live.Waveform(), s.live.Spectrogram())
}

// Stats returns the renderer totals.
func (s *Session) Stats() plotter.Stats {
	return s.live.Stats()
}

// Resize changes the live surface size. The next step redraws.
func (s *Session) Resize(width, waveformHeight, spectrogramHeight int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live.Resize(width, waveformHeight, spectrogramHeight)
}

// ToggleNightMode switches the waveform colour between day and night.
func (s *Session) ToggleNightMode() {
	s.mu.Lock()
	s.settings.NightMode = !s.settings.NightMode
	s.mu.Unlock()
}

// ToggleLowAmplitude switches the spectrogram colour scale.
func (s *Session) ToggleLowAmplitude() {
	s.mu.Lock()
	s.settings.LowAmplitudeScale = !s.settings.LowAmplitudeScale
	s.redraw = true
	s.mu.Unlock()
}

// CycleColourMap moves to the next colour map.
func (s *Session) CycleColourMap() {
	s.mu.Lock()
	s.settings.ColourMap = s.settings.ColourMap.Next()
	s.mu.Unlock()
}

// CycleMode moves to the next update mode. The renderer redraws on the
// next step.
func (s *Session) CycleMode() {
	s.mu.Lock()
	s.settings.Mode = (s.settings.Mode + 1) % 3
	s.mu.Unlock()
}

// TogglePause freezes or resumes capture. While paused the buffers drop
// incoming audio, so the view and exports show the moment of pausing.
func (s *Session) TogglePause() {
	s.mu.Lock()
	s.settings.Paused = !s.settings.Paused
	s.buffers.SetPaused(s.settings.Paused)
	s.mu.Unlock()
}

// DisplayWidths returns the entries of config.DisplayWidths whose window
// fits in the ring history. The shortest width is always included.
func (s *Session) DisplayWidths() []int {
	capacity := s.buffers.Capacity()
	widths := config.DisplayWidths[:1]
	for i, w := range config.DisplayWidths[1:] {
		if w*s.sampleRate > capacity {
			break
		}
		widths = config.DisplayWidths[:i+2]
	}
	return widths
}

// SetDisplayWidth selects one of DisplayWidths.
func (s *Session) SetDisplayWidth(seconds int) error {
	widths := s.DisplayWidths()
	if !slices.Contains(widths, seconds) {
		return fmt.Errorf("%w: display width %ds is not one of %v", config.ErrInvalid, seconds, widths)
	}
	s.mu.Lock()
	s.settings.DisplayWidthSeconds = seconds
	s.mu.Unlock()
	return nil
}

// StepDisplayWidth moves delta places through DisplayWidths, stopping at
// either end.
func (s *Session) StepDisplayWidth(delta int) int {
	widths := s.DisplayWidths()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(widths, s.settings.DisplayWidthSeconds)
	if i < 0 {
		i = 0
	}
	i = min(max(i+delta, 0), len(widths)-1)
	s.settings.DisplayWidthSeconds = widths[i]
	return s.settings.DisplayWidthSeconds
}

// Snapshot renders the current display window at plate resolution.
func (s *Session) Snapshot() (*plotter.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.buffers.Cursor()
	return s.export.Prepare(s.buffers, plotter.ExportParams{
		Index:               c.Index,
		Count:               c.Count,
		DisplayWidthSeconds: float64(s.settings.DisplayWidthSeconds),
		SampleRate:          s.sampleRate,
		LowAmplitudeScale:   s.settings.LowAmplitudeScale,
		ColourMap:           s.settings.ColourMap,
	})
}

// Export writes a plate of the current display window to w.
func (s *Session) Export(w io.Writer, format plate.Format, title string) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	return plate.Encode(w, snap, title, format)
}

// ExportFile writes a plate into the configured export directory and
// returns its path.
func (s *Session) ExportFile(now time.Time) (string, error) {
	s.mu.Lock()
	cfg := s.exportCfg
	s.mu.Unlock()
	format, err := plate.ParseFormat(cfg.Format)
	if err != nil {
		return "", err
	}
	return s.writeFile(cfg.OutputDir, now, format.Ext(), func(f *os.File) error {
		return s.Export(f, format, cfg.Title)
	})
}

// SaveWAV writes the current display window as 16-bit mono WAV.
func (s *Session) SaveWAV(w io.WriteSeeker) error {
	s.mu.Lock()
	n := s.settings.DisplayWidthSeconds * s.sampleRate
	s.mu.Unlock()
	return audio.SaveWindow(w, s.buffers, s.buffers.Cursor(), n, s.sampleRate)
}

// SaveWAVFile writes the current display window into the export directory
// and returns its path.
func (s *Session) SaveWAVFile(now time.Time) (string, error) {
	s.mu.Lock()
	dir := s.exportCfg.OutputDir
	s.mu.Unlock()
	return s.writeFile(dir, now, ".wav", func(f *os.File) error {
		return s.SaveWAV(f)
	})
}

func (s *Session) writeFile(dir string, now time.Time, ext string, write func(*os.File) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, "stripchart-"+now.Format("20060102-150405")+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	applog.Infof("Session: Wrote %s", path)
	return path, nil
}
