// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stripchart/internal/analysis"
	"stripchart/internal/audio"
	"stripchart/internal/colourmap"
	"stripchart/internal/config"
	"stripchart/internal/display"
	applog "stripchart/internal/log"
	"stripchart/internal/plate"
	"stripchart/internal/plotter"
	"stripchart/internal/session"
	"stripchart/internal/transport"
	"stripchart/internal/transport/udp"
	"stripchart/internal/tui"
)

// Initial live surface size; the terminal view resizes on its first frame.
const (
	liveWidth             = 80
	liveWaveformHeight    = 16
	liveSpectrogramHeight = 24
)

// Run executes the parsed command until it finishes or ctx is cancelled.
func Run(ctx context.Context, opts *Options, stdout io.Writer) error {
	if level, ok := applog.ParseLevel(opts.Config.LogLevel); ok {
		applog.SetLevel(level)
	}

	switch opts.Command {
	case CommandLive:
		return runLive(ctx, opts)
	case CommandServe:
		return runServe(ctx, opts.Config)
	case CommandExport:
		path, err := runExport(opts)
		if err == nil {
			fmt.Fprintf(stdout, "Plate saved to: %s\n", path)
		}
		return err
	case CommandDevices:
		return runDevices(stdout)
	}
	return fmt.Errorf("unknown command %q", opts.Command)
}

func runLive(ctx context.Context, opts *Options) error {
	cfg := opts.Config

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	applog.SetOutput(logFile)
	defer applog.SetOutput(os.Stderr)

	if opts.PickDevice {
		if err := pickDevice(cfg); err != nil {
			return err
		}
	}

	s, err := session.New(cfg, liveWidth, liveWaveformHeight, liveSpectrogramHeight)
	if err != nil {
		return err
	}
	defer s.Close()
	return tui.RunLive(ctx, s, cfg.Display.FrameRate)
}

func pickDevice(cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	sel, ok, err := tui.PickDevice()
	if err != nil {
		return err
	}
	if !ok {
		return context.Canceled
	}
	cfg.Audio.Source = config.SourceMicrophone
	cfg.Audio.InputDevice = sel.DeviceID
	cfg.Audio.SampleRate = sel.SampleRate
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := session.New(cfg, plotter.ExportWidth, plotter.ExportWaveformHeight, plotter.ExportSpectrogramHeight)
	if err != nil {
		return err
	}
	defer s.Close()
	s.SetExportConfig(cfg.Export)

	var blitters []display.Blitter
	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		defer ws.Close()
		blitters = append(blitters, transport.NewFrameBlitter(s, ws))
	} else if applog.GetLevel() == applog.LevelDebug {
		blitters = append(blitters, transport.NewFrameBlitter(s, transport.NewLoggingTransport()))
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		defer sender.Close()
		publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender, s)
		if err != nil {
			return err
		}
		publisher.Start()
		defer publisher.Close()
	}

	errc := make(chan error, 1)
	go func() {
		err := s.Run(ctx)
		if err != nil {
			cancel()
		}
		errc <- err
	}()

	applog.Infof("Serve: %s source, %d Hz, %ds window", cfg.Audio.Source, s.SampleRate(), cfg.Display.WidthSeconds)
	loop := display.NewLoop(s, cfg.Display.FrameRate, blitters...)
	if err := loop.Run(ctx); err != nil {
		return err
	}
	return <-errc
}

// exportPath derives the output file for opts, creating its directory.
func exportPath(opts *Options, format plate.Format) (string, error) {
	if opts.Output != "" {
		return opts.Output, nil
	}
	dir := opts.Config.Export.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(opts.Input), filepath.Ext(opts.Input))
	return filepath.Join(dir, base+format.Ext()), nil
}

func runExport(opts *Options) (string, error) {
	cfg := opts.Config
	format, err := plate.ParseFormat(cfg.Export.Format)
	if err != nil {
		return "", err
	}
	if opts.Output != "" && filepath.Ext(opts.Output) != "" {
		if format, err = plate.ParseFormat(filepath.Ext(opts.Output)); err != nil {
			return "", err
		}
	}
	window, err := analysis.ParseWindowFunc(cfg.Audio.Window)
	if err != nil {
		return "", err
	}
	mode, err := colourmap.ParseMode(cfg.Display.ColourMap)
	if err != nil {
		return "", err
	}

	clip, err := audio.LoadWAVFile(opts.Input)
	if err != nil {
		return "", err
	}

	copts := session.ClipOptions{
		LowAmplitudeScale: cfg.Display.LowAmplitudeScale,
		ColourMap:         mode,
		Window:            window,
		Title:             cfg.Export.Title,
	}
	if !opts.FitWidth {
		copts.DisplayWidthSeconds = cfg.Display.WidthSeconds
	}
	if copts.Title == "" {
		copts.Title = filepath.Base(opts.Input)
	}

	path, err := exportPath(opts, format)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := session.ExportClip(f, clip, format, copts); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}

func runDevices(stdout io.Writer) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	devices, err := audio.HostDevices()
	if err != nil {
		return err
	}
	audio.WriteDevices(stdout, devices)
	return nil
}
