// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stripchart/internal/config"
)

func TestParseArgs(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, o *Options)
	}{
		{
			name:    "root runs live",
			args:    nil,
			command: CommandLive,
			check: func(t *testing.T, o *Options) {
				if o.Config.Audio.Source != config.SourceSimulator || o.PickDevice {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name:    "live display flags",
			args:    []string{"-W", "20", "--night", "-c", "inverse", "--pick-device"},
			command: CommandLive,
			check: func(t *testing.T, o *Options) {
				d := o.Config.Display
				if d.WidthSeconds != 20 || !d.NightMode || d.ColourMap != "inverse" || !o.PickDevice {
					t.Errorf("display = %+v, pick = %v", d, o.PickDevice)
				}
			},
		},
		{
			name:    "device implies microphone",
			args:    []string{"-d", "2", "-s", "44100"},
			command: CommandLive,
			check: func(t *testing.T, o *Options) {
				a := o.Config.Audio
				if a.Source != config.SourceMicrophone || a.InputDevice != 2 || a.SampleRate != 44100 {
					t.Errorf("audio = %+v", a)
				}
			},
		},
		{
			name:    "serve transports",
			args:    []string{"serve", "--websocket", "--ws-addr", ":9000", "--udp", "--udp-interval", "250ms"},
			command: CommandServe,
			check: func(t *testing.T, o *Options) {
				tr := o.Config.Transport
				if !tr.WebSocketEnabled || tr.WebSocketAddress != ":9000" || !tr.UDPEnabled || tr.UDPSendInterval != 250*time.Millisecond {
					t.Errorf("transport = %+v", tr)
				}
			},
		},
		{
			name:    "export",
			args:    []string{"export", "take.wav", "-o", "out.pdf", "-t", "Take 1"},
			command: CommandExport,
			check: func(t *testing.T, o *Options) {
				if o.Input != "take.wav" || o.Output != "out.pdf" || o.Config.Export.Title != "Take 1" || !o.FitWidth {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name:    "export explicit width",
			args:    []string{"export", "take.wav", "--width", "10"},
			command: CommandExport,
			check: func(t *testing.T, o *Options) {
				if o.FitWidth || o.Config.Display.WidthSeconds != 10 {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name:    "devices",
			args:    []string{"devices"},
			command: CommandDevices,
		},
		{
			name:    "version",
			args:    []string{"--version"},
			command: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("ParseArgs(%v): %v", tt.args, err)
			}
			if o.Command != tt.command {
				t.Errorf("Command = %q, want %q", o.Command, tt.command)
			}
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name    string
		args    []string
		invalid bool
	}{
		{"bad width", []string{"-W", "7"}, true},
		{"bad format", []string{"-F", "gif"}, true},
		{"bad source", []string{"-S", "radio"}, true},
		{"export without input", []string{"export"}, false},
		{"unknown flag", []string{"--nope"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.invalid && !errors.Is(err, config.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseArgsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := "display:\n  width_seconds: 60\n  night_mode: true\nexport:\n  format: pdf\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	o, err := ParseArgs([]string{"-f", path, "--night=false"})
	if err != nil {
		t.Fatal(err)
	}
	if o.Config.Display.WidthSeconds != 60 || o.Config.Export.Format != "pdf" {
		t.Errorf("file values not loaded: %+v", o.Config)
	}
	if o.Config.Display.NightMode {
		t.Error("flag did not override the file")
	}
}
