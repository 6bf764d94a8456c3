// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"stripchart/internal/analysis"
	"stripchart/internal/colourmap"
	applog "stripchart/internal/log"
	"stripchart/internal/plate"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	LogFile   string          `yaml:"log_file"`  // Log destination while the terminal view owns the screen.
	Audio     AudioConfig     `yaml:"audio"`
	Display   DisplayConfig   `yaml:"display"`
	Export    ExportConfig    `yaml:"export"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds settings for the capture side.
type AudioConfig struct {
	Source          string  `yaml:"source"`            // simulator, microphone or wav.
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per capture callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	WAVFile         string  `yaml:"wav_file"`          // Input file for the wav source.
	BufferSeconds   int     `yaml:"buffer_seconds"`    // Ring history kept for redraws.
	ToneHz          float64 `yaml:"tone_hz"`           // Simulator base frequency.
	Window          string  `yaml:"window"`            // STFT window function.
}

// DisplayConfig holds the live view settings.
type DisplayConfig struct {
	WidthSeconds      int    `yaml:"width_seconds"`
	NightMode         bool   `yaml:"night_mode"`
	LowAmplitudeScale bool   `yaml:"low_amplitude_scale"`
	ColourMap         string `yaml:"colour_map"` // default, monochrome or inverse.
	FrameRate         int    `yaml:"frame_rate"`
}

// ExportConfig holds settings for exported plates.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"` // png, jpg or pdf.
	Title     string `yaml:"title"`
}

// TransportConfig holds settings for publishing frames and statistics.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		LogFile:  "stripchart.log",
		Audio: AudioConfig{
			Source:          DefaultSource,
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			BufferSeconds:   DefaultBufferSeconds,
			ToneHz:          DefaultToneHz,
			Window:          DefaultWindow,
		},
		Display: DisplayConfig{
			WidthSeconds: DefaultWidthSeconds,
			ColourMap:    DefaultColourMap,
			FrameRate:    DefaultFrameRate,
		},
		Export: ExportConfig{
			OutputDir: DefaultExportDir,
			Format:    DefaultExportFormat,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddr,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  DefaultUDPInterval,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and returns the first problem found,
// wrapped in ErrInvalid.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q is not recognised", ErrInvalid, c.LogLevel)
	}

	// Audio Validation
	switch c.Audio.Source {
	case SourceSimulator, SourceMicrophone:
	case SourceWAV:
		if c.Audio.WAVFile == "" {
			return fmt.Errorf("%w: audio.wav_file must be set for the wav source", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: audio.source %q is not one of simulator, microphone, wav", ErrInvalid, c.Audio.Source)
	}
	if c.Audio.InputDevice < MinDeviceID {
		return fmt.Errorf("%w: audio.input_device %d is below %d", ErrInvalid, c.Audio.InputDevice, MinDeviceID)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: audio.sample_rate %.0f outside [%d, %d]", ErrInvalid, c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("%w: audio.frames_per_buffer %d outside [1, %d]", ErrInvalid, c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.BufferSeconds < c.Display.WidthSeconds {
		return fmt.Errorf("%w: audio.buffer_seconds %d is shorter than display.width_seconds %d", ErrInvalid, c.Audio.BufferSeconds, c.Display.WidthSeconds)
	}
	if _, err := analysis.ParseWindowFunc(c.Audio.Window); err != nil {
		return fmt.Errorf("%w: audio.window: %v", ErrInvalid, err)
	}

	// Display Validation
	if !slices.Contains(DisplayWidths, c.Display.WidthSeconds) {
		return fmt.Errorf("%w: display.width_seconds %d is not one of %v", ErrInvalid, c.Display.WidthSeconds, DisplayWidths)
	}
	if _, err := colourmap.ParseMode(c.Display.ColourMap); err != nil {
		return fmt.Errorf("%w: display.colour_map: %v", ErrInvalid, err)
	}
	if c.Display.FrameRate <= 0 || c.Display.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: display.frame_rate %d outside [1, %d]", ErrInvalid, c.Display.FrameRate, MaxFrameRate)
	}

	// Export Validation
	if _, err := plate.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("%w: export.format: %v", ErrInvalid, err)
	}

	// Transport Validation
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		return fmt.Errorf("%w: transport.websocket_address must be set when the websocket is enabled", ErrInvalid)
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("%w: transport.udp_target_address must be set when UDP is enabled", ErrInvalid)
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("%w: transport.udp_send_interval must be positive when UDP is enabled", ErrInvalid)
		}
	}

	return nil
}

// applyEnvOverrides reads ENV_* variables over the loaded values. Values
// that fail to parse are ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.

	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		applog.Infof("configuration: Overriding log_level from env: %s", val)
	}

	// ENV_AUDIO_{...}
	// These are specific to the capture side.

	// ENV_AUDIO_SOURCE
	if val, ok := os.LookupEnv("ENV_AUDIO_SOURCE"); ok {
		cfg.Audio.Source = val
		applog.Infof("configuration: Overriding audio.source from env: %s", val)
	}
	// ENV_AUDIO_SAMPLE_RATE
	if val, ok := os.LookupEnv("ENV_AUDIO_SAMPLE_RATE"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Audio.SampleRate = fVal
			applog.Infof("configuration: Overriding audio.sample_rate from env: %.0f", fVal)
		}
	}
	// ENV_AUDIO_WAV_FILE
	if val, ok := os.LookupEnv("ENV_AUDIO_WAV_FILE"); ok {
		cfg.Audio.WAVFile = val
		applog.Infof("configuration: Overriding audio.wav_file from env: %s", val)
	}

	// ENV_DISPLAY_{...}

	// ENV_DISPLAY_WIDTH_SECONDS
	if val, ok := os.LookupEnv("ENV_DISPLAY_WIDTH_SECONDS"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Display.WidthSeconds = iVal
			applog.Infof("configuration: Overriding display.width_seconds from env: %d", iVal)
		}
	}
	// ENV_DISPLAY_NIGHT_MODE
	if val, ok := os.LookupEnv("ENV_DISPLAY_NIGHT_MODE"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Display.NightMode = bVal
			applog.Infof("configuration: Overriding display.night_mode from env: %v", bVal)
		}
	}

	// ENV_WS_{...} and ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
			applog.Infof("configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WebSocketAddress = val
		applog.Infof("configuration: Overriding transport.websocket_address from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			applog.Infof("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		applog.Infof("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
			applog.Infof("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
