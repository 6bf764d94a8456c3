// SPDX-License-Identifier: MIT

// Package cmd parses the command line and runs the selected command.
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"stripchart/internal/config"
	"stripchart/pkg/build"
)

// Command names.
const (
	CommandLive    = "live"
	CommandServe   = "serve"
	CommandExport  = "export"
	CommandDevices = "devices"
)

// Options is the parsed command line. Command is empty when cobra handled
// the invocation itself (help, version).
type Options struct {
	Command    string
	ConfigPath string
	Config     *config.Config

	PickDevice bool   // live: choose the capture device interactively
	Input      string // export: WAV file to render
	Output     string // export: destination file, derived from Input when empty
	FitWidth   bool   // export: size the window to the clip
}

// flagValues receives raw flag values; only flags the user set are copied
// over the loaded configuration.
type flagValues struct {
	logLevel        string
	source          string
	deviceID        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool
	wavFile         string
	window          string
	widthSeconds    int
	nightMode       bool
	lowAmplitude    bool
	colourMap       string
	frameRate       int
	outputDir       string
	format          string
	title           string
	wsAddress       string
	udpTarget       string
	udpInterval     time.Duration
	websocket       bool
	udp             bool
}

func (f *flagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("source") {
		cfg.Audio.Source = f.source
	}
	if changed("device") {
		cfg.Audio.InputDevice = f.deviceID
		if !changed("source") {
			cfg.Audio.Source = config.SourceMicrophone
		}
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = f.sampleRate
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = f.framesPerBuffer
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}
	if changed("wav") {
		cfg.Audio.WAVFile = f.wavFile
		if !changed("source") {
			cfg.Audio.Source = config.SourceWAV
		}
	}
	if changed("window") {
		cfg.Audio.Window = f.window
	}
	if changed("width") {
		cfg.Display.WidthSeconds = f.widthSeconds
	}
	if changed("night") {
		cfg.Display.NightMode = f.nightMode
	}
	if changed("low-amplitude") {
		cfg.Display.LowAmplitudeScale = f.lowAmplitude
	}
	if changed("colour-map") {
		cfg.Display.ColourMap = f.colourMap
	}
	if changed("frame-rate") {
		cfg.Display.FrameRate = f.frameRate
	}
	if changed("output-dir") {
		cfg.Export.OutputDir = f.outputDir
	}
	if changed("format") {
		cfg.Export.Format = f.format
	}
	if changed("title") {
		cfg.Export.Title = f.title
	}
	if changed("websocket") {
		cfg.Transport.WebSocketEnabled = f.websocket
	}
	if changed("ws-addr") {
		cfg.Transport.WebSocketAddress = f.wsAddress
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = f.udp
	}
	if changed("udp-target") {
		cfg.Transport.UDPTargetAddress = f.udpTarget
	}
	if changed("udp-interval") {
		cfg.Transport.UDPSendInterval = f.udpInterval
	}
}

// ParseArgs builds the command tree, parses args and loads the
// configuration the selected command runs with.
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}
	flags := &flagValues{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         build.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(options.ConfigPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			options.Config = cfg
			options.FitWidth = !cmd.Flags().Changed("width")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandLive
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.Flags().BoolVarP(&options.PickDevice, "pick-device", "p", false,
		"Choose the capture device and sample rate before starting")

	// Headless live loop
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live renderer headless and publish frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandServe
			return nil
		},
	}
	serveCmd.Flags().BoolVar(&flags.websocket, "websocket", false,
		"Publish PNG frames to WebSocket viewers")
	serveCmd.Flags().StringVar(&flags.wsAddress, "ws-addr", config.DefaultWebSocketAddr,
		"WebSocket listen address")
	serveCmd.Flags().BoolVar(&flags.udp, "udp", false,
		"Send renderer statistics over UDP")
	serveCmd.Flags().StringVar(&flags.udpTarget, "udp-target", config.DefaultUDPTarget,
		"UDP target address (host:port)")
	serveCmd.Flags().DurationVar(&flags.udpInterval, "udp-interval", config.DefaultUDPInterval,
		"Interval between UDP statistics packets")
	rootCmd.AddCommand(serveCmd)

	// Offline plate
	exportCmd := &cobra.Command{
		Use:   "export <input.wav>",
		Short: "Render a WAV file to a png, jpg or pdf plate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandExport
			options.Input = args[0]
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&options.Output, "output", "o", "",
		"Output file. Default is <output-dir>/<input name>.<format>")
	rootCmd.AddCommand(exportCmd)

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandDevices
			return nil
		},
	}
	rootCmd.AddCommand(devicesCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&options.ConfigPath, "config", "f", "",
		"Configuration file. Default is ./config.yaml when present")
	pf.StringVar(&flags.logLevel, "log-level", "info",
		"Log level: debug, info, warn or error")

	// Capture
	pf.StringVarP(&flags.source, "source", "S", config.DefaultSource,
		"Sample source: simulator, microphone or wav")
	pf.IntVarP(&flags.deviceID, "device", "d", config.DefaultDeviceID,
		"Input device ID, implies --source microphone. Use 'devices' to list them.")
	pf.Float64VarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&flags.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	pf.BoolVarP(&flags.lowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")
	pf.StringVarP(&flags.wavFile, "wav", "w", "",
		"WAV file to loop, implies --source wav")
	pf.StringVar(&flags.window, "window", config.DefaultWindow,
		"STFT window function")

	// Display
	pf.IntVarP(&flags.widthSeconds, "width", "W", config.DefaultWidthSeconds,
		"Display width in seconds: 1, 5, 10, 20 or 60")
	pf.BoolVarP(&flags.nightMode, "night", "n", false,
		"Draw the waveform in night colours")
	pf.BoolVar(&flags.lowAmplitude, "low-amplitude", false,
		"Scale the waveform for quiet signals")
	pf.StringVarP(&flags.colourMap, "colour-map", "c", config.DefaultColourMap,
		"Spectrogram colour map: default, monochrome or inverse")
	pf.IntVar(&flags.frameRate, "frame-rate", config.DefaultFrameRate,
		"Live update rate in frames per second")

	// Export
	pf.StringVarP(&flags.outputDir, "output-dir", "O", config.DefaultExportDir,
		"Directory for exported plates and WAV captures")
	pf.StringVarP(&flags.format, "format", "F", config.DefaultExportFormat,
		"Plate format: png, jpg or pdf")
	pf.StringVarP(&flags.title, "title", "t", "",
		"Plate title")

	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}
