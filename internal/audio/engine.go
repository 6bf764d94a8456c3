// SPDX-License-Identifier: MIT
/*
Package audio implements the capture side of the strip chart:
- Ring buffers of samples and spectral frames read lock-free by renderers
- Microphone capture using PortAudio
- Looped playback of WAV files or a synthesized test signal
- Window capture to WAV

Thread Safety:
- Uses atomic operations for the published sample count
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"

	"stripchart/internal/config"
	applog "stripchart/internal/log"
)

// Engine captures a mono microphone stream into Buffers.
type Engine struct {
	config  *config.AudioConfig
	buffers *Buffers

	// Audio input handling.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream
}

// NewEngine resolves the configured input device. PortAudio must be
// initialised.
func NewEngine(cfg *config.AudioConfig, buffers *Buffers) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		buffers:     buffers,
		inputDevice: inputDevice,
	}

	if cfg.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return engine, nil
}

// SampleRate returns the configured capture rate.
func (e *Engine) SampleRate() float64 { return e.config.SampleRate }

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	applog.Infof("Engine: Capturing from %q at %.0f Hz", e.inputDevice.Name, e.config.SampleRate)
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// Run captures until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.StartInputStream(); err != nil {
		return err
	}
	<-ctx.Done()
	return e.StopInputStream()
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []int16) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.buffers.Write(in)
}
