// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"time"
)

// Core configuration constants that define the boundaries and defaults
// for the strip chart.
const (
	// Audio sources.
	SourceSimulator  = "simulator"
	SourceMicrophone = "microphone"
	SourceWAV        = "wav"

	// Default values.
	DefaultSource          = SourceSimulator
	DefaultDeviceID        = MinDeviceID
	DefaultSampleRate      = 48000
	DefaultFramesPerBuffer = 480 // 100 callbacks per second at 48kHz
	DefaultBufferSeconds   = 64
	DefaultToneHz          = 440.0
	DefaultWidthSeconds    = 5
	DefaultColourMap       = "default"
	DefaultFrameRate       = 60
	DefaultExportDir       = "./exports"
	DefaultExportFormat    = "png"
	DefaultWebSocketAddr   = ":8080"
	DefaultUDPTarget       = "127.0.0.1:9090"
	DefaultUDPInterval     = 100 * time.Millisecond
	DefaultWindow          = "sine"

	// Hardware and processing limits.
	MinDeviceID     = -1 // -1 represents system default device
	MinSampleRate   = 8000
	MaxSampleRate   = 384000
	MaxBufferFrames = 8192
	MaxFrameRate    = 240
)

// DisplayWidths are the selectable display window lengths in seconds.
var DisplayWidths = []int{1, 5, 10, 20, 60}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")
