// SPDX-License-Identifier: MIT

// Package transport publishes live strip chart frames to remote viewers.
package transport

import (
	"stripchart/internal/plotter"
)

// Transport defines a generic interface for sending rendered frames or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// SurfaceSource exposes the live surfaces and the parameters of the last
// update. Session satisfies it.
type SurfaceSource interface {
	View(fn func(waveform, spectrogram *plotter.Surface))
	Params() plotter.UpdateParams
}
