// SPDX-License-Identifier: MIT
package transport

import (
	applog "stripchart/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each message at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data.
func (lt *LoggingTransport) Send(data any) error {
	switch m := data.(type) {
	case *FrameMessage:
		applog.Debugf("LoggingTransport: Frame %d (%d columns, redrawn %v, %d+%d bytes)",
			m.Seq, m.Columns, m.Redrawn, len(m.Waveform), len(m.Spectrogram))
	default:
		applog.Debugf("LoggingTransport: Received %T", data)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LoggingTransport: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
