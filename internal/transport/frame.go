// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"stripchart/internal/plotter"
)

// FrameMessage is one published frame. The surfaces are PNG encoded and
// appear base64 encoded in JSON.
type FrameMessage struct {
	Seq         uint64  `json:"seq"`
	Timestamp   int64   `json:"ts"` // Unix nanoseconds
	Columns     int     `json:"columns"`
	Redrawn     bool    `json:"redrawn"`
	Count       int64   `json:"count"`
	SampleRate  int     `json:"sampleRate"`
	WidthSecs   float64 `json:"widthSeconds"`
	NightMode   bool    `json:"nightMode"`
	Waveform    []byte  `json:"waveform"`
	Spectrogram []byte  `json:"spectrogram"`
}

// FrameBlitter encodes the live surfaces after each changed frame and
// sends them over a Transport.
type FrameBlitter struct {
	src       SurfaceSource
	transport Transport
	encoder   png.Encoder
	buf       bytes.Buffer
	seq       uint64
	now       func() time.Time
}

// NewFrameBlitter returns a blitter reading from src.
func NewFrameBlitter(src SurfaceSource, t Transport) *FrameBlitter {
	return &FrameBlitter{
		src:       src,
		transport: t,
		encoder:   png.Encoder{CompressionLevel: png.BestSpeed},
		now:       time.Now,
	}
}

// Blit implements display.Blitter.
func (b *FrameBlitter) Blit(r plotter.UpdateResult) error {
	msg, err := b.Frame(r)
	if err != nil {
		return err
	}
	return b.transport.Send(msg)
}

// Frame builds the message for a frame without sending it.
func (b *FrameBlitter) Frame(r plotter.UpdateResult) (*FrameMessage, error) {
	p := b.src.Params()
	b.seq++
	msg := &FrameMessage{
		Seq:        b.seq,
		Timestamp:  b.now().UnixNano(),
		Columns:    r.Columns,
		Redrawn:    r.Redrawn,
		Count:      p.Count,
		SampleRate: p.SampleRate,
		NightMode:  p.NightMode,
	}
	if p.SampleRate > 0 {
		msg.WidthSecs = float64(p.DisplayWidthSamples) / float64(p.SampleRate)
	}

	var err error
	b.src.View(func(waveform, spectrogram *plotter.Surface) {
		if msg.Waveform, err = b.encode(waveform); err != nil {
			return
		}
		msg.Spectrogram, err = b.encode(spectrogram)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame %d: %w", msg.Seq, err)
	}
	return msg, nil
}

func (b *FrameBlitter) encode(s *plotter.Surface) ([]byte, error) {
	b.buf.Reset()
	if err := b.encoder.Encode(&b.buf, s.NRGBA()); err != nil {
		return nil, err
	}
	return bytes.Clone(b.buf.Bytes()), nil
}
