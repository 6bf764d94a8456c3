// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"stripchart/pkg/bitint"
)

var ErrNoSamples = errors.New("no samples to save")

// SaveWindow writes up to n samples ending at cursor as 16-bit mono WAV.
// Fewer are written when less history exists.
func SaveWindow(w io.WriteSeeker, b *Buffers, cursor Cursor, n, sampleRate int) error {
	n = int(min(int64(n), cursor.Count, int64(b.Capacity())))
	if n <= 0 {
		return ErrNoSamples
	}

	ring := b.Samples()
	capacity := len(ring)
	start := bitint.Mod(cursor.Index-n, capacity)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		buf.Data[i] = int(ring[(start+i)%capacity])
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
