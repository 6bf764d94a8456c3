// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("not a valid WAV file")

// LoadWAV decodes a PCM WAV stream into a mono clip. Only the first
// channel is kept and samples are scaled to 16 bits.
func LoadWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	channels := max(buf.Format.NumChannels, 1)
	depth := int(d.BitDepth)
	samples := make([]int16, len(buf.Data)/channels)
	for i := range samples {
		samples[i] = toInt16(buf.Data[i*channels], depth)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyClip
	}
	return &Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// LoadWAVFile opens and decodes path.
func LoadWAVFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	clip, err := LoadWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

func toInt16(v, depth int) int16 {
	switch {
	case depth == 8:
		// 8-bit WAV is unsigned.
		return int16((v - 128) << 8)
	case depth > 16:
		return int16(v >> (depth - 16))
	default:
		return int16(v)
	}
}
