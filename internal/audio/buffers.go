// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"sync"
	"sync/atomic"

	"stripchart/internal/analysis"
	"stripchart/pkg/bitint"
)

// ErrCapacity is returned for a ring capacity that is not a power of two
// holding at least one analysis window.
var ErrCapacity = errors.New("buffer capacity must be a power of two of at least one analysis window")

// Cursor is a reader's snapshot of the producer position. Index is Count
// modulo the ring capacity.
type Cursor struct {
	Index int
	Count int64
}

// Buffers holds the capture history: a ring of int16 samples and a ring of
// log-magnitude frames, one frame of analysis.Bins values per
// analysis.WindowSize samples, stored at half the sample index.
//
// Thread Safety:
//   - One producer at a time (Write is serialised)
//   - Readers take a Cursor and read the rings without locking; samples
//     and frames below Cursor.Count are complete
type Buffers struct {
	samples []int16
	frames  []float32
	mask    int64

	mu        sync.Mutex
	transform analysis.FrameTransform
	window    []int16
	staged    int

	count  atomic.Int64
	paused atomic.Bool
	peak   atomic.Int32
}

// NewBuffers allocates rings of the given capacity in samples.
func NewBuffers(capacity int, transform analysis.FrameTransform) (*Buffers, error) {
	if !bitint.IsPowerOfTwo(capacity) || capacity < analysis.WindowSize {
		return nil, ErrCapacity
	}
	return &Buffers{
		samples:   make([]int16, capacity),
		frames:    make([]float32, capacity/analysis.Ratio),
		mask:      bitint.Mask(capacity),
		transform: transform,
		window:    make([]int16, analysis.WindowSize),
	}, nil
}

// CapacityFor returns the ring capacity needed to hold seconds of audio.
func CapacityFor(seconds int, sampleRate float64) int {
	return max(bitint.NextPowerOfTwo(int(float64(seconds)*sampleRate)), analysis.WindowSize)
}

func (b *Buffers) Capacity() int     { return len(b.samples) }
func (b *Buffers) Samples() []int16  { return b.samples }
func (b *Buffers) Frames() []float32 { return b.frames }
func (b *Buffers) Paused() bool      { return b.paused.Load() }
func (b *Buffers) SetPaused(p bool)  { b.paused.Store(p) }
func (b *Buffers) Peak() int32       { return b.peak.Load() }

// Cursor returns the current producer position.
func (b *Buffers) Cursor() Cursor {
	count := b.count.Load()
	return Cursor{Index: int(count & b.mask), Count: count}
}

// Write appends samples. They become visible to readers a whole window at
// a time, after the window's frame has been computed. While paused the
// samples are dropped and 0 is returned.
func (b *Buffers) Write(in []int16) int {
	if b.paused.Load() {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.peak.Store(PeakLevel(in))

	n := len(in)
	for len(in) > 0 {
		c := copy(b.window[b.staged:], in)
		b.staged += c
		in = in[c:]
		if b.staged == len(b.window) {
			b.commit()
		}
	}
	return n
}

func (b *Buffers) commit() {
	count := b.count.Load()
	start := int(count & b.mask)
	copy(b.samples[start:], b.window)

	frame := start / analysis.Ratio
	b.transform.Transform(b.frames[frame:frame+analysis.Bins], b.window)

	b.staged = 0
	b.count.Store(count + int64(len(b.window)))
}

// Reset discards the history count and any partial window.
func (b *Buffers) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged = 0
	b.peak.Store(0)
	b.count.Store(0)
}
