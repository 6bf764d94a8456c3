// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"math"
	"time"

	applog "stripchart/internal/log"
)

// CallbacksPerSecond is the rate at which a Player feeds Buffers.
const CallbacksPerSecond = 100

var ErrEmptyClip = errors.New("clip has no samples")

// Clip is mono 16-bit audio held in memory.
type Clip struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// Synthesize builds a test clip: a tone at toneHz whose level swells and
// fades, plus a short upward chirp every half second.
func Synthesize(sampleRate int, toneHz float64, seconds int) *Clip {
	n := sampleRate * seconds
	samples := make([]int16, n)
	rate := float64(sampleRate)
	chirpLen := sampleRate / 20
	chirpTop := rate / 4
	var chirpPhase float64
	for i := range samples {
		t := float64(i) / rate
		envelope := 0.5 - 0.4*math.Cos(2*math.Pi*t/float64(max(seconds, 1)))
		v := envelope * math.Sin(2*math.Pi*toneHz*t)

		if k := i % (sampleRate / 2); k < chirpLen {
			if k == 0 {
				chirpPhase = 0
			}
			f := toneHz + (chirpTop-toneHz)*float64(k)/float64(chirpLen)
			chirpPhase += 2 * math.Pi * f / rate
			v += 0.3 * math.Sin(chirpPhase)
		}
		samples[i] = int16(math.Max(-1, math.Min(1, v*0.75)) * math.MaxInt16)
	}
	return &Clip{Samples: samples, SampleRate: sampleRate}
}

// Player loops a clip into Buffers in real time, one callback's worth of
// samples at a time.
type Player struct {
	buffers *Buffers
	clip    *Clip
	block   []int16
	offset  int
	ticks   int64
	written int64
}

// NewPlayer returns a player positioned at the start of clip.
func NewPlayer(b *Buffers, clip *Clip) (*Player, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, ErrEmptyClip
	}
	return &Player{
		buffers: b,
		clip:    clip,
		block:   make([]int16, clip.SampleRate/CallbacksPerSecond+1),
	}, nil
}

// SampleRate returns the clip's sample rate.
func (p *Player) SampleRate() float64 { return float64(p.clip.SampleRate) }

// Tick delivers the next callback. Block lengths follow the clip's sample
// rate exactly over each second, so rates that are not a multiple of
// CallbacksPerSecond do not drift.
func (p *Player) Tick() {
	p.ticks++
	due := int(p.ticks*int64(p.clip.SampleRate)/CallbacksPerSecond - p.written)
	block := p.block[:due]
	for i := range block {
		block[i] = p.clip.Samples[p.offset]
		p.offset++
		if p.offset == len(p.clip.Samples) {
			p.offset = 0
		}
	}
	p.written += int64(due)
	p.buffers.Write(block)
}

// Run ticks until ctx is cancelled.
func (p *Player) Run(ctx context.Context) error {
	applog.Infof("Player: Looping %s of audio at %d Hz", p.clip.Duration(), p.clip.SampleRate)
	ticker := time.NewTicker(time.Second / CallbacksPerSecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			applog.Debugf("Player: Stopped after %d callbacks", p.ticks)
			return nil
		case <-ticker.C:
			p.Tick()
		}
	}
}
