// SPDX-License-Identifier: MIT

// Package display paces live rendering. Frames are aligned to fixed
// boundaries within each wall-clock second, so a slow frame delays only
// itself and the cadence never drifts.
package display

import (
	"context"
	"sync/atomic"
	"time"

	applog "stripchart/internal/log"
	"stripchart/internal/plotter"
)

// DefaultFrameRate is the live refresh rate.
const DefaultFrameRate = 60

// Interval returns the frame interval for a rate in frames per second.
// Rates of zero or less use DefaultFrameRate.
func Interval(frameRate int) time.Duration {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return time.Second / time.Duration(frameRate)
}

// NextFrameDelay returns the time from now until the next multiple of
// interval, counted from the start of the current second. A time exactly on
// a boundary returns zero. The grid restarts every second.
func NextFrameDelay(now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	offset := time.Duration(now.Nanosecond())
	next := min((offset+interval-1)/interval*interval, time.Second)
	return next - offset
}

// Renderer advances the live surfaces by one frame.
type Renderer interface {
	Step() plotter.UpdateResult
}

// Blitter presents a frame. It is only called for frames that changed.
type Blitter interface {
	Blit(r plotter.UpdateResult) error
}

// Loop drives a Renderer at a fixed frame rate and hands changed frames to
// its blitters.
type Loop struct {
	renderer Renderer
	blitters []Blitter
	interval time.Duration
	now      func() time.Time

	frames atomic.Uint64
	blits  atomic.Uint64
}

// NewLoop creates a loop at frameRate frames per second.
func NewLoop(r Renderer, frameRate int, blitters ...Blitter) *Loop {
	return &Loop{
		renderer: r,
		blitters: blitters,
		interval: Interval(frameRate),
		now:      time.Now,
	}
}

// Frame runs one update and blits it if anything changed. Blit errors are
// logged and do not stop the other blitters.
func (l *Loop) Frame() plotter.UpdateResult {
	res := l.renderer.Step()
	l.frames.Add(1)
	if !res.Touched {
		return res
	}
	for _, b := range l.blitters {
		if err := b.Blit(res); err != nil {
			applog.Warnf("Loop: Blit failed: %v", err)
		}
	}
	l.blits.Add(1)
	return res
}

// Run calls Frame on every frame boundary until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	applog.Infof("Loop: Running at %s per frame", l.interval)
	timer := time.NewTimer(NextFrameDelay(l.now(), l.interval))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			applog.Infof("Loop: Stopped after %d frames (%d blitted)", l.frames.Load(), l.blits.Load())
			return nil
		case <-timer.C:
			l.Frame()
			timer.Reset(NextFrameDelay(l.now(), l.interval))
		}
	}
}

// Frames returns the number of frames run and the number blitted.
func (l *Loop) Frames() (frames, blits uint64) {
	return l.frames.Load(), l.blits.Load()
}
