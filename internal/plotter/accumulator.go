// SPDX-License-Identifier: MIT
package plotter

import "math"

// Accumulator tracks the fractional position inside the pending column and
// decides on which samples columns end.
//
// A run over n samples emits exactly floor(position + n*step) columns, where
// step = pixelWidth/displayWidthSamples. Per-sample addition can land either
// side of that figure by rounding; the run is capped at the closed form,
// Finish makes up any shortfall, and the position is then recomputed from
// the closed form so error never carries into the next run.
type Accumulator struct {
	position float64

	start    float64
	step     float64
	samples  int
	expected int
	emitted  int
}

// Position returns the fractional column position, always in [0, 1) between runs.
func (a *Accumulator) Position() float64 {
	return a.position
}

// Reset returns the position to the start of a column.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Begin starts a run of n samples and returns the number of columns it will emit.
func (a *Accumulator) Begin(n, pixelWidth, displayWidthSamples int) int {
	a.start = a.position
	a.samples = max(n, 0)
	a.step = 0
	if displayWidthSamples > 0 {
		a.step = float64(pixelWidth) / float64(displayWidthSamples)
	}
	a.expected = Expected(a.position, a.samples, pixelWidth, displayWidthSamples)
	a.emitted = 0
	return a.expected
}

// Step consumes one sample and reports how many columns end on it.
func (a *Accumulator) Step() int {
	a.position += a.step
	n := 0
	for a.position >= 1 && a.emitted < a.expected {
		a.position--
		a.emitted++
		n++
	}
	return n
}

// Emitted returns the number of columns emitted so far in this run.
func (a *Accumulator) Emitted() int {
	return a.emitted
}

// Finish closes the run and returns the number of columns still owed.
func (a *Accumulator) Finish() int {
	owed := a.expected - a.emitted
	a.emitted = a.expected
	a.position = a.start + float64(a.samples)*a.step - float64(a.expected)
	if a.position < 0 || a.position >= 1 {
		a.position = 0
	}
	return owed
}

// Expected is the closed-form column count for n samples from position.
func Expected(position float64, n, pixelWidth, displayWidthSamples int) int {
	if n <= 0 || pixelWidth <= 0 || displayWidthSamples <= 0 {
		return 0
	}
	step := float64(pixelWidth) / float64(displayWidthSamples)
	return int(math.Floor(position + float64(n)*step))
}
