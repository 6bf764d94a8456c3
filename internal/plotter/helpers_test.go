// SPDX-License-Identifier: MIT
package plotter

import (
	"math"
	"testing"

	"stripchart/internal/colourmap"
)

// producer writes into Rings the way the capture side does: samples first,
// then one frame per completed window.
type producer struct {
	rings *Rings
	count int64
}

func newProducer(capacity int) *producer {
	return &producer{rings: NewRings(capacity)}
}

func (p *producer) index() int {
	return int(p.count % int64(len(p.rings.SampleRing)))
}

// write appends n samples from gen. Frames get a value derived from the
// window start so every column differs.
func (p *producer) write(n int, gen func(k int64) int16) {
	capacity := len(p.rings.SampleRing)
	for range n {
		idx := int(p.count % int64(capacity))
		p.rings.SampleRing[idx] = gen(p.count)
		if idx%STFTInputSamples == 0 {
			frame := p.rings.FrameRing[idx/stftRatio : idx/stftRatio+STFTOutputSamples]
			level := float32(p.count/STFTInputSamples%14) + 1
			for b := range frame {
				frame[b] = level + float32(b%7)*0.25
			}
		}
		p.count++
	}
}

func tone(k int64) int16 {
	return int16(12000 * math.Sin(float64(k)*0.01) * math.Sin(float64(k)*0.0003))
}

func cloneSurface(s *Surface) *Surface {
	c := &Surface{Width: s.Width, Height: s.Height, Pix: make([]uint32, len(s.Pix))}
	copy(c.Pix, s.Pix)
	return c
}

func columnBlank(s *Surface, x int) bool {
	for y := range s.Height {
		if s.At(x, y) != colourmap.Blank {
			return false
		}
	}
	return true
}

func assertColumnsShifted(t *testing.T, name string, before, after *Surface, k int) {
	t.Helper()
	for x := 0; x < after.Width-k; x++ {
		for y := range after.Height {
			if after.At(x, y) != before.At(x+k, y) {
				t.Fatalf("%s: pixel (%d,%d) = %#x, want old (%d,%d) = %#x",
					name, x, y, after.At(x, y), x+k, y, before.At(x+k, y))
			}
		}
	}
}
