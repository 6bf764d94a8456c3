// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"
)

func TestPeakLevel(t *testing.T) {
	tests := []struct {
		name string
		in   []int16
		want int32
	}{
		{"empty", nil, 0},
		{"silence", []int16{0, 0, 0}, 0},
		{"positive", []int16{1, 700, 3}, 700},
		{"negative", []int16{-1, -700, 3}, 700},
		{"full scale negative", []int16{math.MinInt16, 5}, 32768},
		{"full scale positive", []int16{math.MaxInt16}, 32767},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeakLevel(tt.in); got != tt.want {
				t.Errorf("PeakLevel = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevelDBFS(t *testing.T) {
	if !math.IsInf(LevelDBFS(0), -1) {
		t.Error("silence should be -Inf")
	}
	if got := LevelDBFS(32768); got != 0 {
		t.Errorf("full scale = %v dBFS, want 0", got)
	}
	if got := LevelDBFS(16384); math.Abs(got+6.0206) > 1e-3 {
		t.Errorf("half scale = %v dBFS, want -6.02", got)
	}
}

// TestPeakLevelHotPath verifies the meter has no allocations.
func TestPeakLevelHotPath(t *testing.T) {
	buffer := make([]int16, 1024)
	for i := range buffer {
		buffer[i] = int16((i%100)*300 - 15000)
	}

	allocs := testing.AllocsPerRun(100, func() {
		_ = PeakLevel(buffer)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in peak meter, got %.1f", allocs)
	}
}

func BenchmarkPeakLevel(b *testing.B) {
	buffer := make([]int16, 1024)
	for i := range buffer {
		buffer[i] = int16((i%100)*300 - 15000)
	}
	for b.Loop() {
		_ = PeakLevel(buffer)
	}
}
