// SPDX-License-Identifier: MIT
package audio

import "math"

// PeakLevel returns the largest absolute sample value in buf.
// Performance Critical (Hot Path):
// - Runs once per capture callback
// - Branchless abs and max
func PeakLevel(buf []int16) int32 {
	var peak int32
	for _, s := range buf {
		sample := int32(s)
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - peak
		peak += (diff & (diff >> 31)) ^ diff
	}
	return peak
}

// LevelDBFS converts a peak level to decibels relative to full scale.
// Silence returns -Inf.
func LevelDBFS(peak int32) float64 {
	if peak <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(peak)/32768)
}
