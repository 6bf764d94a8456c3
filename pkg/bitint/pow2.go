// SPDX-License-Identifier: MIT

/*
Package bitint provides the integer helpers used to size and index the
capture rings. Ring capacities are powers of two so the producer can wrap
its write index with a mask; readers accept any capacity and wrap with Mod.

All functions are allocation free and safe to call from the audio callback.

Usage:

	capacity := bitint.NextPowerOfTwo(seconds * rate) // ring size
	index := int(count & bitint.Mask(capacity))      // producer wrap
	start := bitint.Mod(index-n, capacity)           // reader wrap
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Non-positive sizes
// return 1. Subtracting 1 first keeps exact powers of 2 unchanged.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Mask returns capacity-1 as a wrap mask for a running int64 count.
// capacity must be a power of 2.
func Mask(capacity int) int64 {
	return int64(capacity - 1)
}

// Mod returns i modulo n in [0, n), also for negative i. It returns 0 when
// n is not positive.
func Mod(i, n int) int {
	if n <= 0 {
		return 0
	}
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}
