// SPDX-License-Identifier: MIT
package analysis

// FrameTransform converts one window of samples into a spectral frame.
// Implementations are called from the capture hot path and must not allocate.
type FrameTransform interface {
	Transform(dst []float32, samples []int16)
}
