// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"strings"

	applog "stripchart/internal/log"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Frame geometry of the short-time transform. Every WindowSize input samples
// produce one frame of Bins log-magnitude values, so a frame for the window
// starting at sample i lives at offset i/Ratio of the frame store.
const (
	WindowSize = 512
	Bins       = WindowSize / 2
	Ratio      = WindowSize / Bins
)

// WindowFunc defines the type for selecting an analysis window.
type WindowFunc int

// Enum for available window functions.
const (
	Sine WindowFunc = iota
	BartlettHann
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

// STFT turns fixed windows of 16-bit samples into log2 magnitude frames.
// It is not safe for concurrent use; each producer owns one.
type STFT struct {
	fft    *fourier.FFT
	window []float64    // Pre-calculated window coefficients.
	input  []float64    // Windowed input signal.
	coeffs []complex128 // FFT complex results, WindowSize/2 + 1 values.
	scale  float64      // 4/N^2, so a full-scale bin reads close to its amplitude.
}

// Compile-time check.
var _ FrameTransform = (*STFT)(nil)

// NewSTFT creates a transform using the given analysis window.
func NewSTFT(windowType WindowFunc) *STFT {
	coeffs := make([]float64, WindowSize)
	applyWindow(coeffs, windowType)

	applog.Debugf("Analysis: Initializing STFT (Window: %d samples, Bins: %d, Type: %v)", WindowSize, Bins, windowType)

	return &STFT{
		fft:    fourier.NewFFT(WindowSize),
		window: coeffs,
		input:  make([]float64, WindowSize),
		coeffs: make([]complex128, WindowSize/2+1),
		scale:  4.0 / float64(WindowSize) / float64(WindowSize),
	}
}

// Transform writes log2(4/N^2 * |X_k|^2) / 2 for k < Bins into dst.
// Short input is zero padded; silent bins come out as -Inf.
func (s *STFT) Transform(dst []float32, samples []int16) {
	n := len(samples)
	for i := range WindowSize {
		if i < n {
			s.input[i] = float64(samples[i]) * s.window[i]
		} else {
			s.input[i] = 0
		}
	}

	s.fft.Coefficients(s.coeffs, s.input)

	limit := min(len(dst), Bins)
	for k := range limit {
		c := s.coeffs[k]
		power := s.scale * (real(c)*real(c) + imag(c)*imag(c))
		dst[k] = float32(math.Log2(power) / 2)
	}
}

// BinFrequency returns the centre frequency (Hz) of a bin.
func BinFrequency(bin int, sampleRate float64) float64 {
	if bin < 0 || bin >= Bins {
		return 0
	}
	return float64(bin) * sampleRate / WindowSize
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Sine) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "sine", "":
		return Sine, nil
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Sine, fmt.Errorf("unknown window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	// Window funcs scale their input in place.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case Sine:
		window.Sine(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		applog.Warnf("Analysis: Unknown window function type %d, defaulting to Sine", windowType)
		window.Sine(coeffs)
	}
}
