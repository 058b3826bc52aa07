package windowing

import "math"

// Hann generates an N-point Hann window.
//
// The Hann window is the default analysis window for the feature pipeline:
// good sidelobe suppression with moderate main-lobe widening, which suits
// vocal pitch and timbre analysis.
func Hann(size int) []float64 {
	window := make([]float64, size)
	if size == 1 {
		window[0] = 1.0
		return window
	}
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(size-1)))
	}
	return window
}

// Apply multiplies signal by window element-wise and returns a new slice.
// Mismatched lengths return nil.
func Apply(signal, window []float64) []float64 {
	if len(signal) != len(window) {
		return nil
	}
	out := make([]float64, len(signal))
	for i := range signal {
		out[i] = signal[i] * window[i]
	}
	return out
}
