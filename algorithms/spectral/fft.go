package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality for the analysis chain
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal using mjibson/go-dsp.
// Handles all sizes, including non-power-of-2.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// MagnitudeSpectrum computes the positive-frequency magnitude spectrum
// (DC through Nyquist) of a real signal.
func (f *FFT) MagnitudeSpectrum(x []float64) []float64 {
	spectrum := f.Compute(x)
	if len(spectrum) == 0 {
		return []float64{}
	}

	bins := len(spectrum)/2 + 1
	bins = min(bins, len(spectrum))

	magnitude := make([]float64, bins)
	for i := 0; i < bins; i++ {
		magnitude[i] = cmplx.Abs(spectrum[i])
	}
	return magnitude
}
