package spectral

import (
	"fmt"
	"math"
)

// MFCC computes Mel-Frequency Cepstral Coefficients, the timbre
// representation used throughout the feature pipeline
type MFCC struct {
	numCoefficients int
	numMelFilters   int
	sampleRate      int
	lowFreq         float64
	highFreq        float64

	filterBank  [][]float64
	dctMatrix   [][]float64
	initialized bool
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int     `json:"num_coefficients"` // Number of MFCC coefficients (default: 13)
	NumMelFilters   int     `json:"num_mel_filters"`  // Number of mel filter bank filters (default: 26)
	LowFreq         float64 `json:"low_freq"`         // Low frequency bound (default: 0)
	HighFreq        float64 `json:"high_freq"`        // High frequency bound (default: sampleRate/2)
}

// NewMFCC creates a new MFCC computer with default parameters
func NewMFCC(sampleRate, numCoefficients int) *MFCC {
	return NewMFCCWithParams(sampleRate, MFCCParams{
		NumCoefficients: numCoefficients,
	})
}

// NewMFCCWithParams creates a new MFCC computer with custom parameters
func NewMFCCWithParams(sampleRate int, params MFCCParams) *MFCC {
	if params.NumCoefficients <= 0 {
		params.NumCoefficients = 13
	}
	if params.NumMelFilters <= 0 {
		params.NumMelFilters = 26
	}
	if params.HighFreq <= 0 {
		params.HighFreq = float64(sampleRate) / 2.0
	}

	return &MFCC{
		numCoefficients: params.NumCoefficients,
		numMelFilters:   params.NumMelFilters,
		sampleRate:      sampleRate,
		lowFreq:         params.LowFreq,
		highFreq:        params.HighFreq,
	}
}

// Initialize prepares the filter bank and DCT matrix for the given FFT size
func (m *MFCC) Initialize(fftSize int) error {
	if fftSize <= 0 {
		return fmt.Errorf("invalid FFT size: %d", fftSize)
	}

	m.filterBank = MelFilterBank(m.numMelFilters, fftSize, m.sampleRate, m.lowFreq, m.highFreq)
	if len(m.filterBank) == 0 {
		return fmt.Errorf("failed to create mel filter bank")
	}

	// DCT-II matrix mapping numMelFilters log energies to numCoefficients
	m.dctMatrix = make([][]float64, m.numCoefficients)
	for i := range m.dctMatrix {
		m.dctMatrix[i] = make([]float64, m.numMelFilters)
		for j := range m.dctMatrix[i] {
			m.dctMatrix[i][j] = math.Cos(math.Pi * float64(i) * (float64(j) + 0.5) / float64(m.numMelFilters))
		}
	}

	m.initialized = true
	return nil
}

// Compute calculates MFCC coefficients from a positive-frequency magnitude spectrum
func (m *MFCC) Compute(magnitudeSpectrum []float64) ([]float64, error) {
	if len(magnitudeSpectrum) == 0 {
		return nil, fmt.Errorf("empty magnitude spectrum")
	}

	if !m.initialized {
		fftSize := (len(magnitudeSpectrum) - 1) * 2
		if err := m.Initialize(fftSize); err != nil {
			return nil, fmt.Errorf("failed to initialize MFCC: %w", err)
		}
	}

	powerSpectrum := make([]float64, len(magnitudeSpectrum))
	for i, mag := range magnitudeSpectrum {
		powerSpectrum[i] = mag * mag
	}

	melSpectrum := ApplyFilterBank(powerSpectrum, m.filterBank)

	// Log with floor to avoid log(0)
	logMel := make([]float64, len(melSpectrum))
	for i, mel := range melSpectrum {
		if mel > 0 {
			logMel[i] = math.Log(mel)
		} else {
			logMel[i] = math.Log(1e-10)
		}
	}

	coeffs := make([]float64, m.numCoefficients)
	for i := range coeffs {
		sum := 0.0
		for j, v := range logMel {
			if j >= m.numMelFilters {
				break
			}
			sum += m.dctMatrix[i][j] * v
		}
		coeffs[i] = sum
	}

	return coeffs, nil
}

// NumCoefficients returns the configured coefficient count
func (m *MFCC) NumCoefficients() int {
	return m.numCoefficients
}
