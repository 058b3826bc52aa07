package tonal

import (
	"fmt"
	"math"
)

// PitchParams contains parameters for YIN pitch detection
type PitchParams struct {
	SampleRate int     `json:"sample_rate"`
	WindowSize int     `json:"window_size"`
	MinFreq    float64 `json:"min_freq"` // Minimum frequency (Hz)
	MaxFreq    float64 `json:"max_freq"` // Maximum frequency (Hz)

	// YIN absolute threshold on the cumulative mean normalized difference
	Threshold float64 `json:"threshold"`

	// Estimates below this confidence are reported as unvoiced
	MinConfidence float64 `json:"min_confidence"`
}

// DefaultPitchParams returns parameters tuned for the vocal range
func DefaultPitchParams(sampleRate, windowSize int) PitchParams {
	return PitchParams{
		SampleRate:    sampleRate,
		WindowSize:    windowSize,
		MinFreq:       80.0,   // Low male voice
		MaxFreq:       1000.0, // High female voice
		Threshold:     0.15,
		MinConfidence: 0.5,
	}
}

// PitchResult contains a single-frame pitch estimate
type PitchResult struct {
	Pitch      float64 `json:"pitch"`      // Best pitch estimate (Hz), 0 when unvoiced
	Confidence float64 `json:"confidence"` // Confidence score (0-1)
	Voiced     bool    `json:"voiced"`     // Whether the frame carries a usable pitch
}

// PitchDetector implements YIN pitch detection for streaming vocal analysis.
//
// Reference:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
type PitchDetector struct {
	params PitchParams

	// Reused per-frame buffers
	diff  []float64
	cmndf []float64
}

// NewPitchDetector creates a pitch detector with default vocal-range parameters
func NewPitchDetector(sampleRate, windowSize int) *PitchDetector {
	return NewPitchDetectorWithParams(DefaultPitchParams(sampleRate, windowSize))
}

// NewPitchDetectorWithParams creates a pitch detector with custom parameters
func NewPitchDetectorWithParams(params PitchParams) *PitchDetector {
	half := params.WindowSize / 2
	return &PitchDetector{
		params: params,
		diff:   make([]float64, half),
		cmndf:  make([]float64, half),
	}
}

// Detect estimates the fundamental frequency of a single audio frame.
// The frame length must match the configured window size.
func (pd *PitchDetector) Detect(frame []float64) (*PitchResult, error) {
	if len(frame) != pd.params.WindowSize {
		return nil, fmt.Errorf("audio frame size (%d) doesn't match window size (%d)", len(frame), pd.params.WindowSize)
	}

	half := len(frame) / 2

	// Difference function
	for tau := 0; tau < half; tau++ {
		sum := 0.0
		for j := 0; j < half; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		pd.diff[tau] = sum
	}

	// Cumulative mean normalized difference function
	pd.cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < half; tau++ {
		runningSum += pd.diff[tau]
		if runningSum > 0 {
			pd.cmndf[tau] = pd.diff[tau] * float64(tau) / runningSum
		} else {
			pd.cmndf[tau] = 1.0
		}
	}

	// First local minimum below the threshold, within the lag range
	// allowed by the frequency bounds
	minTau := int(float64(pd.params.SampleRate) / pd.params.MaxFreq)
	maxTau := int(float64(pd.params.SampleRate) / pd.params.MinFreq)
	minTau = max(minTau, 1)
	maxTau = min(maxTau, half-1)

	bestTau := -1
	for tau := minTau; tau <= maxTau; tau++ {
		if pd.cmndf[tau] < pd.params.Threshold {
			for tau+1 <= maxTau && pd.cmndf[tau+1] < pd.cmndf[tau] {
				tau++
			}
			bestTau = tau
			break
		}
	}

	result := &PitchResult{}
	if bestTau < 0 {
		return result, nil
	}

	period := parabolicInterpolation(pd.cmndf, bestTau)
	frequency := float64(pd.params.SampleRate) / period
	confidence := 1.0 - pd.cmndf[bestTau]

	if frequency < pd.params.MinFreq || frequency > pd.params.MaxFreq || confidence < pd.params.MinConfidence {
		return result, nil
	}

	result.Pitch = frequency
	result.Confidence = confidence
	result.Voiced = true
	return result, nil
}

// Params returns the detector parameters
func (pd *PitchDetector) Params() PitchParams {
	return pd.params
}

// parabolicInterpolation refines a minimum location for sub-sample accuracy
func parabolicInterpolation(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y1 := data[idx-1]
	y2 := data[idx]
	y3 := data[idx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(idx)
	}

	offset := -b / (2 * a)
	if math.Abs(offset) > 1 {
		return float64(idx)
	}

	return float64(idx) + offset
}
