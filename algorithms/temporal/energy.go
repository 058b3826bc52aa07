package temporal

import "math"

// fullScaleSineRMS is the RMS of a full-scale sine wave (1/sqrt(2)),
// used as the reference level for normalized intensity.
const fullScaleSineRMS = 0.7071067811865476

// RMS calculates the root-mean-square amplitude of a frame
func RMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, s := range frame {
		sumSquares += s * s
	}
	return math.Sqrt(sumSquares / float64(len(frame)))
}

// NormalizedIntensity maps frame RMS to [0,1] against a full-scale sine
// reference. A full-scale sine reads 1.0; silence reads 0.0.
func NormalizedIntensity(frame []float64) float64 {
	v := RMS(frame) / fullScaleSineRMS
	if v > 1.0 {
		return 1.0
	}
	if v < 0.0 {
		return 0.0
	}
	return v
}

// LogEnergy calculates frame energy in dB, floored to avoid log(0)
func LogEnergy(frame []float64, floor float64) float64 {
	energy := RMS(frame)
	if energy < floor {
		energy = floor
	}
	return 20.0 * math.Log10(energy)
}
