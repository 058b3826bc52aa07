package spectral

import "math"

// HzToMel converts frequency in Hz to the mel scale
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts a mel-scale value back to Hz
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MelFilterBank builds numFilters triangular filters spanning [lowFreq, highFreq],
// each row covering the positive-frequency bins of an fftSize transform.
func MelFilterBank(numFilters, fftSize, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	if numFilters <= 0 || fftSize <= 0 || sampleRate <= 0 {
		return nil
	}
	if highFreq <= 0 || highFreq > float64(sampleRate)/2.0 {
		highFreq = float64(sampleRate) / 2.0
	}

	bins := fftSize/2 + 1

	// Filter edge frequencies, equally spaced on the mel scale
	lowMel := HzToMel(lowFreq)
	highMel := HzToMel(highFreq)
	melPoints := make([]float64, numFilters+2)
	for i := range melPoints {
		melPoints[i] = lowMel + (highMel-lowMel)*float64(i)/float64(numFilters+1)
	}

	binPoints := make([]int, len(melPoints))
	for i, mel := range melPoints {
		binPoints[i] = int(math.Floor((float64(fftSize) + 1.0) * MelToHz(mel) / float64(sampleRate)))
		if binPoints[i] >= bins {
			binPoints[i] = bins - 1
		}
	}

	filterBank := make([][]float64, numFilters)
	for m := 1; m <= numFilters; m++ {
		filter := make([]float64, bins)
		left, center, right := binPoints[m-1], binPoints[m], binPoints[m+1]

		for k := left; k < center; k++ {
			if center > left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right && k < bins; k++ {
			if right > center {
				filter[k] = float64(right-k) / float64(right-center)
			} else if k == center {
				filter[k] = 1.0
			}
		}
		filterBank[m-1] = filter
	}

	return filterBank
}

// ApplyFilterBank computes the per-filter energies of a power spectrum
func ApplyFilterBank(powerSpectrum []float64, filterBank [][]float64) []float64 {
	energies := make([]float64, len(filterBank))
	for i, filter := range filterBank {
		sum := 0.0
		n := min(len(filter), len(powerSpectrum))
		for k := 0; k < n; k++ {
			sum += powerSpectrum[k] * filter[k]
		}
		energies[i] = sum
	}
	return energies
}
