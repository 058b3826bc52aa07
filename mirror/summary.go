package mirror

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ProgressSummary aggregates per-frame progress over a finished session
type ProgressSummary struct {
	Frames         int     `json:"frames"`
	MeanPercentage float64 `json:"mean_percentage"`
	PeakPercentage float64 `json:"peak_percentage"`
	VoicedRatio    float64 `json:"voiced_ratio"`
}

// SummaryAccumulator collects per-frame progress without retaining frames
type SummaryAccumulator struct {
	percentages []float64
	voiced      int
}

// Observe records one frame and its derived progress state
func (a *SummaryAccumulator) Observe(frame FeatureFrame, state ProgressState) {
	a.percentages = append(a.percentages, state.Percentage)
	if frame.Voiced() {
		a.voiced++
	}
}

// Summary computes the aggregate statistics for the observed frames
func (a *SummaryAccumulator) Summary() ProgressSummary {
	if len(a.percentages) == 0 {
		return ProgressSummary{}
	}
	return ProgressSummary{
		Frames:         len(a.percentages),
		MeanPercentage: stat.Mean(a.percentages, nil),
		PeakPercentage: floats.Max(a.percentages),
		VoicedRatio:    float64(a.voiced) / float64(len(a.percentages)),
	}
}
