package mirror

import (
	"strings"
	"testing"
)

func TestEvaluateProgress(t *testing.T) {
	goal := &GoalProfile{Name: "a3", TargetPitch: 220.0}

	tests := []struct {
		name     string
		pitch    float64
		wantPct  float64
		contains string
	}{
		{"exact match", 220.0, 100.0, "100"},
		{"overshoot clamps", 500.0, 100.0, "100"},
		{"half way", 110.0, 50.0, "getting closer"},
		{"near match", 200.0, 100.0 * 200.0 / 220.0, "excellent"},
		{"approaching", 170.0, 100.0 * 170.0 / 220.0, "raise your pitch"},
		{"unvoiced", 0.0, 0.0, "No voice detected"},
		{"far off", 30.0, 100.0 * 30.0 / 220.0, "far from the target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := EvaluateProgress(FeatureFrame{Pitch: tt.pitch, PitchConfidence: 0.9}, goal)
			if state.Percentage != tt.wantPct {
				t.Fatalf("Percentage = %v, want %v", state.Percentage, tt.wantPct)
			}
			if state.Percentage < 0 || state.Percentage > 100 {
				t.Fatalf("Percentage %v out of [0,100]", state.Percentage)
			}
			if !strings.Contains(state.Feedback, tt.contains) {
				t.Fatalf("Feedback = %q, want it to contain %q", state.Feedback, tt.contains)
			}
		})
	}
}

func TestEvaluateProgress_Deterministic(t *testing.T) {
	goal := &GoalProfile{Name: "a3", TargetPitch: 220.0}
	frame := FeatureFrame{Pitch: 187.3, PitchConfidence: 0.8}

	first := EvaluateProgress(frame, goal)
	for i := 0; i < 10; i++ {
		if got := EvaluateProgress(frame, goal); got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
}

func TestEvaluateProgress_NoGoal(t *testing.T) {
	state := EvaluateProgress(FeatureFrame{Pitch: 220.0}, nil)
	if state.Percentage != 0 || !strings.Contains(state.Feedback, "No goal") {
		t.Fatalf("EvaluateProgress(nil goal) = %+v", state)
	}
}

func TestSummaryAccumulator(t *testing.T) {
	goal := &GoalProfile{Name: "a3", TargetPitch: 220.0}
	var acc SummaryAccumulator

	for _, pitch := range []float64{220.0, 110.0, 0.0} {
		frame := FeatureFrame{Pitch: pitch}
		acc.Observe(frame, EvaluateProgress(frame, goal))
	}

	s := acc.Summary()
	if s.Frames != 3 {
		t.Fatalf("Frames = %d, want 3", s.Frames)
	}
	if s.PeakPercentage != 100.0 {
		t.Fatalf("PeakPercentage = %v, want 100", s.PeakPercentage)
	}
	if want := 50.0; s.MeanPercentage != want {
		t.Fatalf("MeanPercentage = %v, want %v", s.MeanPercentage, want)
	}
	if want := 2.0 / 3.0; s.VoicedRatio != want {
		t.Fatalf("VoicedRatio = %v, want %v", s.VoicedRatio, want)
	}
}

func TestSummaryAccumulator_Empty(t *testing.T) {
	var acc SummaryAccumulator
	if s := acc.Summary(); s != (ProgressSummary{}) {
		t.Fatalf("empty Summary = %+v, want zero value", s)
	}
}
