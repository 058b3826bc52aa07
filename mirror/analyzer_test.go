package mirror

import (
	"math"
	"testing"
)

func sineWindow(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.8 * math.Sin(2.0*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestFeatureAnalyzer_SineTone(t *testing.T) {
	a := NewFeatureAnalyzer(AnalyzerConfig{SampleRate: 44100, WindowSize: 2048})

	frame, err := a.Analyze(sineWindow(220.0, 44100, 2048))
	if err != nil {
		t.Fatalf("Analyze error = %v", err)
	}

	if !frame.Voiced() {
		t.Fatalf("frame = %+v, want voiced", frame)
	}
	if math.Abs(frame.Pitch-220.0) > 2.0 {
		t.Fatalf("Pitch = %.2f, want ~220", frame.Pitch)
	}
	if len(frame.Timbre) != 13 {
		t.Fatalf("Timbre has %d coefficients, want 13", len(frame.Timbre))
	}
	// Amplitude 0.8 sine normalizes to intensity ~0.8
	if math.Abs(frame.Intensity-0.8) > 0.02 {
		t.Fatalf("Intensity = %.3f, want ~0.8", frame.Intensity)
	}
	if frame.Rhythm != nil || frame.Clarity != nil {
		t.Fatalf("Rhythm/Clarity = %v/%v, want unset", frame.Rhythm, frame.Clarity)
	}
}

func TestFeatureAnalyzer_Silence(t *testing.T) {
	a := NewFeatureAnalyzer(AnalyzerConfig{SampleRate: 44100, WindowSize: 2048})

	frame, err := a.Analyze(make([]float64, 2048))
	if err != nil {
		t.Fatalf("Analyze error = %v", err)
	}
	if frame.Voiced() {
		t.Fatalf("silence produced voiced frame: %+v", frame)
	}
	if frame.Intensity != 0 {
		t.Fatalf("Intensity = %v, want 0", frame.Intensity)
	}
}

func TestFeatureAnalyzer_WrongWindowSize(t *testing.T) {
	a := NewFeatureAnalyzer(AnalyzerConfig{SampleRate: 44100, WindowSize: 2048})
	if _, err := a.Analyze(make([]float64, 512)); err == nil {
		t.Fatal("expected error for mismatched window size")
	}
}

func TestFeatureAnalyzer_Defaults(t *testing.T) {
	a := NewFeatureAnalyzer(AnalyzerConfig{})
	if a.cfg.SampleRate != 44100 || a.cfg.WindowSize != 2048 || a.cfg.TimbreCoefficients != 13 {
		t.Fatalf("defaults not applied: %+v", a.cfg)
	}
}
