package mirror

import (
	"fmt"

	"github.com/vocality-nexus/vocal-mirror/algorithms/spectral"
	"github.com/vocality-nexus/vocal-mirror/algorithms/temporal"
	"github.com/vocality-nexus/vocal-mirror/algorithms/tonal"
	"github.com/vocality-nexus/vocal-mirror/algorithms/windowing"
)

// Analyzer computes one FeatureFrame per PCM window. Implementations must be
// safe for use by a single session pump goroutine; they are not shared.
type Analyzer interface {
	Analyze(window []float64) (*FeatureFrame, error)
}

// AnalyzerConfig contains parameters for the default feature analyzer
type AnalyzerConfig struct {
	SampleRate         int     `json:"sample_rate"`
	WindowSize         int     `json:"window_size"`
	TimbreCoefficients int     `json:"timbre_coefficients"` // MFCC count (default: 13)
	MinPitch           float64 `json:"min_pitch"`           // Hz
	MaxPitch           float64 `json:"max_pitch"`           // Hz
}

// DefaultAnalyzerConfig returns parameters tuned for live vocal input
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		SampleRate:         44100,
		WindowSize:         2048,
		TimbreCoefficients: 13,
		MinPitch:           80.0,
		MaxPitch:           1000.0,
	}
}

// FeatureAnalyzer derives pitch, timbre and intensity from PCM windows.
// Pitch runs on the raw frame (windowing would bias the difference
// function); timbre runs on the Hann-windowed spectrum.
type FeatureAnalyzer struct {
	cfg    AnalyzerConfig
	pitch  *tonal.PitchDetector
	mfcc   *spectral.MFCC
	fft    *spectral.FFT
	window []float64
}

// NewFeatureAnalyzer creates the default analyzer for the given config
func NewFeatureAnalyzer(cfg AnalyzerConfig) *FeatureAnalyzer {
	if cfg.SampleRate <= 0 || cfg.WindowSize <= 0 {
		def := DefaultAnalyzerConfig()
		if cfg.SampleRate <= 0 {
			cfg.SampleRate = def.SampleRate
		}
		if cfg.WindowSize <= 0 {
			cfg.WindowSize = def.WindowSize
		}
	}
	if cfg.TimbreCoefficients <= 0 {
		cfg.TimbreCoefficients = 13
	}

	pitchParams := tonal.DefaultPitchParams(cfg.SampleRate, cfg.WindowSize)
	if cfg.MinPitch > 0 {
		pitchParams.MinFreq = cfg.MinPitch
	}
	if cfg.MaxPitch > 0 {
		pitchParams.MaxFreq = cfg.MaxPitch
	}

	return &FeatureAnalyzer{
		cfg:    cfg,
		pitch:  tonal.NewPitchDetectorWithParams(pitchParams),
		mfcc:   spectral.NewMFCC(cfg.SampleRate, cfg.TimbreCoefficients),
		fft:    spectral.NewFFT(),
		window: windowing.Hann(cfg.WindowSize),
	}
}

// Analyze extracts a FeatureFrame from a single PCM window
func (a *FeatureAnalyzer) Analyze(pcm []float64) (*FeatureFrame, error) {
	if len(pcm) != a.cfg.WindowSize {
		return nil, fmt.Errorf("window size (%d) doesn't match analyzer configuration (%d)", len(pcm), a.cfg.WindowSize)
	}

	pitch, err := a.pitch.Detect(pcm)
	if err != nil {
		return nil, err
	}

	windowed := windowing.Apply(pcm, a.window)
	magnitude := a.fft.MagnitudeSpectrum(windowed)
	timbre, err := a.mfcc.Compute(magnitude)
	if err != nil {
		return nil, err
	}

	return &FeatureFrame{
		Pitch:           pitch.Pitch,
		PitchConfidence: pitch.Confidence,
		Timbre:          timbre,
		Intensity:       temporal.NormalizedIntensity(pcm),
	}, nil
}
