package mirror

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FeatureFrame is one bundle of audio characteristics extracted from a
// single PCM window. Frames are immutable once emitted and are not persisted.
type FeatureFrame struct {
	Index  int           `json:"index"`  // Sequence number within the session
	Offset time.Duration `json:"offset"` // Position from session start

	Pitch           float64   `json:"pitch"`            // Fundamental frequency (Hz), 0 when unvoiced
	PitchConfidence float64   `json:"pitch_confidence"` // Pitch estimate confidence (0-1)
	Timbre          []float64 `json:"timbre,omitempty"` // MFCC coefficients
	Intensity       float64   `json:"intensity"`        // Normalized loudness (0-1)

	// Rhythm and clarity have no extraction algorithm yet; they stay unset
	// until one is supplied.
	Rhythm  *float64 `json:"rhythm,omitempty"`
	Clarity *float64 `json:"clarity,omitempty"`
}

// Voiced reports whether the frame carries a usable pitch estimate
func (f FeatureFrame) Voiced() bool {
	return f.Pitch > 0
}

// GoalProfile is the reference vocal target for a practice session.
// It is created at session start and never mutated during the session.
type GoalProfile struct {
	Name         string      `yaml:"name" json:"name"`
	Description  string      `yaml:"description" json:"description"`
	TargetPitch  float64     `yaml:"target_pitch" json:"target_pitch"` // Hz
	PitchCurve   []float64   `yaml:"pitch_curve" json:"pitch_curve"`   // Normalized 0-1
	Spectrogram  [][]float64 `yaml:"spectrogram" json:"spectrogram"`   // Normalized 2-D grid
	EmotionLabel string      `yaml:"emotion_label" json:"emotion_label"`
}

// Validate checks the profile is usable as a session target
func (g *GoalProfile) Validate() error {
	if g.TargetPitch <= 0 {
		return fmt.Errorf("goal profile %q: target_pitch must be positive, got %.2f", g.Name, g.TargetPitch)
	}
	for i, v := range g.PitchCurve {
		if v < 0 || v > 1 {
			return fmt.Errorf("goal profile %q: pitch_curve[%d] out of [0,1]: %.3f", g.Name, i, v)
		}
	}
	return nil
}

// LoadGoalProfile reads a goal profile from a YAML file
func LoadGoalProfile(path string) (*GoalProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open goal profile: %w", err)
	}
	defer f.Close()

	var goal GoalProfile
	if err := yaml.NewDecoder(f).Decode(&goal); err != nil {
		return nil, fmt.Errorf("decode goal profile: %w", err)
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	return &goal, nil
}

// ProgressState is the feedback derived from the most recent frame.
// Each update supersedes the previous one; states are never merged.
type ProgressState struct {
	Percentage float64 `json:"percentage"` // Accuracy against the goal, 0-100
	Feedback   string  `json:"feedback"`   // Human-readable accuracy message
}
