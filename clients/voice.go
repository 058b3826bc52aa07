package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// --- Voice analyze (/api/voice/analyze) ---

// PitchAnalysis is the pitch section of a remote voice analysis
type PitchAnalysis struct {
	FundamentalFrequency float64 `json:"fundamental_frequency"`
	PitchStability       float64 `json:"pitch_stability"`
}

// TimbreAnalysis is the timbre section of a remote voice analysis
type TimbreAnalysis struct {
	Brightness       float64 `json:"brightness"`
	Harmonicity      float64 `json:"harmonicity"`
	SpectralCentroid float64 `json:"spectral_centroid"`
}

// VoiceAnalysis is the analyze endpoint payload
type VoiceAnalysis struct {
	Pitch  PitchAnalysis  `json:"pitch"`
	Timbre TimbreAnalysis `json:"timbre"`
}

// Analyze uploads a WAV file and returns the backend's voice analysis
func (h *HTTP) Analyze(ctx context.Context, url, wavPath string) (*VoiceAnalysis, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("audio", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/api/voice/analyze", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out VoiceAnalysis
	if err := decodeEnvelope(resp, &out); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return &out, nil
}

// --- Performance reporting (/api/voice/performance) ---

// PerformanceReport summarizes a finished practice session
type PerformanceReport struct {
	GoalName        string  `json:"goal_name"`
	Frames          int     `json:"frames"`
	MeanAccuracy    float64 `json:"mean_accuracy"`
	PeakAccuracy    float64 `json:"peak_accuracy"`
	VoicedRatio     float64 `json:"voiced_ratio"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ReportPerformance posts a session summary to the backend
func (h *HTTP) ReportPerformance(ctx context.Context, url string, report *PerformanceReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/api/voice/performance", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := decodeEnvelope(resp, nil); err != nil {
		return fmt.Errorf("performance report: %w", err)
	}
	return nil
}
