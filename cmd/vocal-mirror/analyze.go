package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vocality-nexus/vocal-mirror/capture"
	"github.com/vocality-nexus/vocal-mirror/clients"
	"github.com/vocality-nexus/vocal-mirror/config"
	"github.com/vocality-nexus/vocal-mirror/logging"
	"github.com/vocality-nexus/vocal-mirror/mirror"
)

// analysisResult is the local analyze output printed as JSON
type analysisResult struct {
	Frames        int     `json:"frames"`
	VoicedFrames  int     `json:"voiced_frames"`
	MeanPitch     float64 `json:"mean_pitch"`      // Hz over voiced frames
	MeanIntensity float64 `json:"mean_intensity"`  // 0-1 over all frames
	TimbreCoeffs  int     `json:"timbre_coefficients"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		configPath string
		input      string
		remoteURL  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Extract voice features from a WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))

			if input == "" {
				return fmt.Errorf("--input is required")
			}

			if url := firstNonEmpty(remoteURL, cfg.Services.Analyze.URL); url != "" {
				analysis, err := clients.NewHTTP().Analyze(cmd.Context(), url, input)
				if err != nil {
					return err
				}
				return printJSON(analysis)
			}

			result, err := analyzeLocal(cmd.Context(), input, cfg.Audio.WindowSize)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config YAML")
	cmd.Flags().StringVar(&input, "input", "", "path to a WAV file")
	cmd.Flags().StringVar(&remoteURL, "remote", "", "backend base URL; analyze remotely instead of locally")
	return cmd
}

// analyzeLocal runs the feature pipeline over the whole file
func analyzeLocal(ctx context.Context, path string, windowSize int) (*analysisResult, error) {
	source := capture.NewWAVSource(path, windowSize)
	if err := source.Start(ctx); err != nil {
		return nil, err
	}
	defer source.Stop()

	analyzer := mirror.NewFeatureAnalyzer(mirror.AnalyzerConfig{
		SampleRate: source.SampleRate(),
		WindowSize: windowSize,
	})

	result := &analysisResult{}
	window := make([]float64, windowSize)
	pitchSum := 0.0
	intensitySum := 0.0

	for {
		if err := source.ReadWindow(window); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		frame, err := analyzer.Analyze(window)
		if err != nil {
			return nil, err
		}

		result.Frames++
		intensitySum += frame.Intensity
		if frame.Voiced() {
			result.VoicedFrames++
			pitchSum += frame.Pitch
		}
		result.TimbreCoeffs = len(frame.Timbre)
	}

	if result.VoicedFrames > 0 {
		result.MeanPitch = pitchSum / float64(result.VoicedFrames)
	}
	if result.Frames > 0 {
		result.MeanIntensity = intensitySum / float64(result.Frames)
	}
	return result, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
