package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vocality-nexus/vocal-mirror/capture"
	"github.com/vocality-nexus/vocal-mirror/clients"
	"github.com/vocality-nexus/vocal-mirror/config"
	"github.com/vocality-nexus/vocal-mirror/feed"
	"github.com/vocality-nexus/vocal-mirror/logging"
	"github.com/vocality-nexus/vocal-mirror/mirror"
)

func newPracticeCmd() *cobra.Command {
	var (
		configPath  string
		input       string
		tone        float64
		toneWindows int
		goalPath    string
		listen      string
		reportURL   string
	)

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Run a practice session against a goal profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
			logger := logging.WithFields(logging.Fields{"command": "practice"})

			goal := defaultGoal()
			if goalPath != "" {
				goal, err = mirror.LoadGoalProfile(goalPath)
				if err != nil {
					return err
				}
			}

			var source mirror.Source
			switch {
			case input != "":
				source = capture.NewWAVSource(input, cfg.Audio.WindowSize)
			case tone > 0:
				source = capture.NewToneSource(tone, cfg.Audio.SampleRate, toneWindows)
			default:
				return fmt.Errorf("either --input or --tone is required")
			}

			session := mirror.NewSession(source, nil, mirror.SessionConfig{
				WindowSize:  cfg.Audio.WindowSize,
				FrameBuffer: cfg.Session.FrameBuffer,
				VizCapacity: cfg.Session.VizCapacity,
			})

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var hub *feed.Hub
			if addr := firstNonEmpty(listen, cfg.Feed.Listen); addr != "" {
				hub = feed.NewHub()
				defer hub.Close()

				mux := http.NewServeMux()
				mux.Handle("/live", feed.NewHandler(hub))
				srv := &http.Server{Addr: addr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error(err, "feed server failed")
					}
				}()
				defer srv.Close()
				logger.Info("live feed listening", logging.Fields{"addr": addr})
			}

			if err := session.Start(ctx); err != nil {
				return err
			}
			defer session.Stop()

			var sink mirror.RenderSink = logSink{logger: logger}
			if hub != nil {
				sink = hubSink{hub: hub}
			}
			renderer := mirror.NewRenderer(session.Visualization(), goal, sink)
			go renderer.Run(session.RenderSignals())

			start := time.Now()
			var acc mirror.SummaryAccumulator
			for frame := range session.Frames() {
				state := mirror.EvaluateProgress(frame, goal)
				acc.Observe(frame, state)

				if hub != nil {
					f := frame
					s := state
					hub.Publish(feed.Event{Type: "frame", Frame: &f})
					hub.Publish(feed.Event{Type: "progress", Progress: &s})
				}

				logger.Debug("progress", logging.Fields{
					"frame":      frame.Index,
					"pitch":      fmt.Sprintf("%.1f", frame.Pitch),
					"percentage": fmt.Sprintf("%.0f", state.Percentage),
					"feedback":   state.Feedback,
				})
			}

			session.Stop()
			if fault := session.Err(); fault != nil {
				logger.Error(fault, "session ended with fault")
			}

			summary := acc.Summary()
			logger.Info("session summary", logging.Fields{
				"goal":          goal.Name,
				"frames":        summary.Frames,
				"mean_accuracy": fmt.Sprintf("%.1f", summary.MeanPercentage),
				"peak_accuracy": fmt.Sprintf("%.1f", summary.PeakPercentage),
				"voiced_ratio":  fmt.Sprintf("%.2f", summary.VoicedRatio),
				"render_skips":  session.RenderSkips(),
			})

			if url := firstNonEmpty(reportURL, cfg.Services.Report.URL); url != "" && summary.Frames > 0 {
				reportCtx, cancelReport := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancelReport()

				report := &clients.PerformanceReport{
					GoalName:        goal.Name,
					Frames:          summary.Frames,
					MeanAccuracy:    summary.MeanPercentage,
					PeakAccuracy:    summary.PeakPercentage,
					VoicedRatio:     summary.VoicedRatio,
					DurationSeconds: time.Since(start).Seconds(),
				}
				if err := clients.NewHTTP().ReportPerformance(reportCtx, url, report); err != nil {
					logger.Warn("performance report failed", logging.Fields{"error": err.Error()})
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config YAML")
	cmd.Flags().StringVar(&input, "input", "", "path to a WAV file to practice against")
	cmd.Flags().Float64Var(&tone, "tone", 0, "synthesize a sine tone at this frequency (Hz) instead of reading a file")
	cmd.Flags().IntVar(&toneWindows, "tone-windows", 200, "number of windows to synthesize with --tone (0 = unlimited)")
	cmd.Flags().StringVar(&goalPath, "goal", "", "path to a goal profile YAML")
	cmd.Flags().StringVar(&listen, "listen", "", "serve the live websocket feed on this address (e.g. :8080)")
	cmd.Flags().StringVar(&reportURL, "report-url", "", "backend base URL for performance reporting")
	return cmd
}

// defaultGoal is the fallback target when no profile file is given:
// A3 (220 Hz), the canonical vocal warmup pitch.
func defaultGoal() *mirror.GoalProfile {
	return &mirror.GoalProfile{
		Name:         "default-a3",
		Description:  "Hold a steady A3",
		TargetPitch:  220.0,
		EmotionLabel: "neutral",
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// logSink logs a one-line summary of each repaint at debug level
type logSink struct {
	logger logging.Logger
}

func (s logSink) Render(m *mirror.RenderModel) error {
	s.logger.Debug("render", logging.Fields{
		"frames":  m.Frames,
		"color":   m.Intensity.Color,
		"opacity": m.Intensity.Opacity,
	})
	return nil
}

// hubSink publishes repaints to the live feed
type hubSink struct {
	hub *feed.Hub
}

func (s hubSink) Render(m *mirror.RenderModel) error {
	s.hub.Publish(feed.Event{Type: "render", Render: m})
	return nil
}
