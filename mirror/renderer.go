package mirror

import (
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/vocality-nexus/vocal-mirror/logging"
)

// IntensityColor is one entry of the fixed intensity lookup scale
type IntensityColor struct {
	Color   string  `json:"color"`   // Hex RGB
	Opacity float64 `json:"opacity"` // 0-1
}

// intensityScale maps normalized intensity to display color/opacity.
// Thresholds (upper bounds, inclusive):
//
//	<= 0.20  quiet      #1e3a5f @ 0.35
//	<= 0.50  moderate   #2e86ab @ 0.60
//	<= 0.80  strong     #f18f01 @ 0.80
//	>  0.80  peak       #c73e1d @ 1.00
var intensityScale = []struct {
	max   float64
	color IntensityColor
}{
	{0.20, IntensityColor{Color: "#1e3a5f", Opacity: 0.35}},
	{0.50, IntensityColor{Color: "#2e86ab", Opacity: 0.60}},
	{0.80, IntensityColor{Color: "#f18f01", Opacity: 0.80}},
	{1.00, IntensityColor{Color: "#c73e1d", Opacity: 1.00}},
}

// ColorForIntensity is a deterministic threshold lookup; nothing is
// recomputed per frame beyond the scan.
func ColorForIntensity(v float64) IntensityColor {
	for _, entry := range intensityScale {
		if v <= entry.max {
			return entry.color
		}
	}
	return intensityScale[len(intensityScale)-1].color
}

// RenderModel is everything a display needs for one repaint: the recent
// pitch curve, spectrogram rows from timbre history, and the
// emotion-intensity cell for the newest frame.
type RenderModel struct {
	PitchCurve   []float64      `json:"pitch_curve"`  // Normalized 0-1, oldest first
	Spectrogram  [][]float64    `json:"spectrogram"`  // One timbre row per frame
	Intensity    IntensityColor `json:"intensity"`    // Newest frame's color cell
	EmotionLabel string         `json:"emotion_label"`
	Frames       int            `json:"frames"` // Frames included in this model
}

// RenderSink receives completed render models. A failing sink drops that
// repaint; the frame history is intact for the next one.
type RenderSink interface {
	Render(model *RenderModel) error
}

// Renderer turns visualization buffer snapshots into render models. It runs
// off the session's coalescing notification channel, so it repaints on state
// change and never polls, and it never back-pressures the extractor.
type Renderer struct {
	viz    *VisualizationBuffer
	goal   *GoalProfile
	sink   RenderSink
	logger logging.Logger
	skips  atomic.Int64
}

// NewRenderer creates a renderer over the session's visualization buffer
func NewRenderer(viz *VisualizationBuffer, goal *GoalProfile, sink RenderSink) *Renderer {
	return &Renderer{
		viz:  viz,
		goal: goal,
		sink: sink,
		logger: logging.WithFields(logging.Fields{
			"component": "renderer",
		}),
	}
}

// Run consumes render signals until the channel closes. Call it on its own
// goroutine; it returns when the session's outputs are closed.
func (r *Renderer) Run(signals <-chan struct{}) {
	for range signals {
		model := r.Build()
		if model == nil {
			continue
		}
		if err := r.sink.Render(model); err != nil {
			// Dropped repaint, not an error: the next signal renders a
			// fresh snapshot.
			r.skips.Add(1)
			r.logger.Debug("render skipped", logging.Fields{"error": err.Error()})
		}
	}
}

// Build produces a render model from the current snapshot, or nil when
// there is nothing to draw yet.
func (r *Renderer) Build() *RenderModel {
	frames := r.viz.Snapshot()
	if len(frames) == 0 {
		return nil
	}

	pitches := make([]float64, len(frames))
	spectrogram := make([][]float64, len(frames))
	for i, f := range frames {
		pitches[i] = f.Pitch
		row := make([]float64, len(f.Timbre))
		copy(row, f.Timbre)
		spectrogram[i] = row
	}

	// Normalize the curve against the louder of the observed range and the
	// goal pitch, so the target sits inside the plot.
	scale := floats.Max(pitches)
	if r.goal != nil && r.goal.TargetPitch > scale {
		scale = r.goal.TargetPitch
	}
	if scale > 0 {
		for i := range pitches {
			pitches[i] /= scale
		}
	}

	model := &RenderModel{
		PitchCurve:  pitches,
		Spectrogram: spectrogram,
		Intensity:   ColorForIntensity(frames[len(frames)-1].Intensity),
		Frames:      len(frames),
	}
	if r.goal != nil {
		model.EmotionLabel = r.goal.EmotionLabel
	}
	return model
}

// Skips reports repaints dropped by a failing sink
func (r *Renderer) Skips() int64 {
	return r.skips.Load()
}
