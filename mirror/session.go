package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vocality-nexus/vocal-mirror/logging"
)

// State is the capture session lifecycle: Idle -> Capturing -> Stopped.
// Stopped is terminal; a new session must be constructed to capture again.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SessionConfig contains parameters for a capture session
type SessionConfig struct {
	WindowSize  int `json:"window_size"`  // PCM samples per analysis window
	FrameBuffer int `json:"frame_buffer"` // Frame channel capacity (default: 8)
	VizCapacity int `json:"viz_capacity"` // Visualization history depth (default: 64)
}

// DefaultSessionConfig returns sensible defaults for live vocal capture
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WindowSize:  2048,
		FrameBuffer: 8,
		VizCapacity: DefaultVizCapacity,
	}
}

// Session owns one capture stream from start to stop. It is the sole writer
// of feature frames and the visualization buffer; consumers receive copies
// or immutable snapshots, so no consumer can block the audio path.
//
// Frame delivery uses a bounded drop-oldest channel: the newest frame always
// lands, consumers that fall behind lose the stalest frames. Render
// notifications coalesce; a dropped notification is counted as a render
// skip, never treated as an error.
type Session struct {
	cfg      SessionConfig
	source   Source
	analyzer Analyzer
	logger   logging.Logger

	mu          sync.Mutex
	state       State
	fault       error
	pumpStarted bool

	frames       chan FeatureFrame
	viz          *VisualizationBuffer
	renderSignal chan struct{}
	renderSkips  atomic.Int64

	stopping   chan struct{}
	pumpDone   chan struct{}
	stopDone   chan struct{}
	stopOnce   sync.Once
	signalOnce sync.Once
	closeOnce  sync.Once
}

// NewSession creates an Idle session for the given source. A nil analyzer
// selects the default FeatureAnalyzer sized to the source and window.
func NewSession(source Source, analyzer Analyzer, cfg SessionConfig) *Session {
	def := DefaultSessionConfig()
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = def.WindowSize
	}
	if cfg.FrameBuffer <= 0 {
		cfg.FrameBuffer = def.FrameBuffer
	}
	if cfg.VizCapacity <= 0 {
		cfg.VizCapacity = def.VizCapacity
	}

	return &Session{
		cfg:      cfg,
		source:   source,
		analyzer: analyzer,
		logger: logging.WithFields(logging.Fields{
			"component": "capture_session",
		}),
		frames:       make(chan FeatureFrame, cfg.FrameBuffer),
		viz:          NewVisualizationBuffer(cfg.VizCapacity),
		renderSignal: make(chan struct{}, 1),
		stopping:     make(chan struct{}),
		pumpDone:     make(chan struct{}),
		stopDone:     make(chan struct{}),
	}
}

// Start acquires the input and begins frame delivery. On a permission or
// device failure the error wraps ErrDeviceUnavailable and the session stays
// Idle, so the caller may retry. Cancelling ctx stops the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateCapturing:
		s.mu.Unlock()
		return ErrSessionActive
	case StateStopped:
		s.mu.Unlock()
		return ErrSessionStopped
	}

	if err := s.source.Start(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if s.analyzer == nil {
		// Sources learn their sample rate on Start, so the default
		// analyzer is sized here rather than at construction.
		s.analyzer = NewFeatureAnalyzer(AnalyzerConfig{
			SampleRate: s.source.SampleRate(),
			WindowSize: s.cfg.WindowSize,
		})
	}
	s.state = StateCapturing
	s.pumpStarted = true
	s.mu.Unlock()

	s.logger.Info("capture started", logging.Fields{
		"window_size": s.cfg.WindowSize,
		"sample_rate": s.source.SampleRate(),
	})

	go s.watch(ctx)
	go s.pump()
	return nil
}

// Stop ends the session and releases the input synchronously. It is
// idempotent and safe to call concurrently with an in-flight window: the
// pump goroutine is joined before Stop returns, so no frame is delivered
// after Stop returns. A window being analyzed when Stop wins the race is
// discarded, not delivered late.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		prev := s.state
		s.state = StateStopped
		started := s.pumpStarted
		s.mu.Unlock()

		s.requestStop()
		if started {
			if err := s.source.Stop(); err != nil {
				s.logger.Warn("source stop failed", logging.Fields{"error": err.Error()})
			}
			<-s.pumpDone
		}
		s.closeOutputs()
		if prev == StateCapturing {
			s.logger.Info("capture stopped")
		}
		close(s.stopDone)
	})
	<-s.stopDone
}

// Frames returns the bounded frame channel. It is closed once the session
// reaches Stopped and the pump has exited.
func (s *Session) Frames() <-chan FeatureFrame {
	return s.frames
}

// RenderSignals returns the coalescing render notification channel. One
// signal means "the visualization buffer changed"; take a Snapshot to render.
func (s *Session) RenderSignals() <-chan struct{} {
	return s.renderSignal
}

// Visualization returns the session's frame history ring
func (s *Session) Visualization() *VisualizationBuffer {
	return s.viz
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the extraction fault that stopped the session, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// RenderSkips reports how many render notifications were dropped because
// the renderer was still busy.
func (s *Session) RenderSkips() int64 {
	return s.renderSkips.Load()
}

func (s *Session) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.Stop()
	case <-s.stopping:
	}
}

func (s *Session) pump() {
	defer close(s.pumpDone)

	window := make([]float64, s.cfg.WindowSize)
	sampleRate := s.source.SampleRate()

	for index := 0; ; index++ {
		if s.stopRequested() {
			return
		}

		if err := s.source.ReadWindow(window); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				s.logger.Debug("input exhausted", logging.Fields{"frames": index})
				s.finish(nil)
			case s.stopRequested():
				// Read unblocked by Stop releasing the source
			default:
				s.finish(&ExtractionFault{Err: err})
			}
			return
		}

		frame, err := s.analyzer.Analyze(window)
		if err != nil {
			s.finish(&ExtractionFault{Err: err})
			return
		}
		frame.Index = index
		if sampleRate > 0 {
			frame.Offset = time.Duration(index) * time.Duration(s.cfg.WindowSize) * time.Second / time.Duration(sampleRate)
		}

		if !s.deliver(*frame) {
			return
		}
	}
}

// deliver publishes a frame unless stop raced in
func (s *Session) deliver(f FeatureFrame) bool {
	s.mu.Lock()
	if s.state != StateCapturing {
		s.mu.Unlock()
		return false
	}
	s.viz.Push(f)

	select {
	case s.frames <- f:
	default:
		// Channel full: evict the oldest buffered frame so the newest lands
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- f:
		default:
		}
	}
	s.mu.Unlock()

	select {
	case s.renderSignal <- struct{}{}:
	default:
		s.renderSkips.Add(1)
	}
	return true
}

// finish is the pump-side transition to Stopped (end of input or fault)
func (s *Session) finish(fault error) {
	s.mu.Lock()
	if s.state == StateCapturing {
		s.state = StateStopped
		s.fault = fault
	}
	s.mu.Unlock()

	if fault != nil {
		s.logger.Error(fault, "capture session faulted")
	}
	s.requestStop()
	if err := s.source.Stop(); err != nil {
		s.logger.Warn("source stop failed", logging.Fields{"error": err.Error()})
	}
	s.closeOutputs()
}

func (s *Session) requestStop() {
	s.signalOnce.Do(func() {
		close(s.stopping)
	})
}

func (s *Session) stopRequested() bool {
	select {
	case <-s.stopping:
		return true
	default:
		return false
	}
}

func (s *Session) closeOutputs() {
	s.closeOnce.Do(func() {
		close(s.frames)
		close(s.renderSignal)
	})
}
