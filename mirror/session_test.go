package mirror

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/vocality-nexus/vocal-mirror/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

// fakeSource emits a fixed number of windows, or unlimited when windows < 0.
// Stop unblocks any in-flight read, mirroring a real device handle.
type fakeSource struct {
	mu       sync.Mutex
	rate     int
	windows  int
	read     int
	startErr error
	stopped  chan struct{}
	once     sync.Once
}

func newFakeSource(windows int) *fakeSource {
	return &fakeSource{rate: 44100, windows: windows, stopped: make(chan struct{})}
}

func (s *fakeSource) Start(ctx context.Context) error {
	return s.startErr
}

func (s *fakeSource) ReadWindow(dst []float64) error {
	select {
	case <-s.stopped:
		return errors.New("source closed")
	default:
	}

	s.mu.Lock()
	if s.windows >= 0 && s.read >= s.windows {
		s.mu.Unlock()
		return io.EOF
	}
	s.read++
	s.mu.Unlock()

	for i := range dst {
		dst[i] = 0.1
	}
	// Pace unlimited sources so tests do not spin
	if s.windows < 0 {
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (s *fakeSource) Stop() error {
	s.once.Do(func() { close(s.stopped) })
	return nil
}

func (s *fakeSource) SampleRate() int { return s.rate }

// fakeAnalyzer returns a fixed voiced frame, optionally failing at failAt
type fakeAnalyzer struct {
	mu     sync.Mutex
	calls  int
	failAt int // 0 = never fail
}

func (a *fakeAnalyzer) Analyze(window []float64) (*FeatureFrame, error) {
	a.mu.Lock()
	a.calls++
	n := a.calls
	a.mu.Unlock()

	if a.failAt > 0 && n >= a.failAt {
		return nil, errors.New("filterbank not initialized")
	}
	return &FeatureFrame{Pitch: 220.0, PitchConfidence: 0.9, Intensity: 0.5}, nil
}

func collectFrames(t *testing.T, s *Session) []FeatureFrame {
	t.Helper()
	var frames []FeatureFrame
	timeout := time.After(5 * time.Second)
	for {
		select {
		case f, ok := <-s.Frames():
			if !ok {
				return frames
			}
			frames = append(frames, f)
		case <-timeout:
			t.Fatal("timed out waiting for frame channel to close")
		}
	}
}

func TestSession_DeliversFramesInOrder(t *testing.T) {
	source := newFakeSource(5)
	session := NewSession(source, &fakeAnalyzer{}, SessionConfig{FrameBuffer: 16})

	if session.State() != StateIdle {
		t.Fatalf("initial state = %v, want idle", session.State())
	}
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	frames := collectFrames(t, session)
	if len(frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(frames))
	}
	for i, f := range frames {
		if f.Index != i {
			t.Fatalf("frame %d has index %d, want %d", i, f.Index, i)
		}
	}

	session.Stop()
	if session.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", session.State())
	}
	if err := session.Err(); err != nil {
		t.Fatalf("Err = %v, want nil after clean end of input", err)
	}
}

func TestSession_FrameOffsets(t *testing.T) {
	source := newFakeSource(3)
	session := NewSession(source, &fakeAnalyzer{}, SessionConfig{WindowSize: 4410, FrameBuffer: 8})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	frames := collectFrames(t, session)
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	// 4410 samples at 44.1 kHz is 100 ms per window
	if frames[1].Offset != 100*time.Millisecond {
		t.Fatalf("frame 1 offset = %v, want 100ms", frames[1].Offset)
	}
	session.Stop()
}

func TestSession_StartDeviceUnavailable(t *testing.T) {
	source := newFakeSource(0)
	source.startErr = errors.New("permission denied")
	session := NewSession(source, &fakeAnalyzer{}, SessionConfig{})

	err := session.Start(context.Background())
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("Start error = %v, want ErrDeviceUnavailable", err)
	}
	if session.State() != StateIdle {
		t.Fatalf("state = %v, want idle so the caller can retry", session.State())
	}

	// Retry succeeds once the device is back
	source.startErr = nil
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("retry Start error = %v", err)
	}
	session.Stop()
}

func TestSession_DoubleStart(t *testing.T) {
	session := NewSession(newFakeSource(-1), &fakeAnalyzer{}, SessionConfig{})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	defer session.Stop()

	if err := session.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Start error = %v, want ErrSessionActive", err)
	}
}

func TestSession_StopIsIdempotentAndTerminal(t *testing.T) {
	session := NewSession(newFakeSource(-1), &fakeAnalyzer{}, SessionConfig{})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	session.Stop()
	session.Stop() // must not panic or block

	if session.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", session.State())
	}
	if err := session.Start(context.Background()); !errors.Is(err, ErrSessionStopped) {
		t.Fatalf("Start after Stop error = %v, want ErrSessionStopped", err)
	}
}

func TestSession_NoFramesAfterStop(t *testing.T) {
	session := NewSession(newFakeSource(-1), &fakeAnalyzer{}, SessionConfig{FrameBuffer: 4})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	// Let a few frames through, then stop
	select {
	case <-session.Frames():
	case <-time.After(5 * time.Second):
		t.Fatal("no frame arrived")
	}
	session.Stop()

	// The channel must be closed; draining frames buffered before Stop is
	// fine, receiving forever is not.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-session.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("frame channel never closed after Stop")
		}
	}
}

func TestSession_ExtractionFaultStops(t *testing.T) {
	source := newFakeSource(100)
	session := NewSession(source, &fakeAnalyzer{failAt: 3}, SessionConfig{FrameBuffer: 16})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	frames := collectFrames(t, session)
	if len(frames) != 2 {
		t.Fatalf("got %d frames before fault, want 2", len(frames))
	}

	session.Stop()
	if session.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", session.State())
	}

	var fault *ExtractionFault
	if err := session.Err(); !errors.As(err, &fault) {
		t.Fatalf("Err = %v, want *ExtractionFault", err)
	}
}

func TestSession_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(newFakeSource(-1), &fakeAnalyzer{}, SessionConfig{})
	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	cancel()
	collectFrames(t, session) // returns only once the channel closes

	session.Stop()
	if session.State() != StateStopped {
		t.Fatalf("state = %v, want stopped after cancel", session.State())
	}
}

func TestSession_DropOldestKeepsNewest(t *testing.T) {
	source := newFakeSource(20)
	session := NewSession(source, &fakeAnalyzer{}, SessionConfig{FrameBuffer: 2})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	frames := collectFrames(t, session)
	if len(frames) == 0 {
		t.Fatal("no frames delivered")
	}
	// A slow consumer loses stale frames but the newest always lands
	if last := frames[len(frames)-1].Index; last != 19 {
		t.Fatalf("last frame index = %d, want 19", last)
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Index <= frames[i-1].Index {
			t.Fatalf("frame order violated: %d after %d", frames[i].Index, frames[i-1].Index)
		}
	}
	session.Stop()
}

func TestSession_RenderSignalsCoalesce(t *testing.T) {
	source := newFakeSource(50)
	session := NewSession(source, &fakeAnalyzer{}, SessionConfig{FrameBuffer: 64})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	collectFrames(t, session)
	session.Stop()

	signals := 0
	for range session.RenderSignals() {
		signals++
	}
	if signals > 1 {
		t.Fatalf("render signal channel buffered %d signals, want at most 1", signals)
	}
	if session.RenderSkips()+int64(signals) == 0 {
		t.Fatal("expected at least one render signal or skip")
	}
	if session.Visualization().Len() != 50 {
		t.Fatalf("visualization holds %d frames, want 50", session.Visualization().Len())
	}
}
