package capture

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
)

// ToneSource synthesizes a sine wave at a fixed frequency and amplitude.
// Used by the demo CLI and tests where no real input is available.
type ToneSource struct {
	freq       float64
	amplitude  float64
	sampleRate int
	windows    int // total windows to emit, <= 0 means unlimited

	mu      sync.Mutex
	started bool
	stopped bool
	emitted int
	phase   float64
}

// NewToneSource creates a tone at freq Hz with amplitude 0.8. windows caps
// how many windows are emitted before io.EOF; pass 0 for unlimited.
func NewToneSource(freq float64, sampleRate, windows int) *ToneSource {
	return &ToneSource{
		freq:       freq,
		amplitude:  0.8,
		sampleRate: sampleRate,
		windows:    windows,
	}
}

// Start validates the tone parameters
func (s *ToneSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freq <= 0 || s.sampleRate <= 0 {
		return fmt.Errorf("invalid tone parameters: freq=%.1f rate=%d", s.freq, s.sampleRate)
	}
	if s.stopped {
		return fmt.Errorf("tone source stopped")
	}
	s.started = true
	return nil
}

// ReadWindow fills dst with the next stretch of the sine wave, keeping
// phase continuous across windows.
func (s *ToneSource) ReadWindow(dst []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("tone source not started")
	}
	if s.stopped {
		return fmt.Errorf("tone source stopped")
	}
	if s.windows > 0 && s.emitted >= s.windows {
		return io.EOF
	}

	step := 2.0 * math.Pi * s.freq / float64(s.sampleRate)
	for i := range dst {
		dst[i] = s.amplitude * math.Sin(s.phase)
		s.phase += step
	}
	// Keep the phase bounded over long sessions
	s.phase = math.Mod(s.phase, 2.0*math.Pi)

	s.emitted++
	return nil
}

// Stop marks the source stopped. Safe to call more than once.
func (s *ToneSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

// SampleRate reports the synthesized sample rate
func (s *ToneSource) SampleRate() int {
	return s.sampleRate
}
