package mirror

import "context"

// Source delivers fixed-size PCM windows from a live audio input.
// Implementations wrap a capture backend (file, synthesized tone, device)
// so the extraction pipeline stays backend-agnostic.
type Source interface {
	// Start acquires exclusive access to the underlying input.
	// A permission or absence failure is reported as an error and leaves
	// the source unopened.
	Start(ctx context.Context) error

	// ReadWindow fills dst with the next PCM window, blocking until a full
	// window is available. It returns io.EOF when the input is exhausted
	// and a non-nil error after Stop.
	ReadWindow(dst []float64) error

	// Stop releases the input synchronously and unblocks a pending
	// ReadWindow. It must be safe to call more than once.
	Stop() error

	// SampleRate reports the PCM sample rate in Hz.
	SampleRate() int
}
