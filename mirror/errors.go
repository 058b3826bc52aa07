package mirror

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable reports that the audio input could not be acquired,
// because permission was denied or no device exists. The session stays Idle;
// the caller may retry.
var ErrDeviceUnavailable = errors.New("audio input unavailable")

// ErrSessionActive reports a Start on a session that is already capturing
var ErrSessionActive = errors.New("capture session already active")

// ErrSessionStopped reports a Start on a stopped session. Stopped is
// terminal: construct a new session to capture again.
var ErrSessionStopped = errors.New("capture session stopped")

// ExtractionFault wraps an internal feature-extraction failure. It is logged
// and transitions the session to Stopped; it is never retried automatically.
type ExtractionFault struct {
	Err error
}

func (e *ExtractionFault) Error() string {
	return fmt.Sprintf("feature extraction fault: %v", e.Err)
}

func (e *ExtractionFault) Unwrap() error {
	return e.Err
}
