// Package capture provides mirror.Source implementations: a RIFF/WAVE file
// reader standing in for the live device path, and a synthesized tone for
// demos and tests.
package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vocality-nexus/vocal-mirror/logging"
)

// WAVSource streams fixed-size mono PCM windows from a 16-bit PCM WAV file.
// Multi-channel input is averaged down to mono. The final partial window is
// zero-padded so every emitted window has the configured size.
type WAVSource struct {
	path       string
	windowSize int
	logger     logging.Logger

	mu            sync.Mutex
	file          *os.File
	reader        *bufio.Reader
	sampleRate    int
	channels      int
	dataRemaining int64
	started       bool
	exhausted     bool
}

// NewWAVSource creates a source for the given file path
func NewWAVSource(path string, windowSize int) *WAVSource {
	return &WAVSource{
		path:       path,
		windowSize: windowSize,
		logger: logging.WithFields(logging.Fields{
			"component": "wav_source",
			"path":      path,
		}),
	}
}

// Start opens the file and parses the RIFF header. Open or parse failures
// leave the source unopened.
func (s *WAVSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("wav source already started")
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open wav: %w", err)
	}

	r := bufio.NewReader(f)
	sampleRate, channels, dataLen, err := parseWAVHeader(r)
	if err != nil {
		f.Close()
		return fmt.Errorf("parse wav header: %w", err)
	}

	s.file = f
	s.reader = r
	s.sampleRate = sampleRate
	s.channels = channels
	s.dataRemaining = dataLen
	s.started = true
	s.exhausted = false

	s.logger.Debug("wav opened", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"data_bytes":  dataLen,
	})
	return nil
}

// ReadWindow fills dst with the next mono window. Returns io.EOF once the
// data chunk is exhausted.
func (s *WAVSource) ReadWindow(dst []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.file == nil {
		return fmt.Errorf("wav source not started")
	}
	if s.exhausted {
		return io.EOF
	}

	bytesPerSample := 2 * s.channels
	filled := 0
	raw := make([]byte, bytesPerSample)

	for filled < len(dst) {
		if s.dataRemaining < int64(bytesPerSample) {
			break
		}
		if _, err := io.ReadFull(s.reader, raw); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return err
		}
		s.dataRemaining -= int64(bytesPerSample)

		// Average channels to mono, scale to [-1, 1]
		sum := 0.0
		for c := 0; c < s.channels; c++ {
			sample := int16(binary.LittleEndian.Uint16(raw[2*c:]))
			sum += float64(sample) / 32768.0
		}
		dst[filled] = sum / float64(s.channels)
		filled++
	}

	if filled == 0 {
		s.exhausted = true
		return io.EOF
	}
	for i := filled; i < len(dst); i++ {
		dst[i] = 0.0
	}
	if filled < len(dst) {
		s.exhausted = true
	}
	return nil
}

// Stop closes the file. Safe to call more than once.
func (s *WAVSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.reader = nil
	return err
}

// SampleRate reports the file's PCM sample rate, 0 before Start
func (s *WAVSource) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// parseWAVHeader reads RIFF/WAVE chunks up to the start of the data chunk
// and returns (sampleRate, channels, dataLength).
func parseWAVHeader(r *bufio.Reader) (int, int, int64, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0, 0, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		sampleRate int
		channels   int
		haveFmt    bool
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return 0, 0, 0, fmt.Errorf("chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return 0, 0, 0, fmt.Errorf("fmt chunk too short: %d", size)
			}
			fmtData := make([]byte, size)
			if _, err := io.ReadFull(r, fmtData); err != nil {
				return 0, 0, 0, fmt.Errorf("fmt chunk: %w", err)
			}
			audioFormat := binary.LittleEndian.Uint16(fmtData[0:2])
			channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			bitsPerSample := binary.LittleEndian.Uint16(fmtData[14:16])

			if audioFormat != 1 {
				return 0, 0, 0, fmt.Errorf("unsupported wav encoding %d (want PCM)", audioFormat)
			}
			if bitsPerSample != 16 {
				return 0, 0, 0, fmt.Errorf("unsupported bit depth %d (want 16)", bitsPerSample)
			}
			if channels <= 0 || sampleRate <= 0 {
				return 0, 0, 0, fmt.Errorf("invalid fmt chunk: channels=%d rate=%d", channels, sampleRate)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return 0, 0, 0, fmt.Errorf("data chunk before fmt chunk")
			}
			return sampleRate, channels, size, nil

		default:
			// Skip unknown chunks (LIST, fact, ...), padded to even size
			if size%2 == 1 {
				size++
			}
			if _, err := io.CopyN(io.Discard, r, size); err != nil {
				return 0, 0, 0, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
	}
}
