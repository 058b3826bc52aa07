// Package clients holds HTTP clients for the collaborating backend API.
// Every endpoint wraps its payload in a `{data | error, code}` JSON
// envelope.
package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vocality-nexus/vocal-mirror/logging"
)

// HTTP is the shared client for backend calls
type HTTP struct {
	c      *http.Client
	logger logging.Logger
}

// NewHTTP creates a client with a 60s overall timeout
func NewHTTP() *HTTP {
	return &HTTP{
		c: &http.Client{Timeout: 60 * time.Second},
		logger: logging.WithFields(logging.Fields{
			"component": "backend_client",
		}),
	}
}

// envelope mirrors the backend response shape
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  int             `json:"code"`
}

// decodeEnvelope unpacks a backend response into out, surfacing envelope
// errors and non-2xx statuses.
func decodeEnvelope(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend %s: %s", resp.Status, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("envelope decode: %w", err)
	}
	if env.Error != "" {
		return fmt.Errorf("backend error (code %d): %s", env.Code, env.Error)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("backend response has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("data decode: %w", err)
	}
	return nil
}
