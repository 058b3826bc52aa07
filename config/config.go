// Package config loads the engine configuration from YAML with typed
// defaults for every section.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Audio configures capture and analysis parameters
type Audio struct {
	SampleRate int `yaml:"sample_rate"`
	WindowSize int `yaml:"window_size"`
}

// Session configures the capture session buffers
type Session struct {
	FrameBuffer int `yaml:"frame_buffer"`
	VizCapacity int `yaml:"viz_capacity"`
}

// Service is one backend collaborator endpoint
type Service struct {
	URL string `yaml:"url"`
}

// Services lists the backend collaborators
type Services struct {
	Analyze Service `yaml:"analyze"`
	Report  Service `yaml:"report"`
}

// Feed configures the live websocket feed
type Feed struct {
	Listen string `yaml:"listen"`
}

// Logging configures log output
type Logging struct {
	Level string `yaml:"level"`
}

// Root is the full engine configuration
type Root struct {
	Logging  Logging  `yaml:"logging"`
	Audio    Audio    `yaml:"audio"`
	Session  Session  `yaml:"session"`
	Services Services `yaml:"services"`
	Feed     Feed     `yaml:"feed"`
}

// Default returns the built-in configuration
func Default() *Root {
	return &Root{
		Logging: Logging{Level: "info"},
		Audio: Audio{
			SampleRate: 44100,
			WindowSize: 2048,
		},
		Session: Session{
			FrameBuffer: 8,
			VizCapacity: 64,
		},
		Feed: Feed{Listen: ""},
	}
}

// Load reads configuration from path, overlaying the defaults. An empty
// path falls back to $VOCAL_MIRROR_CONFIG, then the built-in defaults.
func Load(path string) (*Root, error) {
	if path == "" {
		path = os.Getenv("VOCAL_MIRROR_CONFIG")
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
