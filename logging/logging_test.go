package logging

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if DebugLevel.String() != "DEBUG" || ErrorLevel.String() != "ERROR" {
		t.Fatalf("Level strings wrong: %s %s", DebugLevel, ErrorLevel)
	}
	if Level(42).String() != "UNKNOWN" {
		t.Fatalf("Level(42) = %s, want UNKNOWN", Level(42))
	}
}

func TestSetGlobalLogger_NilFallsBackToNoOp(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Fatalf("global logger = %T, want *NoOpLogger", GetGlobalLogger())
	}
	// Package-level funcs must route through the replacement without panic
	Debug("x")
	Info("x", Fields{"k": "v"})
	Warn("x")
	Error(nil, "x")
}
