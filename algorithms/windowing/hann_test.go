package windowing

import (
	"math"
	"testing"
)

func TestHann(t *testing.T) {
	w := Hann(512)
	if len(w) != 512 {
		t.Fatalf("len = %d, want 512", len(w))
	}
	if w[0] != 0 || w[511] > 1e-12 {
		t.Fatalf("endpoints = %v, %v, want 0", w[0], w[511])
	}
	// Symmetric window peaks at the midpoint
	if math.Abs(w[255]-w[256]) > 1e-9 {
		t.Fatalf("window not symmetric around center: %v vs %v", w[255], w[256])
	}
	for i, v := range w {
		if v < 0 || v > 1 {
			t.Fatalf("w[%d] = %v out of [0,1]", i, v)
		}
	}
}

func TestHann_SinglePoint(t *testing.T) {
	if w := Hann(1); len(w) != 1 || w[0] != 1.0 {
		t.Fatalf("Hann(1) = %v, want [1]", w)
	}
}

func TestApply(t *testing.T) {
	signal := []float64{1, 2, 3}
	window := []float64{0.5, 0.5, 0.5}
	got := Apply(signal, window)
	want := []float64{0.5, 1.0, 1.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Apply = %v, want %v", got, want)
		}
	}
	if signal[0] != 1 {
		t.Fatal("Apply must not mutate the input signal")
	}
	if Apply(signal, []float64{1}) != nil {
		t.Fatal("mismatched lengths must return nil")
	}
}
