package mirror

import "sync"

// DefaultVizCapacity is the history depth used for pitch-curve and
// spectrogram rendering.
const DefaultVizCapacity = 64

// VisualizationBuffer is a fixed-capacity ring of recent feature frames.
// The session pump is the sole writer; readers take immutable snapshots,
// so rendering never blocks feature delivery.
type VisualizationBuffer struct {
	mu     sync.RWMutex
	frames []FeatureFrame
	head   int // next write position
	count  int
}

// NewVisualizationBuffer creates a buffer with the given capacity.
// Non-positive capacities fall back to DefaultVizCapacity.
func NewVisualizationBuffer(capacity int) *VisualizationBuffer {
	if capacity <= 0 {
		capacity = DefaultVizCapacity
	}
	return &VisualizationBuffer{
		frames: make([]FeatureFrame, capacity),
	}
}

// Push appends a frame, evicting the oldest when full
func (b *VisualizationBuffer) Push(f FeatureFrame) {
	b.mu.Lock()
	b.frames[b.head] = f
	b.head = (b.head + 1) % len(b.frames)
	if b.count < len(b.frames) {
		b.count++
	}
	b.mu.Unlock()
}

// Snapshot returns the buffered frames, oldest first. The returned slice is
// a copy and safe to hold across further pushes.
func (b *VisualizationBuffer) Snapshot() []FeatureFrame {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]FeatureFrame, b.count)
	start := (b.head - b.count + len(b.frames)) % len(b.frames)
	for i := 0; i < b.count; i++ {
		out[i] = b.frames[(start+i)%len(b.frames)]
	}
	return out
}

// Len returns the number of buffered frames
func (b *VisualizationBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap returns the buffer capacity
func (b *VisualizationBuffer) Cap() int {
	return len(b.frames)
}
