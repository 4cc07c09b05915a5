package pose

// History is the ordered frame sequence for one attempt. The gating phase
// owns it exclusively and discards it once the gating decision is made;
// the streaming phase never retains full history.
type History struct {
	frames []Frame
}

// NewHistory returns an empty history with room for n frames.
func NewHistory(n int) *History {
	return &History{frames: make([]Frame, 0, n)}
}

// Append adds a frame. Frames must be appended in capture order.
func (h *History) Append(f Frame) {
	h.frames = append(h.frames, f)
}

// Len returns the number of frames.
func (h *History) Len() int { return len(h.frames) }

// At returns the i-th frame. Panics on out-of-range, same as a slice.
func (h *History) At(i int) *Frame { return &h.frames[i] }

// Frames exposes the underlying slice for read-only iteration.
func (h *History) Frames() []Frame { return h.frames }

// Window is a bounded ring buffer of recent frames for the streaming
// phase. Oldest frames are evicted once capacity is reached.
type Window struct {
	frames   []Frame
	capacity int
	head     int // next write position
	size     int
}

// NewWindow creates a sliding window holding at most capacity frames.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 30
	}
	return &Window{
		frames:   make([]Frame, capacity),
		capacity: capacity,
	}
}

// Add stores a frame, overwriting the oldest when full.
func (w *Window) Add(f Frame) {
	w.frames[w.head] = f
	w.head = (w.head + 1) % w.capacity
	if w.size < w.capacity {
		w.size++
	}
}

// Len returns the number of frames currently held.
func (w *Window) Len() int { return w.size }

// Previous returns the frame n steps back from the most recent.
// Previous(1) is the latest frame; nil when n is out of range.
func (w *Window) Previous(n int) *Frame {
	if n < 1 || n > w.size {
		return nil
	}
	idx := (w.head - n + w.capacity) % w.capacity
	return &w.frames[idx]
}

// Reset discards all buffered frames.
func (w *Window) Reset() {
	w.head = 0
	w.size = 0
}
