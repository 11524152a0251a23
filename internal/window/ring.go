// Package window provides a fixed-capacity ring buffer with FIFO eviction,
// backing the indicator engine's rolling windows.
package window

// Ring is a fixed-capacity float64 buffer ordered oldest to newest. Pushing
// onto a full ring evicts the oldest value. Not safe for concurrent use; the
// pipeline is single-threaded and the windows are owned by one run.
type Ring struct {
	buf   []float64
	start int // index of the oldest value
	n     int
}

// New creates a ring with the given capacity. Minimum capacity is 1.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Push appends v, evicting the oldest value when the ring is full.
func (r *Ring) Push(v float64) {
	r.buf[(r.start+r.n)%len(r.buf)] = v
	if r.n < len(r.buf) {
		r.n++
		return
	}
	r.start = (r.start + 1) % len(r.buf)
}

// Values returns the contents oldest to newest.
func (r *Ring) Values() []float64 {
	out := make([]float64, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Oldest returns the oldest value. Undefined on an empty ring.
func (r *Ring) Oldest() float64 {
	return r.buf[r.start]
}

// Latest returns the most recently pushed value. Undefined on an empty ring.
func (r *Ring) Latest() float64 {
	return r.buf[(r.start+r.n-1)%len(r.buf)]
}

// Len returns the current number of values in the ring.
func (r *Ring) Len() int { return r.n }

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Full reports whether the ring holds Cap() values.
func (r *Ring) Full() bool { return r.n == len(r.buf) }
