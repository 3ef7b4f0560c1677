package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// Tap is a streamer wrapper that copies the mono mix of everything passing
// through it into a ring buffer, so the analyser can read the most recent
// audio without touching the audio goroutine's buffers.
type Tap struct {
	s    beep.Streamer
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

// NewTap wraps a streamer with a ring buffer of the given size.
func NewTap(s beep.Streamer, bufSize int) *Tap {
	return &Tap{
		s:    s,
		buf:  make([]float64, bufSize),
		size: bufSize,
	}
}

// Stream passes audio through while capturing a mono mix into the ring buffer.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := range n {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
	return n, ok
}

// Err returns the underlying streamer's error.
func (t *Tap) Err() error {
	return t.s.Err()
}

// Snapshot fills dst with the last len(dst) samples in chronological order.
// Requests longer than the ring are left-padded with silence.
func (t *Tap) Snapshot(dst []float64) {
	n := min(len(dst), t.size)
	pad := len(dst) - n
	clear(dst[:pad])
	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := range n {
		dst[pad+i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()
}
