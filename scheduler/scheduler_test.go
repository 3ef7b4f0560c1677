package scheduler

import "testing"

type fakeHost struct {
	next      FrameID
	pending   map[FrameID]func()
	cancelled []FrameID
}

func newFakeHost() *fakeHost {
	return &fakeHost{pending: make(map[FrameID]func())}
}

func (h *fakeHost) RequestFrame(fn func()) FrameID {
	h.next++
	h.pending[h.next] = fn
	return h.next
}

func (h *fakeHost) CancelFrame(id FrameID) {
	delete(h.pending, id)
	h.cancelled = append(h.cancelled, id)
}

// frame runs every callback pending at the start of the frame.
func (h *fakeHost) frame() {
	due := h.pending
	h.pending = make(map[FrameID]func())
	for _, fn := range due {
		fn()
	}
}

type fakeTransport struct {
	playing  bool
	position float64
	duration float64
}

func (t *fakeTransport) Playing() bool     { return t.playing }
func (t *fakeTransport) Position() float64 { return t.position }
func (t *fakeTransport) Duration() float64 { return t.duration }

type fakeRenderer struct {
	renders, clears int
}

func (r *fakeRenderer) Render()    { r.renders++ }
func (r *fakeRenderer) ClearLive() { r.clears++ }

func setup() (*Scheduler, *fakeHost, *fakeTransport, *fakeRenderer) {
	h := newFakeHost()
	tr := &fakeTransport{duration: 125}
	r := &fakeRenderer{}
	return New(h, tr, r, nil), h, tr, r
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	t.Parallel()

	s, h, _, _ := setup()
	s.Start()
	first := s.Handle()
	s.Start()
	if s.Handle() != first || len(h.pending) != 1 {
		t.Errorf("second Start registered again: handle %d, pending %d", s.Handle(), len(h.pending))
	}
}

func TestScheduler_LoopsWhilePlaying(t *testing.T) {
	t.Parallel()

	s, h, tr, r := setup()
	tr.playing = true
	s.Start()
	for range 3 {
		tr.position += 0.5
		h.frame()
	}
	if r.renders != 3 || s.Frames() != 3 {
		t.Errorf("renders = %d, frames = %d, want 3", r.renders, s.Frames())
	}
	if !s.Active() {
		t.Error("loop did not re-register")
	}
	if got := s.Readout(); got.Position != 1.5 || got.Seek != 150 || got.Label != "00:01 / 02:05" {
		t.Errorf("Readout() = %+v", got)
	}
}

func TestScheduler_FinalCleanupTick(t *testing.T) {
	t.Parallel()

	s, h, tr, r := setup()
	tr.playing = true
	s.Start()
	h.frame()

	tr.playing = false
	tr.position = 0
	h.frame()
	if s.Active() {
		t.Error("loop re-registered after transport stopped")
	}
	if r.clears != 1 || r.renders != 1 {
		t.Errorf("renders = %d, clears = %d", r.renders, r.clears)
	}
	if len(h.pending) != 0 {
		t.Errorf("pending = %d, want 0", len(h.pending))
	}
}

func TestScheduler_StopCancels(t *testing.T) {
	t.Parallel()

	s, h, tr, r := setup()
	tr.playing = true
	s.Start()
	id := s.Handle()
	s.Stop()
	if s.Active() {
		t.Error("Active() after Stop")
	}
	if len(h.cancelled) != 1 || h.cancelled[0] != id {
		t.Errorf("cancelled = %v, want [%d]", h.cancelled, id)
	}
	if r.clears != 1 {
		t.Errorf("clears = %d, want 1", r.clears)
	}
	h.frame()
	if r.renders != 0 {
		t.Error("cancelled frame rendered")
	}

	// Stopping an idle loop only clears.
	s.Stop()
	if len(h.cancelled) != 1 || r.clears != 2 {
		t.Errorf("idle Stop: cancelled %v, clears %d", h.cancelled, r.clears)
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{-3, "00:00"},
		{59.99, "00:59"},
		{61, "01:01"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
