package transport

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

type fakeVoice struct {
	offset  float64
	rate    float64
	stopped bool
	onEnd   func()
}

func (v *fakeVoice) SetRate(rate float64) { v.rate = rate }
func (v *fakeVoice) Stop()                { v.stopped = true; v.onEnd = nil }

// end simulates the voice reaching the end of the buffer on its own.
func (v *fakeVoice) end() {
	if v.onEnd != nil {
		v.onEnd()
	}
}

type fakeDeck struct {
	now     float64
	voices  []*fakeVoice
	resumes int
	closed  bool
	bindErr error
}

func (d *fakeDeck) Now() float64 { return d.now }
func (d *fakeDeck) Resume() error {
	d.resumes++
	return nil
}
func (d *fakeDeck) Close() error { d.closed = true; return nil }

func (d *fakeDeck) Bind(offset, rate float64, onEnd func()) (Voice, error) {
	if d.bindErr != nil {
		return nil, d.bindErr
	}
	v := &fakeVoice{offset: offset, rate: rate, onEnd: onEnd}
	d.voices = append(d.voices, v)
	return v, nil
}

func (d *fakeDeck) last() *fakeVoice { return d.voices[len(d.voices)-1] }

type fakeScheduler struct {
	starts, stops int
	running       bool
}

func (s *fakeScheduler) Start() { s.starts++; s.running = true }
func (s *fakeScheduler) Stop()  { s.stops++; s.running = false }

func newLoaded(t *testing.T, duration float64) (*Machine, *fakeDeck, *fakeScheduler) {
	t.Helper()
	m := New(nil)
	s := &fakeScheduler{}
	m.SetScheduler(s)
	d := &fakeDeck{}
	if err := m.Load(d, duration); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return m, d, s
}

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestMachine_StartsEmpty(t *testing.T) {
	t.Parallel()

	m := New(nil)
	if m.Phase() != Empty {
		t.Errorf("Phase() = %v, want empty", m.Phase())
	}
	if m.Rate() != 1 {
		t.Errorf("Rate() = %v, want 1", m.Rate())
	}
	// Operations on an empty machine are silent no-ops.
	if err := m.Play(); err != nil {
		t.Errorf("Play() on empty = %v", err)
	}
	if err := m.Seek(4); err != nil {
		t.Errorf("Seek() on empty = %v", err)
	}
	m.Pause()
	m.Stop()
	m.SetRate(2)
	if m.Phase() != Empty || m.Position() != 0 || m.Rate() != 1 {
		t.Errorf("empty machine mutated: %+v", m.State())
	}
}

func TestMachine_LoadInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		deck     Deck
		duration float64
	}{
		{"nil deck", nil, 10},
		{"zero duration", &fakeDeck{}, 0},
		{"negative duration", &fakeDeck{}, -1},
		{"nan duration", &fakeDeck{}, math.NaN()},
		{"inf duration", &fakeDeck{}, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, old, _ := newLoaded(t, 10)
			err := m.Load(tt.deck, tt.duration)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("Load() error = %v, want ErrDecode", err)
			}
			if m.Phase() != Empty {
				t.Errorf("Phase() = %v, want empty", m.Phase())
			}
			if !old.closed {
				t.Error("previous deck was not closed")
			}
		})
	}
}

func TestMachine_LoadResetsOffsetAndRate(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 10)
	m.SetRate(1.5)
	_ = m.Seek(4)
	_ = m.Play()

	d2 := &fakeDeck{now: 7}
	if err := m.Load(d2, 20); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !d.closed {
		t.Error("old deck not closed on reload")
	}
	if !d.last().stopped {
		t.Error("old voice not stopped on reload")
	}
	st := m.State()
	if m.Phase() != Stopped || st.Offset != 0 || st.Rate != 1 || st.Duration != 20 {
		t.Errorf("state after reload = %+v", st)
	}
}

func TestMachine_PlayBindsAndStartsScheduler(t *testing.T) {
	t.Parallel()

	m, d, s := newLoaded(t, 10)
	d.now = 2
	if err := m.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if m.Phase() != Playing {
		t.Fatalf("Phase() = %v, want playing", m.Phase())
	}
	if len(d.voices) != 1 || d.voices[0].offset != 0 || d.voices[0].rate != 1 {
		t.Errorf("voices = %+v", d.voices)
	}
	if d.resumes != 1 {
		t.Errorf("resumes = %d, want 1", d.resumes)
	}
	if !s.running {
		t.Error("scheduler not started")
	}
	if st := m.State(); st.Anchor != 2 {
		t.Errorf("Anchor = %v, want 2", st.Anchor)
	}

	// Playing again is a no-op.
	if err := m.Play(); err != nil {
		t.Fatal(err)
	}
	if len(d.voices) != 1 {
		t.Errorf("second Play bound %d voices", len(d.voices))
	}
}

func TestMachine_PlayWrapsOffset(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 10)
	_ = m.Seek(10)
	if err := m.Play(); err != nil {
		t.Fatal(err)
	}
	if got := d.last().offset; got != 0 {
		t.Errorf("bound offset = %v, want 0", got)
	}
	if got := m.Position(); got != 0 {
		t.Errorf("Position() = %v, want 0", got)
	}
}

func TestMachine_PlayBindFailure(t *testing.T) {
	t.Parallel()

	m, d, s := newLoaded(t, 10)
	d.bindErr = errors.New("output closed")
	if err := m.Play(); err == nil {
		t.Fatal("Play() error = nil, want bind error")
	}
	if m.Phase() != Stopped || s.running {
		t.Errorf("Phase() = %v, scheduler running = %v", m.Phase(), s.running)
	}
}

func TestMachine_PositionMonotonic(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 100)
	m.SetRate(1.5)
	_ = m.Play()
	d.now = 3
	p1 := m.Position()
	d.now = 7.5
	p2 := m.Position()
	if !near(p2-p1, 4.5*1.5) {
		t.Errorf("delta = %v, want %v", p2-p1, 4.5*1.5)
	}
	d.now = 1000
	if got := m.Position(); got != 100 {
		t.Errorf("Position() past end = %v, want 100", got)
	}
}

func TestMachine_PauseResumeRoundTrip(t *testing.T) {
	t.Parallel()

	direct, dd, _ := newLoaded(t, 60)
	_ = direct.Play()
	dd.now = 5
	want := direct.Position()

	m, d, s := newLoaded(t, 60)
	_ = m.Play()
	d.now = 5
	m.Pause()
	if s.running {
		t.Error("scheduler still running after pause")
	}
	if !d.last().stopped {
		t.Error("voice not stopped on pause")
	}
	_ = m.Play()
	if got := m.Position(); !near(got, want) {
		t.Errorf("Position() after round trip = %v, want %v", got, want)
	}
	if got := d.last().offset; !near(got, 5) {
		t.Errorf("resumed voice offset = %v, want 5", got)
	}
}

func TestMachine_PausedPositionIsExact(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 60)
	_ = m.Play()
	d.now = 2.5
	m.Pause()
	off := m.State().Offset
	d.now = 40
	if got := m.Position(); got != off {
		t.Errorf("Position() = %v, want offset %v", got, off)
	}
}

func TestMachine_SetRatePreservesPosition(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 60)
	_ = m.Play()
	d.now = 2
	before := m.Position()
	m.SetRate(2)
	if after := m.Position(); !near(after, before) {
		t.Errorf("Position() after SetRate = %v, want %v", after, before)
	}
	if got := d.last().rate; got != 2 {
		t.Errorf("voice rate = %v, want 2", got)
	}
	if len(d.voices) != 1 {
		t.Errorf("SetRate rebound the voice (%d voices)", len(d.voices))
	}
	d.now = 3
	if got := m.Position(); !near(got, 4) {
		t.Errorf("Position() = %v, want 4", got)
	}
}

func TestMachine_SetRateInvalid(t *testing.T) {
	t.Parallel()

	m, _, _ := newLoaded(t, 60)
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		m.SetRate(r)
		if m.Rate() != 1 {
			t.Errorf("SetRate(%v) changed rate to %v", r, m.Rate())
		}
	}
}

func TestMachine_SetRateWhileStopped(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 60)
	_ = m.Seek(3)
	m.SetRate(0.5)
	if got := m.Position(); got != 3 {
		t.Errorf("Position() = %v, want 3", got)
	}
	_ = m.Play()
	if got := d.last().rate; got != 0.5 {
		t.Errorf("voice rate = %v, want 0.5", got)
	}
}

func TestMachine_SeekClamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target, want float64
	}{
		{-5, 0},
		{110, 10},
		{4.25, 4.25},
	}
	for _, tt := range tests {
		m, _, _ := newLoaded(t, 10)
		if err := m.Seek(tt.target); err != nil {
			t.Fatal(err)
		}
		if got := m.Position(); got != tt.want {
			t.Errorf("Seek(%v) -> Position() = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestMachine_SeekWhilePlayingRestartsVoice(t *testing.T) {
	t.Parallel()

	m, d, s := newLoaded(t, 30)
	_ = m.Play()
	d.now = 4
	first := d.last()
	if err := m.Seek(12); err != nil {
		t.Fatal(err)
	}
	if !first.stopped {
		t.Error("old voice not stopped")
	}
	if len(d.voices) != 2 || d.last().offset != 12 {
		t.Fatalf("voices = %+v", d.voices)
	}
	if !s.running {
		t.Error("scheduler stopped by seek")
	}
	d.now = 5
	if got := m.Position(); !near(got, 13) {
		t.Errorf("Position() = %v, want 13", got)
	}
}

func TestMachine_StopResetsToZero(t *testing.T) {
	t.Parallel()

	setups := map[string]func(m *Machine, d *fakeDeck){
		"stopped": func(m *Machine, d *fakeDeck) { _ = m.Seek(3) },
		"playing": func(m *Machine, d *fakeDeck) { _ = m.Play(); d.now = 4 },
		"paused":  func(m *Machine, d *fakeDeck) { _ = m.Play(); d.now = 4; m.Pause() },
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, d, s := newLoaded(t, 10)
			setup(m, d)
			m.Stop()
			if got := m.Position(); got != 0 {
				t.Errorf("Position() = %v, want 0", got)
			}
			if m.Phase() != Stopped || s.running {
				t.Errorf("Phase() = %v, scheduler running = %v", m.Phase(), s.running)
			}
			for _, v := range d.voices {
				if !v.stopped {
					t.Error("voice left running")
				}
			}
		})
	}
}

func TestMachine_NaturalEnd(t *testing.T) {
	t.Parallel()

	m, d, s := newLoaded(t, 10)
	_ = m.Play()
	d.now = 10
	d.last().end()

	gen := <-m.Ends()
	if !m.HandleNaturalEnd(gen) {
		t.Fatal("HandleNaturalEnd() = false for active voice")
	}
	if m.Phase() != Stopped || m.Position() != 0 || s.running {
		t.Errorf("after natural end: phase %v, position %v, scheduler %v", m.Phase(), m.Position(), s.running)
	}
}

func TestMachine_StaleNaturalEndIgnored(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 10)
	_ = m.Play()
	old := d.last()
	// The old voice finishes while a seek is replacing it.
	d.now = 9.9
	old.end()
	_ = m.Seek(2)

	gen := <-m.Ends()
	if m.HandleNaturalEnd(gen) {
		t.Fatal("stale natural end was honoured")
	}
	if m.Phase() != Playing {
		t.Errorf("Phase() = %v, want playing", m.Phase())
	}
	if d.last().stopped {
		t.Error("active voice was stopped by a stale callback")
	}
}

func TestMachine_StoppedVoiceNeverNotifies(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 10)
	_ = m.Play()
	v := d.last()
	m.Pause()
	v.end()
	select {
	case gen := <-m.Ends():
		t.Errorf("received end for gen %d from a stopped voice", gen)
	default:
	}
}

func TestMachine_Toggle(t *testing.T) {
	t.Parallel()

	m, _, _ := newLoaded(t, 10)
	if err := m.Toggle(); err != nil || !m.Playing() {
		t.Fatalf("Toggle() from stopped: err=%v playing=%v", err, m.Playing())
	}
	if err := m.Toggle(); err != nil || m.Playing() {
		t.Fatalf("Toggle() from playing: err=%v playing=%v", err, m.Playing())
	}
}

func TestMachine_ResetClosesDeck(t *testing.T) {
	t.Parallel()

	m, d, s := newLoaded(t, 10)
	_ = m.Play()
	m.Reset()
	if !d.closed || !d.last().stopped || s.running {
		t.Errorf("reset left resources: closed=%v stopped=%v scheduler=%v", d.closed, d.last().stopped, s.running)
	}
	if m.Phase() != Empty {
		t.Errorf("Phase() = %v, want empty", m.Phase())
	}
}

// Load a 10 s buffer, play at t=0, double the rate at t=3 and pause at t=4.
func TestMachine_RateChangeThenPauseScenario(t *testing.T) {
	t.Parallel()

	m, d, _ := newLoaded(t, 10)
	_ = m.Play()
	d.now = 3
	m.SetRate(2)
	d.now = 4
	m.Pause()
	if got := m.State().Offset; !near(got, 5) {
		t.Errorf("Offset after pause = %v, want 5", got)
	}
}
