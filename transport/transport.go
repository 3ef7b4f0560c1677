// Package transport owns play/pause/stop/seek/rate transitions for a single
// loaded audio buffer. It is the only authority on whether audio is
// currently advancing.
//
// A Machine is not safe for concurrent use: every method must be called from
// the host's single logical thread (a UI event handler or a frame callback).
// Natural-end notifications that originate on the audio goroutine are posted
// to Ends and must be fed back through HandleNaturalEnd on that thread.
package transport

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"mediadeck/clock"
)

// Phase is the coarse state of the machine.
type Phase int

const (
	Empty Phase = iota
	Stopped
	Playing
)

func (p Phase) String() string {
	switch p {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	default:
		return "empty"
	}
}

// State is the transport record: whether a buffer is loaded plus the clock
// model anchoring its virtual position.
type State struct {
	Loaded bool
	clock.Model
}

// Deck is a loaded buffer wired into the output graph. Its gain and analysis
// chain lives as long as the load; voices are created per play.
type Deck interface {
	// Now reads the hardware clock in seconds.
	Now() float64
	// Bind starts a fresh voice at offset seconds. onEnd runs when the voice
	// reaches the end of the buffer on its own.
	Bind(offset, rate float64, onEnd func()) (Voice, error)
	// Resume wakes a suspended output context.
	Resume() error
	Close() error
}

// Voice is one live playback node. A voice cannot be repositioned; seeking
// discards it and binds a new one.
type Voice interface {
	SetRate(rate float64)
	// Stop silences the voice and drops its end callback. Stopping a voice
	// that already ended is a no-op.
	Stop()
}

// Scheduler is the render loop driven by the machine.
type Scheduler interface {
	Start()
	Stop()
}

type noopScheduler struct{}

func (noopScheduler) Start() {}
func (noopScheduler) Stop()  {}

// Machine is the transport state machine.
type Machine struct {
	state State
	deck  Deck
	voice Voice
	gen   uint64
	sched Scheduler
	ends  chan uint64
	log   *slog.Logger
}

// New creates an Empty machine. A nil logger discards output.
func New(log *slog.Logger) *Machine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Machine{
		state: State{Model: clock.New(0)},
		sched: noopScheduler{},
		ends:  make(chan uint64, 8),
		log:   log,
	}
}

// SetScheduler attaches the render loop started on play and stopped on
// pause, stop and reset.
func (m *Machine) SetScheduler(s Scheduler) {
	if s == nil {
		s = noopScheduler{}
	}
	m.sched = s
}

// Ends delivers the generation of every voice that finished by itself.
func (m *Machine) Ends() <-chan uint64 { return m.ends }

// State returns a copy of the transport record.
func (m *Machine) State() State { return m.state }

// Phase reports Empty, Stopped or Playing.
func (m *Machine) Phase() Phase {
	switch {
	case !m.state.Loaded:
		return Empty
	case m.state.Playing:
		return Playing
	default:
		return Stopped
	}
}

func (m *Machine) Loaded() bool       { return m.state.Loaded }
func (m *Machine) Playing() bool      { return m.state.Playing }
func (m *Machine) Duration() float64  { return m.state.Duration }
func (m *Machine) Rate() float64      { return m.state.Rate }
func (m *Machine) Generation() uint64 { return m.gen }

// Position returns the current virtual position in seconds.
func (m *Machine) Position() float64 {
	if m.deck == nil {
		return m.state.Offset
	}
	return m.state.PositionAt(m.deck.Now())
}

// Load installs a freshly decoded deck and moves to Stopped at position zero
// with the default rate. A missing deck or a non-positive duration is a
// decode failure: the machine is reset to Empty.
func (m *Machine) Load(deck Deck, duration float64) error {
	if deck == nil || !(duration > 0) || math.IsInf(duration, 0) {
		m.Reset()
		return fmt.Errorf("%w: invalid buffer duration %v", ErrDecode, duration)
	}
	if m.deck != nil && m.deck != deck {
		m.Reset()
	}
	m.detachVoice()
	m.sched.Stop()
	m.deck = deck
	m.state = State{Loaded: true, Model: clock.New(duration)}
	m.state.Anchor = deck.Now()
	m.log.Debug("transport loaded", "duration", duration)
	return nil
}

// Reset tears down any voice and deck and returns to Empty with every field
// at its default.
func (m *Machine) Reset() {
	m.detachVoice()
	m.sched.Stop()
	if m.deck != nil {
		if err := m.deck.Close(); err != nil {
			m.log.Warn("close deck", "err", err)
		}
		m.deck = nil
	}
	m.state = State{Model: clock.New(0)}
	m.log.Debug("transport reset")
}

// Play starts a new voice at the stored offset (folded into the buffer
// length) and starts the render loop.
func (m *Machine) Play() error {
	if !m.state.Loaded {
		m.log.Debug("play ignored", "err", ErrInvalidTransition, "phase", m.Phase())
		return nil
	}
	if m.state.Playing {
		return nil
	}
	if err := m.deck.Resume(); err != nil {
		return fmt.Errorf("resume output: %w", err)
	}
	if err := m.start(); err != nil {
		return err
	}
	m.sched.Start()
	return nil
}

// Pause snapshots the elapsed position into the offset, discards the voice
// and stops the render loop.
func (m *Machine) Pause() {
	if !m.state.Playing {
		m.log.Debug("pause ignored", "err", ErrInvalidTransition, "phase", m.Phase())
		return
	}
	m.state.Model = m.state.Reanchor(m.deck.Now())
	m.state.Playing = false
	m.detachVoice()
	m.sched.Stop()
	m.log.Debug("transport paused", "offset", m.state.Offset)
}

// Toggle is the play/pause control.
func (m *Machine) Toggle() error {
	if m.state.Playing {
		m.Pause()
		return nil
	}
	return m.Play()
}

// Stop discards any voice, stops the render loop and rewinds to zero.
func (m *Machine) Stop() {
	if !m.state.Loaded {
		m.log.Debug("stop ignored", "err", ErrInvalidTransition)
		return
	}
	m.detachVoice()
	m.sched.Stop()
	m.state.Playing = false
	m.state.Offset = 0
	m.state.Anchor = m.deck.Now()
	m.log.Debug("transport stopped")
}

// Seek moves to target seconds, clamped to the buffer. While playing the
// current voice is replaced by one starting at the new offset; otherwise
// the offset takes effect on the next Play.
func (m *Machine) Seek(target float64) error {
	if !m.state.Loaded {
		m.log.Debug("seek ignored", "err", ErrInvalidTransition)
		return nil
	}
	target = clock.Clamp(target, 0, m.state.Duration)
	if !m.state.Playing {
		m.state.Offset = target
		return nil
	}
	m.detachVoice()
	m.state.Offset = target
	if err := m.start(); err != nil {
		m.state.Playing = false
		m.sched.Stop()
		return err
	}
	return nil
}

// SetRate changes the playback speed. The position is re-anchored under the
// old rate first; a live voice is retuned in place.
func (m *Machine) SetRate(rate float64) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		m.log.Debug("rate ignored", "err", ErrInvalidTransition, "rate", rate)
		return
	}
	if !m.state.Loaded {
		m.log.Debug("rate ignored", "err", ErrInvalidTransition)
		return
	}
	m.state.Model = m.state.Reanchor(m.deck.Now())
	m.state.Rate = rate
	if m.state.Playing && m.voice != nil {
		m.voice.SetRate(rate)
	}
}

// HandleNaturalEnd acts on a voice end notification. It reports whether the
// notification belonged to the active voice; stale ones are discarded.
func (m *Machine) HandleNaturalEnd(gen uint64) bool {
	if gen != m.gen || m.voice == nil || !m.state.Playing {
		m.log.Debug("natural end discarded", "err", ErrStaleCallback, "gen", gen, "active", m.gen)
		return false
	}
	m.Stop()
	return true
}

// start binds a voice at the folded offset and anchors the clock to now.
func (m *Machine) start() error {
	offset := m.state.Wrap()
	gen := m.gen + 1
	now := m.deck.Now()
	v, err := m.deck.Bind(offset, m.state.Rate, m.notifyEnd(gen))
	if err != nil {
		return fmt.Errorf("bind voice: %w", err)
	}
	m.gen = gen
	m.voice = v
	m.state.Offset = offset
	m.state.Anchor = now
	m.state.Playing = true
	m.log.Debug("voice bound", "gen", gen, "offset", offset, "rate", m.state.Rate)
	return nil
}

func (m *Machine) notifyEnd(gen uint64) func() {
	return func() {
		select {
		case m.ends <- gen:
		default:
		}
	}
}

// detachVoice stops the live voice, if any, and retires its generation.
func (m *Machine) detachVoice() {
	if m.voice == nil {
		return
	}
	m.voice.Stop()
	m.voice = nil
	m.gen++
}
