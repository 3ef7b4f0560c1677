// Package player is the audio graph behind the transport: the hardware
// output context, decoded buffers, per-load gain and analysis chains, and
// the per-play voices that read from them.
//
//	[voice]* -> [bus] -> [Gain] -> [Tap] -> [master] -> [Speaker]
//
// The master stream counts every frame handed to the speaker; that count is
// the hardware clock the transport anchors to.
package player

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// ContextState mirrors the running state of the output context.
type ContextState int

const (
	Suspended ContextState = iota
	Running
	Closed
)

func (s ContextState) String() string {
	switch s {
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "suspended"
	}
}

// Engine is the hardware output context. It starts suspended; the first
// play resumes it.
type Engine struct {
	mu      sync.Mutex
	sr      beep.SampleRate
	master  *bus
	state   ContextState
	frames  atomic.Int64
	fftSize int
	device  bool
	log     *slog.Logger
}

// Options configures an Engine.
type Options struct {
	SampleRate beep.SampleRate
	FFTSize    int
	Log        *slog.Logger
}

// New initialises the speaker at the given sample rate and starts streaming
// the master bus into it.
func New(opts Options) (*Engine, error) {
	e := NewOffline(opts)
	if err := speaker.Init(e.sr, e.sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	e.device = true
	speaker.Play(e)
	return e, nil
}

// NewOffline builds an engine that is not connected to any device. Whoever
// pulls Stream acts as the hardware.
func NewOffline(opts Options) *Engine {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.FFTSize <= 0 {
		opts.FFTSize = DefaultFFTSize
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		sr:      opts.SampleRate,
		master:  &bus{},
		fftSize: opts.FFTSize,
		log:     opts.Log,
	}
}

// SampleRate returns the output rate.
func (e *Engine) SampleRate() beep.SampleRate { return e.sr }

// Now returns the hardware clock in seconds: frames rendered while running.
func (e *Engine) Now() float64 {
	return float64(e.frames.Load()) / float64(e.sr)
}

// State reports whether the context is running, suspended or closed.
func (e *Engine) State() ContextState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Resume restarts a suspended context. Resuming a running one is a no-op.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Closed:
		return ErrClosed
	case Suspended:
		e.state = Running
		e.log.Debug("output resumed")
	}
	return nil
}

// Suspend halts the clock and outputs silence until Resume.
func (e *Engine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Closed {
		return ErrClosed
	}
	e.state = Suspended
	return nil
}

// Stream renders the master bus. It is the speaker's only streamer.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		clear(samples)
		return len(samples), e.state != Closed
	}
	e.master.Stream(samples)
	e.frames.Add(int64(len(samples)))
	return len(samples), true
}

// Err implements beep.Streamer.
func (e *Engine) Err() error { return nil }

// Close detaches every deck and silences the output for good.
func (e *Engine) Close() {
	e.mu.Lock()
	e.state = Closed
	e.master.clear()
	e.mu.Unlock()
	if e.device {
		speaker.Clear()
	}
}

// Load decodes raw audio and wires a deck for it into the master bus.
func (e *Engine) Load(raw []byte) (*Deck, error) {
	buf, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if e.State() == Closed {
		return nil, ErrClosed
	}
	d := newDeck(e, buf)
	e.mu.Lock()
	e.master.add(d.tap)
	e.mu.Unlock()
	e.log.Info("audio loaded",
		"duration", d.Duration(),
		"rate", int(buf.Format().SampleRate),
		"channels", buf.Format().NumChannels)
	return d, nil
}

// bus sums a set of streamers. Members that report the end of their stream
// are dropped; the bus itself never ends.
type bus struct {
	streamers []beep.Streamer
	tmp       [][2]float64
}

func (b *bus) add(s beep.Streamer) { b.streamers = append(b.streamers, s) }

func (b *bus) remove(s beep.Streamer) {
	for i, m := range b.streamers {
		if m == s {
			b.streamers = append(b.streamers[:i], b.streamers[i+1:]...)
			return
		}
	}
}

func (b *bus) clear() { b.streamers = nil }

func (b *bus) len() int { return len(b.streamers) }

func (b *bus) Stream(samples [][2]float64) (int, bool) {
	clear(samples)
	if cap(b.tmp) < len(samples) {
		b.tmp = make([][2]float64, len(samples))
	}
	tmp := b.tmp[:len(samples)]
	kept := b.streamers[:0]
	for _, s := range b.streamers {
		n, ok := s.Stream(tmp)
		for i := range n {
			samples[i][0] += tmp[i][0]
			samples[i][1] += tmp[i][1]
		}
		if ok {
			kept = append(kept, s)
		}
	}
	clear(b.streamers[len(kept):])
	b.streamers = kept
	return len(samples), true
}

func (b *bus) Err() error { return nil }
