package player

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"mediadeck/transport"
)

// resampleQuality is beep's interpolation quality for voice resamplers.
const resampleQuality = 4

// Deck is one decoded buffer wired into the engine. The gain and analysis
// chain is created once per load; every Bind adds a fresh voice to it.
type Deck struct {
	e        *Engine
	buf      *beep.Buffer
	voices   *bus
	gain     *effects.Gain
	tap      *Tap
	analyser *Analyser
	closed   bool
}

func newDeck(e *Engine, buf *beep.Buffer) *Deck {
	voices := &bus{}
	gain := &effects.Gain{Streamer: voices}
	tap := NewTap(gain, e.fftSize*2)
	return &Deck{
		e:        e,
		buf:      buf,
		voices:   voices,
		gain:     gain,
		tap:      tap,
		analyser: NewAnalyser(tap, e.fftSize, int(e.sr)),
	}
}

// Duration returns the buffer length in seconds.
func (d *Deck) Duration() float64 { return Duration(d.buf) }

// Format returns the decoded buffer's format.
func (d *Deck) Format() beep.Format { return d.buf.Format() }

// Analyser returns the deck's analysis tap.
func (d *Deck) Analyser() *Analyser { return d.analyser }

// Now reads the engine's hardware clock.
func (d *Deck) Now() float64 { return d.e.Now() }

// Resume wakes the output context.
func (d *Deck) Resume() error { return d.e.Resume() }

// SetGain sets the linear output gain, clamped to [0, 1].
func (d *Deck) SetGain(v float64) {
	v = max(0, min(1, v))
	d.e.mu.Lock()
	d.gain.Gain = v - 1
	d.e.mu.Unlock()
}

// Gain returns the linear output gain.
func (d *Deck) Gain() float64 {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	return d.gain.Gain + 1
}

// Voices returns the number of voices currently feeding the deck.
func (d *Deck) Voices() int {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	return d.voices.len()
}

// Bind starts a new voice offset seconds into the buffer at the given rate.
func (d *Deck) Bind(offset, rate float64, onEnd func()) (transport.Voice, error) {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	if d.closed || d.e.state == Closed {
		return nil, ErrClosed
	}
	format := d.buf.Format()
	start := int(offset * float64(format.SampleRate))
	start = max(0, min(start, d.buf.Len()))

	v := &voice{
		e:     d.e,
		base:  float64(format.SampleRate) / float64(d.e.sr),
		onEnd: onEnd,
	}
	v.res = beep.ResampleRatio(resampleQuality, rate*v.base, d.buf.Streamer(start, d.buf.Len()))
	d.voices.add(v)
	return v, nil
}

// Close stops every voice and detaches the chain from the engine.
func (d *Deck) Close() error {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	for _, s := range d.voices.streamers {
		if v, ok := s.(*voice); ok {
			v.stopLocked()
		}
	}
	d.voices.clear()
	d.e.master.remove(d.tap)
	return nil
}

// voice is a single playback node. Its position only moves forward; the
// rate can change in place.
type voice struct {
	e       *Engine
	res     *beep.Resampler
	base    float64 // buffer rate / output rate
	onEnd   func()
	stopped bool
}

func (v *voice) Stream(samples [][2]float64) (int, bool) {
	if v.stopped {
		return 0, false
	}
	n, ok := v.res.Stream(samples)
	if !ok {
		v.stopped = true
		if end := v.onEnd; end != nil {
			v.onEnd = nil
			end()
		}
	}
	return n, ok
}

func (v *voice) Err() error { return v.res.Err() }

// SetRate retunes the resampler without restarting the voice.
func (v *voice) SetRate(rate float64) {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	if v.stopped || !(rate > 0) {
		return
	}
	v.res.SetRatio(rate * v.base)
}

// Stop silences the voice and drops its end callback.
func (v *voice) Stop() {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	v.stopLocked()
}

func (v *voice) stopLocked() {
	v.stopped = true
	v.onEnd = nil
}
