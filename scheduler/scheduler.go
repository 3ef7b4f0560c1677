// Package scheduler runs the cooperative per-frame render loop. It refreshes
// the position readout every frame and drives the visualization only while
// the transport is playing.
package scheduler

import (
	"fmt"
	"io"
	"log/slog"
	"math"
)

// FrameID identifies an outstanding frame registration. Zero means none.
type FrameID uint64

// Host is the per-frame notification facility.
type Host interface {
	// RequestFrame arranges for fn to run once on the next frame.
	RequestFrame(fn func()) FrameID
	// CancelFrame withdraws a pending registration.
	CancelFrame(id FrameID)
}

// Transport is the read side of the transport the loop follows.
type Transport interface {
	Playing() bool
	Position() float64
	Duration() float64
}

// Renderer draws one visualization frame.
type Renderer interface {
	Render()
	// ClearLive blanks the per-frame surfaces, keeping accumulated history.
	ClearLive()
}

// Readout is the UI-visible position.
type Readout struct {
	Position float64
	Duration float64
	// Label reads "mm:ss / mm:ss".
	Label string
	// Seek is the position in hundredths of a second.
	Seek int
}

// Scheduler is a single-threaded render loop. Every method and every frame
// callback runs on the host's logical thread.
type Scheduler struct {
	host      Host
	transport Transport
	renderer  Renderer
	handle    FrameID
	readout   Readout
	frames    uint64
	log       *slog.Logger
}

// New creates an idle scheduler. A nil logger discards output.
func New(host Host, t Transport, r Renderer, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Scheduler{host: host, transport: t, renderer: r, log: log}
	s.Refresh()
	return s
}

// Start registers the frame callback unless one is already pending.
func (s *Scheduler) Start() {
	if s.handle != 0 {
		return
	}
	s.handle = s.host.RequestFrame(s.tick)
	s.log.Debug("render loop started", "frame", s.handle)
}

// Stop cancels a pending registration and blanks the live surfaces.
func (s *Scheduler) Stop() {
	if s.handle != 0 {
		s.host.CancelFrame(s.handle)
		s.log.Debug("render loop stopped", "frame", s.handle, "frames", s.frames)
		s.handle = 0
	}
	s.renderer.ClearLive()
	s.Refresh()
}

// Active reports whether a frame registration is outstanding.
func (s *Scheduler) Active() bool { return s.handle != 0 }

// Handle returns the outstanding registration, zero when idle.
func (s *Scheduler) Handle() FrameID { return s.handle }

// Frames returns the number of frames rendered so far.
func (s *Scheduler) Frames() uint64 { return s.frames }

// Readout returns the position computed on the last frame or refresh.
func (s *Scheduler) Readout() Readout { return s.readout }

// Refresh recomputes the readout from the transport.
func (s *Scheduler) Refresh() {
	pos, dur := s.transport.Position(), s.transport.Duration()
	s.readout = Readout{
		Position: pos,
		Duration: dur,
		Label:    FormatClock(pos) + " / " + FormatClock(dur),
		Seek:     int(math.Round(pos * 100)),
	}
}

func (s *Scheduler) tick() {
	s.handle = 0
	s.Refresh()
	if !s.transport.Playing() {
		s.renderer.ClearLive()
		return
	}
	s.renderer.Render()
	s.frames++
	s.handle = s.host.RequestFrame(s.tick)
}

// FormatClock renders seconds as zero-padded mm:ss. Negative values read as
// zero.
func FormatClock(seconds float64) string {
	if !(seconds > 0) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
