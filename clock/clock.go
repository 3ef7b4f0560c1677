// Package clock converts a hardware audio clock reading into a virtual
// playback position.
//
// The position is anchored: a (clock time, virtual offset) pair fixes the
// origin, and while playing the position advances from that origin at the
// playback rate. Any change to the rate or to the playing flag must be
// preceded by Reanchor so the formula never spans a parameter change.
package clock

import "math"

// DefaultRate is the playback speed multiplier after a load or a reset.
const DefaultRate = 1.0

// Model is the clock part of the transport state. All values are seconds
// except Rate.
type Model struct {
	Playing  bool
	Offset   float64 // virtual position at the last anchor
	Anchor   float64 // hardware clock reading at the last anchor
	Rate     float64
	Duration float64
}

// New returns a stopped model at position zero for a buffer of the given length.
func New(duration float64) Model {
	return Model{Rate: DefaultRate, Duration: duration}
}

// PositionAt returns the virtual position for the hardware clock reading now.
// A stopped model reports Offset exactly.
func (m Model) PositionAt(now float64) float64 {
	if !m.Playing {
		return m.Offset
	}
	return Clamp(m.Offset+(now-m.Anchor)*m.Rate, 0, m.Duration)
}

// Reanchor folds the elapsed time into Offset and moves the anchor to now.
// Playing is left untouched.
func (m Model) Reanchor(now float64) Model {
	m.Offset = m.PositionAt(now)
	m.Anchor = now
	return m
}

// Wrap returns Offset folded into [0, Duration). Playback is never started
// beyond the end of the buffer.
func (m Model) Wrap() float64 {
	if m.Duration <= 0 {
		return 0
	}
	off := math.Mod(m.Offset, m.Duration)
	if off < 0 {
		off += m.Duration
	}
	return off
}

// Clamp limits v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
