package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mediadeck/scheduler"
)

type frameMsg struct{ id scheduler.FrameID }

// frameHost provides per-frame callbacks on top of tea.Tick. At most one
// registration is pending; a frame message carrying any other id is stale
// and ignored.
type frameHost struct {
	interval time.Duration
	next     scheduler.FrameID
	pending  scheduler.FrameID
	fn       func()
	cmds     []tea.Cmd
}

func newFrameHost(interval time.Duration) *frameHost {
	return &frameHost{interval: interval}
}

func (h *frameHost) RequestFrame(fn func()) scheduler.FrameID {
	h.next++
	id := h.next
	h.pending, h.fn = id, fn
	h.cmds = append(h.cmds, tea.Tick(h.interval, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	}))
	return id
}

func (h *frameHost) CancelFrame(id scheduler.FrameID) {
	if id == h.pending {
		h.pending, h.fn = 0, nil
	}
}

// dispatch runs the callback registered under id, if it is still pending.
func (h *frameHost) dispatch(id scheduler.FrameID) bool {
	if id == 0 || id != h.pending {
		return false
	}
	fn := h.fn
	h.pending, h.fn = 0, nil
	fn()
	return true
}

// drain hands the ticks armed since the last call to the runtime.
func (h *frameHost) drain() tea.Cmd {
	if len(h.cmds) == 0 {
		return nil
	}
	cmds := h.cmds
	h.cmds = nil
	return tea.Batch(cmds...)
}
