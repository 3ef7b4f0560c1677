// Package ui implements the Bubbletea TUI: the audio deck with its live
// surfaces, the image editor preview, and the file list.
package ui

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mediadeck/clock"
	"mediadeck/config"
	"mediadeck/imaging"
	"mediadeck/player"
	"mediadeck/playlist"
	"mediadeck/scheduler"
	"mediadeck/transport"
	"mediadeck/visual"
)

const (
	volumeStep = 0.05
	rateStep   = 0.05
	minRate    = 0.25
	maxRate    = 4.0
	rotateStep = 15.0
)

type focusArea int

const (
	focusAudio focusArea = iota
	focusImage
)

// AudioLoader decodes raw bytes into a deck wired to the output.
type AudioLoader interface {
	Load(raw []byte) (*player.Deck, error)
}

type startMsg struct{}

type naturalEndMsg struct{ gen uint64 }

type audioLoadedMsg struct {
	seq  uint64
	deck *player.Deck
	err  error
}

type imageLoadedMsg struct {
	seq uint64
	img image.Image
	err error
}

// Model is the Bubbletea model. Every field is touched only from Update and
// View, which bubbletea runs on one goroutine.
type Model struct {
	cfg      config.Config
	engine   AudioLoader
	machine  *transport.Machine
	pipe     *visual.Pipeline
	sched    *scheduler.Scheduler
	frames   *frameHost
	deck     *player.Deck
	editor   *imaging.Editor
	preview  *image.NRGBA
	playlist *playlist.Playlist
	keys     keyMap
	help     help.Model
	cells    cellStyles
	log      *slog.Logger
	readFile func(string) ([]byte, error)

	focus      focusArea
	volume     float64
	audioSeq   uint64
	imageSeq   uint64
	loading    bool
	audioTitle string
	imageTitle string
	status     string
	err        error
	quitting   bool
	width      int
	height     int
}

// NewModel wires the transport, the render loop and the visualization
// pipeline around engine.
func NewModel(cfg config.Config, engine AudioLoader, pl *playlist.Playlist, log *slog.Logger) Model {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	frames := newFrameHost(cfg.FrameInterval())
	machine := transport.New(log.With("component", "transport"))
	pipe := visual.NewPipeline(visual.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		MelBands: cfg.MelBands,
		UseMel:   cfg.Mel,
	})
	sched := scheduler.New(frames, machine, pipe, log.With("component", "scheduler"))
	machine.SetScheduler(sched)

	m := Model{
		cfg:      cfg,
		engine:   engine,
		machine:  machine,
		pipe:     pipe,
		sched:    sched,
		frames:   frames,
		editor:   imaging.NewEditor(),
		playlist: pl,
		keys:     newKeyMap(),
		help:     help.New(),
		cells:    cellStyles{},
		log:      log,
		readFile: os.ReadFile,
		volume:   cfg.Volume,
	}
	m.keys.focusOn(m.focus)
	return m
}

// Init waits for natural-end notifications and opens the first files.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEnd(m.machine.Ends()),
		tea.WindowSize(),
		func() tea.Msg { return startMsg{} },
	)
}

func waitForEnd(ends <-chan uint64) tea.Cmd {
	return func() tea.Msg {
		return naturalEndMsg{gen: <-ends}
	}
}

// Update handles key presses, frames, load results and voice ends.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case startMsg:
		cmd = m.openInitial()

	case frameMsg:
		m.frames.dispatch(msg.id)

	case audioLoadedMsg:
		m.finishAudioLoad(msg)

	case imageLoadedMsg:
		m.finishImageLoad(msg)

	case naturalEndMsg:
		if m.machine.HandleNaturalEnd(msg.gen) {
			m.status = "finished"
		}
		cmd = waitForEnd(m.machine.Ends())
	}

	return m, tea.Batch(cmd, m.frames.drain())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.machine.Reset()
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Focus):
		m.setFocus(1 - m.focus)
		return nil
	case key.Matches(msg, m.keys.Next):
		return m.open(m.playlist.Next())
	case key.Matches(msg, m.keys.Prev):
		return m.open(m.playlist.Prev())
	case key.Matches(msg, m.keys.Export):
		m.export()
		return nil
	}

	if m.focus == focusImage {
		m.handleImageKey(msg)
		return nil
	}
	m.handleAudioKey(msg)
	return nil
}

func (m *Model) handleAudioKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Play):
		if err := m.machine.Toggle(); err != nil {
			m.fail("play", err)
		}
	case key.Matches(msg, m.keys.Stop):
		m.machine.Stop()
	case key.Matches(msg, m.keys.Back):
		m.seek(-m.cfg.SeekStep)
	case key.Matches(msg, m.keys.Forward):
		m.seek(m.cfg.SeekStep)
	case key.Matches(msg, m.keys.VolUp):
		m.setVolume(m.volume + volumeStep)
	case key.Matches(msg, m.keys.VolDown):
		m.setVolume(m.volume - volumeStep)
	case key.Matches(msg, m.keys.Faster):
		m.setRate(m.machine.Rate() + rateStep)
	case key.Matches(msg, m.keys.Slower):
		m.setRate(m.machine.Rate() - rateStep)
	case key.Matches(msg, m.keys.RateZero):
		m.setRate(clock.DefaultRate)
	case key.Matches(msg, m.keys.Mel):
		m.pipe.ToggleMel()
	}
	m.sched.Refresh()
}

func (m *Model) handleImageKey(msg tea.KeyMsg) {
	if !m.editor.Loaded() {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		m.editor.Rotate(-rotateStep)
	case key.Matches(msg, m.keys.Forward):
		m.editor.Rotate(rotateStep)
	case key.Matches(msg, m.keys.Filter):
		m.editor.CycleFilter()
	case key.Matches(msg, m.keys.Straight):
		m.editor.Reset()
	default:
		return
	}
	m.preview = m.editor.Render()
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.keys.focusOn(f)
}

func (m *Model) seek(delta float64) {
	if err := m.machine.Seek(m.machine.Position() + delta); err != nil {
		m.fail("seek", err)
	}
}

func (m *Model) setVolume(v float64) {
	m.volume = clock.Clamp(math.Round(v*100)/100, 0, 1)
	if m.deck != nil {
		m.deck.SetGain(m.volume)
	}
}

func (m *Model) setRate(r float64) {
	m.machine.SetRate(clock.Clamp(math.Round(r*100)/100, minRate, maxRate))
}

func (m *Model) fail(op string, err error) {
	m.err = fmt.Errorf("%s: %w", op, err)
	m.log.Warn(op+" failed", "err", err)
}

// openInitial selects the first file and also opens the first file of each
// other kind, so both panels start populated.
func (m *Model) openInitial() tea.Cmd {
	first, idx := m.playlist.Current()
	if idx < 0 {
		return nil
	}
	cmds := []tea.Cmd{m.open(first, true)}
	if i := m.playlist.First(playlist.Image); i >= 0 && first.Kind != playlist.Image {
		cmds = append(cmds, m.loadImage(m.playlist.Tracks()[i]))
	}
	if i := m.playlist.First(playlist.Audio); i >= 0 && first.Kind != playlist.Audio {
		cmds = append(cmds, m.loadAudio(m.playlist.Tracks()[i]))
	}
	return tea.Batch(cmds...)
}

func (m *Model) open(t playlist.Track, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	switch t.Kind {
	case playlist.Audio:
		m.setFocus(focusAudio)
		return m.loadAudio(t)
	case playlist.Image:
		m.setFocus(focusImage)
		return m.loadImage(t)
	}
	m.err = fmt.Errorf("%s: unsupported file type", t.Title)
	return nil
}

// loadAudio tears the deck down before decoding starts; the decode result
// arrives later as an audioLoadedMsg tagged with this load's sequence.
func (m *Model) loadAudio(t playlist.Track) tea.Cmd {
	m.audioSeq++
	seq := m.audioSeq
	m.machine.Reset()
	m.deck = nil
	m.pipe.Detach()
	m.pipe.Reset()
	m.sched.Refresh()
	m.audioTitle = t.Title
	m.loading = true
	m.err = nil
	m.status = ""

	engine, read := m.engine, m.readFile
	return func() tea.Msg {
		raw, err := read(t.Path)
		if err != nil {
			return audioLoadedMsg{seq: seq, err: err}
		}
		deck, err := engine.Load(raw)
		return audioLoadedMsg{seq: seq, deck: deck, err: err}
	}
}

func (m *Model) finishAudioLoad(msg audioLoadedMsg) {
	if msg.seq != m.audioSeq {
		if msg.deck != nil {
			_ = msg.deck.Close()
		}
		m.log.Debug("stale audio load dropped", "seq", msg.seq, "current", m.audioSeq)
		return
	}
	m.loading = false
	if msg.err != nil {
		m.machine.Reset()
		m.fail("load "+m.audioTitle, msg.err)
		return
	}
	if err := m.machine.Load(msg.deck, msg.deck.Duration()); err != nil {
		_ = msg.deck.Close()
		m.fail("load "+m.audioTitle, err)
		return
	}
	m.deck = msg.deck
	m.deck.SetGain(m.volume)
	m.pipe.Attach(m.deck.Analyser())
	m.sched.Refresh()
}

func (m *Model) loadImage(t playlist.Track) tea.Cmd {
	m.imageSeq++
	seq := m.imageSeq
	m.imageTitle = t.Title
	m.err = nil

	read := m.readFile
	return func() tea.Msg {
		raw, err := read(t.Path)
		if err != nil {
			return imageLoadedMsg{seq: seq, err: err}
		}
		img, _, err := imaging.DecodeImage(raw)
		return imageLoadedMsg{seq: seq, img: img, err: err}
	}
}

func (m *Model) finishImageLoad(msg imageLoadedMsg) {
	if msg.seq != m.imageSeq {
		return
	}
	if msg.err != nil {
		m.fail("load "+m.imageTitle, msg.err)
		return
	}
	m.editor.Load(msg.img)
	m.preview = m.editor.Render()
	w, h := m.editor.Size()
	m.log.Info("image loaded", "title", m.imageTitle, "width", w, "height", h)
}
