package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mediadeck/imaging"
	"mediadeck/transport"
)

const (
	defaultPanelWidth = 60 // usable inner width before the first resize
	minPanelWidth     = 32
	maxPanelWidth     = 120
	frameOverhead     = 6 // border (2) + padding (2×2)
	surfaceRows       = 5
	spectrogramRows   = 8
	previewRows       = 12
	maxPlaylistLines  = 6
)

// pw returns the usable inner panel width.
func (m Model) pw() int {
	if m.width == 0 {
		return defaultPanelWidth
	}
	return max(minPanelWidth, min(maxPanelWidth, m.width-frameOverhead))
}

// View renders the full TUI frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderTitle(),
		m.renderTrackInfo(),
		m.renderTimeStatus(),
		"",
		m.renderSurfaces(),
		m.renderSeekBar(),
		m.renderVolumeRate(),
		"",
		m.renderImageHeader(),
		m.renderPreview(),
		"",
		m.renderPlaylist(),
		"",
		m.help.View(m.keys),
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", m.err)))
	} else if m.status != "" {
		sections = append(sections, dimStyle.Render(m.status))
	}

	return frameStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderTitle() string {
	focus := "audio"
	if m.focus == focusImage {
		focus = "image"
	}
	return titleStyle.Render("M E D I A D E C K") + dimStyle.Render("  ["+focus+"]")
}

func (m Model) renderTrackInfo() string {
	name := m.audioTitle
	switch {
	case m.loading:
		name += " (decoding…)"
	case name == "":
		name = "No audio loaded"
	}
	runes := []rune("♫ " + name)
	if len(runes) > m.pw() {
		runes = append(runes[:m.pw()-1], '…')
	}
	return trackStyle.Render(string(runes))
}

func (m Model) renderTimeStatus() string {
	left := timeStyle.Render(m.sched.Readout().Label)

	var status string
	switch {
	case m.machine.Phase() == transport.Playing:
		status = statusStyle.Render("▶ Playing")
	case m.machine.Phase() == transport.Stopped && m.machine.Position() > 0:
		status = statusStyle.Render("⏸ Paused")
	case m.machine.Phase() == transport.Stopped:
		status = dimStyle.Render("■ Stopped")
	default:
		status = dimStyle.Render("– Empty")
	}

	gap := max(1, m.pw()-lipgloss.Width(left)-lipgloss.Width(status))
	return left + strings.Repeat(" ", gap) + status
}

func (m Model) renderSurfaces() string {
	mode := "linear"
	if m.pipe.UseMel() {
		mode = fmt.Sprintf("mel %d", m.cfg.MelBands)
	}
	cols := m.pw()
	return strings.Join([]string{
		labelStyle.Render("WAVE"),
		m.cells.renderSurface(m.pipe.Waveform.Canvas.Image(), cols, surfaceRows),
		labelStyle.Render("SPECTRUM"),
		m.cells.renderSurface(m.pipe.Spectrum.Canvas.Image(), cols, surfaceRows),
		labelStyle.Render("SPECTROGRAM ") + activeToggle.Render("["+mode+"]"),
		m.cells.renderSurface(m.pipe.Spectrogram.Canvas.Image(), cols, spectrogramRows),
	}, "\n")
}

func (m Model) renderSeekBar() string {
	r := m.sched.Readout()
	var progress float64
	if r.Duration > 0 {
		progress = r.Position / r.Duration
	}
	progress = max(0, min(1, progress))

	pw := m.pw()
	filled := int(progress * float64(pw-1))

	return seekFillStyle.Render(strings.Repeat("━", filled)) +
		seekFillStyle.Render("●") +
		seekDimStyle.Render(strings.Repeat("━", max(0, pw-filled-1)))
}

func (m Model) renderVolumeRate() string {
	const barW = 20
	filled := int(m.volume * barW)
	bar := volBarStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barW-filled))
	vol := labelStyle.Render("VOL ") + bar + dimStyle.Render(fmt.Sprintf(" %3.0f%%", m.volume*100))
	rate := labelStyle.Render("RATE ") + timeStyle.Render(fmt.Sprintf("%.2fx", m.machine.Rate()))
	gap := max(1, m.pw()-lipgloss.Width(vol)-lipgloss.Width(rate))
	return vol + strings.Repeat(" ", gap) + rate
}

func (m Model) renderImageHeader() string {
	if !m.editor.Loaded() {
		return dimStyle.Render("── Image ── none")
	}
	w, h := m.editor.Size()
	return dimStyle.Render("── Image ── ") +
		trackStyle.Render(m.imageTitle) +
		dimStyle.Render(fmt.Sprintf(" %dx%d ", w, h)) +
		activeToggle.Render(fmt.Sprintf("[%s] [%+.0f°]", m.editor.Filter(), m.editor.Rotation()))
}

func (m Model) renderPreview() string {
	if m.preview == nil {
		return ""
	}
	fit := imaging.Fit(m.preview, m.pw(), previewRows*2)
	b := fit.Bounds()
	return m.cells.renderSurface(fit, b.Dx(), (b.Dy()+1)/2)
}

func (m Model) renderPlaylist() string {
	tracks := m.playlist.Tracks()
	if len(tracks) == 0 {
		return dimStyle.Render("  No files")
	}

	current := m.playlist.Index()
	start := max(0, min(current-maxPlaylistLines/2, len(tracks)-maxPlaylistLines))
	end := min(len(tracks), start+maxPlaylistLines)

	lines := []string{dimStyle.Render("── Files ──")}
	for i := start; i < end; i++ {
		prefix := "  "
		style := playlistItemStyle
		if i == current {
			prefix = "▶ "
			style = playlistActiveStyle
		}
		name := fmt.Sprintf("%s%d. %s [%s]", prefix, i+1, tracks[i].Title, tracks[i].Kind)
		runes := []rune(name)
		if len(runes) > m.pw() {
			name = string(runes[:m.pw()-1]) + "…"
		}
		lines = append(lines, style.Render(name))
	}
	return strings.Join(lines, "\n")
}
