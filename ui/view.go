package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/recorder"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultWidth = 80

var titleCaser = cases.Title(language.English)

func (m model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	if a := m.bridge.currentAlert(); a != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.headerView(width),
			"",
			alertView(a, width),
		)
	}

	sections := []string{
		m.headerView(width),
		"",
		m.presetsView(width),
		m.playbackView(),
		"",
		m.recorderView(),
		m.transcriptView(width),
	}
	if m.status != "" {
		sections = append(sections, subtleStyle.Render(truncate.StringWithTail(m.status, uint(width), "…")))
	}
	if m.cfg.ShowGraph {
		sections = append(sections, m.graphView())
	}
	sections = append(sections, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) headerView(width int) string {
	title := titleStyle.Render("PitchPerfect")
	if m.cfg.Path == "" {
		return title
	}

	info := filepath.Base(m.cfg.Path)
	if m.takeSize > 0 {
		info += " · " + humanize.Bytes(uint64(m.takeSize))
	}
	if asset := m.player.Asset(); asset != nil {
		info += " · " + asset.Duration().Round(100*time.Millisecond).String()
	}

	room := width - lipgloss.Width(title) - 1
	if room <= 0 {
		return title
	}
	return title + " " + subtleStyle.Render(truncate.StringWithTail(info, uint(room), "…"))
}

// presetsView lays out one button per preset, wrapping rows to width.
func (m model) presetsView(width int) string {
	playing := m.bridge.isPlaying()
	recording := m.isRecording()

	var rows []string
	var row []string
	rowWidth := 0
	for _, p := range effects.Presets {
		b := presetButton(p, playing && m.effect == p.Name, recording)
		w := lipgloss.Width(b)
		if rowWidth > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, b)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func presetButton(p effects.Preset, active, disabled bool) string {
	label := p.Key + " " + titleCaser.String(p.Name)
	switch {
	case disabled:
		return disabledButtonStyle.Render(label)
	case active:
		return activeButtonStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func (m model) playbackView() string {
	if !m.bridge.isPlaying() {
		return subtleStyle.Render("Stopped")
	}

	label := "Playing"
	if m.effect != "" {
		label += " " + m.effect
	}
	if f := m.fraction(); f >= 0 {
		return normalStyle.Render(label) + "  " + m.progress.ViewAs(f)
	}
	return normalStyle.Render(label)
}

func (m model) recorderView() string {
	if m.recorder == nil {
		return subtleStyle.Render("Recording unavailable")
	}

	state := m.recorder.State()
	switch {
	case m.recordFailed && state == recorder.StateStopped:
		return recordingStyle.Render(recorder.LabelFailed)
	case state == recorder.StateRecording:
		return recordingStyle.Render("● "+state.Label()) + "  " + formatDuration(m.recorder.Duration())
	case state == recorder.StatePaused:
		return pausedStyle.Render("‖ "+state.Label()) + "  " + formatDuration(m.recorder.Duration())
	default:
		return normalStyle.Render(state.Label())
	}
}

func (m model) transcriptView(width int) string {
	inner := max(10, width-2)
	text := padLines(wordwrap.String(m.transcript, inner), inner)
	if m.transcribing {
		text = m.spinner.View() + " " + text
	}
	return transcriptStyle.Render(text)
}

func (m model) graphView() string {
	g := m.player.Graph()
	if g == nil {
		return subtleStyle.Render("graph: none")
	}
	return subtleStyle.Render(fmt.Sprintf("graph %s · %d stages · %d links · %s",
		g.ID(), g.ChainLength(), g.Links(), g.Format()))
}

func alertView(a *alert, width int) string {
	inner := max(10, min(width-4, 60))
	body := lipgloss.JoinVertical(lipgloss.Left,
		alertTitleStyle.Render(a.title),
		"",
		wordwrap.String(a.message, inner),
		"",
		subtleStyle.Render("Press any key to continue"),
	)
	return alertStyle.Render(body)
}

// padLines right-pads every line to width cells so the transcript box
// doesn't shift as text streams in.
func padLines(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if w := runewidth.StringWidth(l); w < width {
			lines[i] = l + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
