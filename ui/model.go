package ui

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/playback"
	"github.com/dgnsrekt/pitchperfect/internal/recorder"
	"github.com/dgnsrekt/pitchperfect/internal/speech"
)

const tickInterval = 100 * time.Millisecond

type (
	startMsg struct{ effect string }
	tickMsg  time.Time

	recordedMsg struct {
		path string
		err  error
	}

	transcriptMsg struct {
		text  string
		final bool
		err   error
	}
)

type model struct {
	cfg      Config
	ctx      context.Context
	cancel   context.CancelFunc
	player   *playback.Controller
	recorder *recorder.Recorder
	speech   speech.Recognizer
	dispatch *Dispatcher
	bridge   *bridge

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model

	width  int
	height int

	effect      string
	rate        float64
	playStarted time.Time
	ticking     bool

	takeSize     int64
	recordFailed bool
	transcript   string
	transcribing bool
	status       string
}

func newModel(cfg Config, player *playback.Controller, b *bridge, rec *recorder.Recorder, sp speech.Recognizer, d *Dispatcher) model {
	if sp == nil {
		sp = speech.Unavailable{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = subtleStyle

	m := model{
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		player:     player,
		recorder:   rec,
		speech:     sp,
		dispatch:   d,
		bridge:     b,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    spin,
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		rate:       1,
		transcript: speech.DefaultText,
	}
	m.takeSize = fileSize(cfg.Path)
	return m
}

func (m model) Init() tea.Cmd {
	if m.cfg.Effect == "" {
		return nil
	}
	effect := m.cfg.Effect
	return func() tea.Msg { return startMsg{effect: effect} }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(10, min(msg.Width-4, 60))
		return m, nil

	case runMsg:
		msg.fn()
		return m, nil

	case startMsg:
		p, err := effects.Lookup(msg.effect)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m.play(p)

	case tickMsg:
		if !m.bridge.isPlaying() && !m.isRecording() {
			m.ticking = false
			return m, nil
		}
		return m, tick()

	case recordedMsg:
		return m.recorded(msg)

	case transcriptMsg:
		if msg.text != "" {
			m.transcript = msg.text
		}
		if msg.final {
			m.transcribing = false
			if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
				log.Warn("Transcription failed", "error", msg.err)
				m.status = msg.err.Error()
				if msg.text == "" {
					m.transcript = speech.DefaultText
				}
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.transcribing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	// Any other key dismisses an alert.
	if m.bridge.currentAlert() != nil {
		m.bridge.dismiss()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Stop):
		m.player.Stop()
		m.status = ""

	case key.Matches(msg, m.keys.Record):
		return m.toggleRecord()

	case key.Matches(msg, m.keys.Finish):
		return m.finishRecording()

	case key.Matches(msg, m.keys.Copy):
		if err := clipboard.WriteAll(m.transcript); err != nil {
			m.status = "Unable to copy transcript: " + err.Error()
		} else {
			m.status = "Transcript copied"
		}

	default:
		for i, b := range m.keys.Presets {
			if key.Matches(msg, b) {
				return m.play(effects.Presets[i])
			}
		}
	}
	return m, nil
}

func (m model) play(p effects.Preset) (tea.Model, tea.Cmd) {
	if m.isRecording() {
		m.status = "Finish the recording before playing it"
		return m, nil
	}

	if err := m.player.Play(p.Config); err != nil {
		// File and engine failures are already shown as alerts.
		if errors.Is(err, playback.ErrNoAsset) {
			m.status = "Record a take first"
		}
		m.effect = ""
		return m, nil
	}

	m.effect = p.Name
	m.rate = p.Config.RateValue()
	m.playStarted = time.Now()
	m.status = ""
	return m.startTicking()
}

func (m model) toggleRecord() (tea.Model, tea.Cmd) {
	if m.recorder == nil {
		m.status = "Recording is not available"
		return m, nil
	}
	m.player.Stop()
	m.recordFailed = false
	if err := m.recorder.Record(); err != nil {
		m.recordFailed = true
		m.bridge.ShowAlert(recorder.LabelFailed, err.Error())
		return m, nil
	}
	m.status = ""
	return m.startTicking()
}

func (m model) finishRecording() (tea.Model, tea.Cmd) {
	if !m.isRecording() {
		return m, nil
	}
	rec := m.recorder
	return m, func() tea.Msg {
		path, err := rec.Stop()
		return recordedMsg{path: path, err: err}
	}
}

func (m model) recorded(msg recordedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.recordFailed = true
		m.bridge.ShowAlert(recorder.LabelFailed, msg.err.Error())
		return m, nil
	}

	m.cfg.Path = msg.path
	m.takeSize = fileSize(msg.path)
	if err := m.player.Open(msg.path); err != nil {
		return m, nil
	}
	if !m.cfg.Transcribe || !m.speech.Available() {
		m.transcript = speech.DefaultText
		return m, nil
	}

	m.transcribing = true
	m.transcript = speech.WaitingText
	return m, tea.Batch(m.spinner.Tick, m.transcribe(msg.path))
}

func (m model) transcribe(path string) tea.Cmd {
	ctx, rec, d := m.ctx, m.speech, m.dispatch
	return func() tea.Msg {
		text, err := rec.Transcribe(ctx, path, func(partial string) {
			if d != nil {
				d.Send(transcriptMsg{text: partial})
			}
		})
		return transcriptMsg{text: text, final: true, err: err}
	}
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.player.Stop()
	if m.isRecording() {
		if path, err := m.recorder.Stop(); err != nil {
			log.Warn("Unable to save recording on quit", "path", m.recorder.Path(), "error", err)
		} else {
			log.Info("Saved recording on quit", "path", path)
		}
	}
	m.cancel()
	return m, tea.Quit
}

func (m model) isRecording() bool {
	return m.recorder != nil && m.recorder.State() != recorder.StateStopped
}

// fraction returns how much of the take has been heard, or -1 when
// unknown.
func (m model) fraction() float64 {
	asset := m.player.Asset()
	if asset == nil || !m.bridge.isPlaying() {
		return -1
	}
	total := float64(asset.Duration()) / m.rate
	if total <= 0 {
		return -1
	}
	return min(1, float64(time.Since(m.playStarted))/total)
}

// startTicking refreshes the view while audio plays or records.
func (m model) startTicking() (tea.Model, tea.Cmd) {
	if m.ticking {
		return m, nil
	}
	m.ticking = true
	return m, tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fileSize(path string) int64 {
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
