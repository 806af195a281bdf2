package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/playback"
	"github.com/dgnsrekt/pitchperfect/internal/recorder"
	"github.com/dgnsrekt/pitchperfect/internal/speech"
)

// Deps are the audio services the screen drives.
type Deps struct {
	Device   audio.Device
	Capable  bool
	Observer playback.Observer
	Recorder *recorder.Recorder
	Speech   speech.Recognizer
}

// NewProgram returns a new Tea program showing the playback screen.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug(
		"Starting pitchperfect",
		"path", cfg.Path,
		"effect", cfg.Effect,
		"audio", deps.Capable,
		"recorder", deps.Recorder != nil,
		"speech", deps.Speech != nil && deps.Speech.Available(),
	)

	dispatch := NewDispatcher()
	b := &bridge{}
	player := playback.NewController(playback.Options{
		Capable:    deps.Capable,
		Device:     deps.Device,
		Dispatcher: dispatch,
		UI:         b,
		Alerts:     b,
		Observer:   deps.Observer,
	})
	if cfg.Path != "" {
		// Failures surface as an alert on the first frame.
		_ = player.Open(cfg.Path)
	}

	var opts []tea.ProgramOption
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	m := newModel(cfg, player, b, deps.Recorder, deps.Speech, dispatch)
	p := tea.NewProgram(m, opts...)
	dispatch.Attach(p.Send)
	return p
}
