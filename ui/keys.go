package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
)

type keyMap struct {
	Presets []key.Binding
	Stop    key.Binding
	Record  key.Binding
	Finish  key.Binding
	Copy    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	km := keyMap{
		Stop: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s", "stop"),
		),
		Record: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "record/pause"),
		),
		Finish: key.NewBinding(
			key.WithKeys("x", "enter"),
			key.WithHelp("x", "finish recording"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy transcript"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	for _, p := range effects.Presets {
		km.Presets = append(km.Presets, key.NewBinding(
			key.WithKeys(p.Key),
			key.WithHelp(p.Key, p.Name),
		))
	}
	return km
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Record, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.Presets,
		{k.Stop, k.Record, k.Finish, k.Copy},
		{k.Help, k.Quit},
	}
}
