package ui

import "sync"

type alert struct {
	title   string
	message string
}

// bridge receives playback sinks. The controller calls it from inside
// Update, so it only records state for the next View.
type bridge struct {
	mu      sync.Mutex
	playing bool
	alert   *alert
}

func (b *bridge) ConfigureUI(playing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing = playing
}

func (b *bridge) ShowAlert(title, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alert = &alert{title: title, message: message}
}

func (b *bridge) isPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

func (b *bridge) currentAlert() *alert {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alert
}

func (b *bridge) dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alert = nil
}
