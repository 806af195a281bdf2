package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
)

// runMsg carries a function to run inside Update.
type runMsg struct{ fn func() }

// Dispatcher runs posted work on the Bubble Tea event loop, so playback
// callbacks never race the model. Post blocks until the program accepts the
// message and must not be called from Update itself.
type Dispatcher struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ runloop.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher that drops work until Attach.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Attach connects the dispatcher to a program, usually with
// (*tea.Program).Send.
func (d *Dispatcher) Attach(send func(tea.Msg)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.send = send
}

// Send delivers msg to the program and reports whether one was attached.
func (d *Dispatcher) Send(msg tea.Msg) bool {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()

	if send == nil {
		log.Debug("Dropping message, no program attached", "msg", msg)
		return false
	}
	send(msg)
	return true
}

// Post runs fn on the event loop.
func (d *Dispatcher) Post(fn func()) {
	d.Send(runMsg{fn: fn})
}

// AfterFunc posts fn once dur has elapsed.
func (d *Dispatcher) AfterFunc(dur time.Duration, fn func()) runloop.Timer {
	return time.AfterFunc(dur, func() { d.Post(fn) })
}
