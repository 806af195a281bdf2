package runloop

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrClosed is returned when work is posted to a closed loop.
var ErrClosed = errors.New("run loop is closed")

// Dispatcher runs functions serially on one logical context.
type Dispatcher interface {
	// Post queues fn to run on the dispatcher.
	Post(fn func())

	// AfterFunc queues fn to run on the dispatcher after d.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending AfterFunc.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was stopped.
	Stop() bool
}

// Loop is a Dispatcher backed by a single goroutine. Posted work runs in
// the order it was posted.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	wg     sync.WaitGroup
}

// NewLoop starts a loop. Call Close to stop it.
func NewLoop() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}

// Post queues fn. Work posted after Close is dropped.
func (l *Loop) Post(fn func()) {
	if err := l.TryPost(fn); err != nil {
		log.Debug("Dropped posted work", "error", err)
	}
}

// TryPost queues fn, returning ErrClosed if the loop is closed. It never
// blocks, so work may post more work.
func (l *Loop) TryPost(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return nil
}

// Pending returns the number of queued items that have not started.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// AfterFunc queues fn after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Close stops the loop and waits for the running item to finish. Queued
// work that has not started is discarded.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()
	l.wg.Wait()
}
