package runloop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Dispatcher driven by the caller. Posted work runs on Drain and
// timers fire on Advance, so tests control time exactly.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	queue  []func()
	timers []*manualTimer
	seq    int
	signal chan struct{}
}

// NewManual creates a manual dispatcher at time zero.
func NewManual() *Manual {
	return &Manual{signal: make(chan struct{}, 1)}
}

type manualTimer struct {
	m       *Manual
	due     time.Duration
	seq     int
	fn      func()
	fired   bool
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Post queues fn until the next Drain.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// AfterFunc registers fn to run once virtual time reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, due: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Now returns the virtual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// Drain runs queued work, including work queued while draining, and
// returns how many functions ran.
func (m *Manual) Drain() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return ran
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		fn()
		ran++
	}
}

// Advance moves virtual time forward by d, firing due timers in order, then
// drains queued work.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var due []*manualTimer
		for _, t := range m.timers {
			if !t.fired && !t.stopped && t.due <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			m.now = target
			m.compact()
			m.mu.Unlock()
			break
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].due != due[j].due {
				return due[i].due < due[j].due
			}
			return due[i].seq < due[j].seq
		})
		next := due[0]
		next.fired = true
		if next.due > m.now {
			m.now = next.due
		}
		m.mu.Unlock()

		next.fn()
		m.Drain()
	}
	m.Drain()
}

// WaitForPost blocks until work is queued or timeout passes. It reports
// whether work is waiting.
func (m *Manual) WaitForPost(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		m.mu.Lock()
		n := len(m.queue)
		m.mu.Unlock()
		if n > 0 {
			return true
		}
		select {
		case <-m.signal:
		case <-deadline.C:
			m.mu.Lock()
			n = len(m.queue)
			m.mu.Unlock()
			return n > 0
		}
	}
}

func (m *Manual) compact() {
	kept := m.timers[:0]
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			kept = append(kept, t)
		}
	}
	m.timers = kept
}
