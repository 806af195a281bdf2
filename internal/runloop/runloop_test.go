package runloop

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	// Hold the loop so the queue grows well past any fixed buffer.
	gate := make(chan struct{})
	l.Post(func() { <-gate })

	const n = 500
	var (
		mu  sync.Mutex
		got []int
	)
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == n-1 {
				close(done)
			}
		})
	}
	if p := l.Pending(); p < n {
		t.Errorf("Pending() = %d while held, want at least %d", p, n)
	}
	close(gate)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted work never ran")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != n {
		t.Fatalf("ran %d items, want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("item %d ran as %d", i, v)
		}
	}
}

func TestLoopPostFromWork(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var order []string
	done := make(chan struct{})
	l.Post(func() {
		order = append(order, "outer")
		l.Post(func() {
			order = append(order, "inner")
			close(done)
		})
		order = append(order, "outer done")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("nested Post never ran")
	}
	want := []string{"outer", "outer done", "inner"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestLoopAfterFunc(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("AfterFunc never fired")
	}

	stopped := l.AfterFunc(50*time.Millisecond, func() { t.Error("stopped timer fired") })
	if !stopped.Stop() {
		t.Error("Stop() = false for a pending timer")
	}
	time.Sleep(100 * time.Millisecond)
}

func TestLoopClose(t *testing.T) {
	l := NewLoop()
	l.Close()
	l.Close()

	if err := l.TryPost(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("TryPost() after Close = %v, want %v", err, ErrClosed)
	}
	// Post after Close is dropped, not a panic.
	l.Post(func() { t.Error("work ran after Close") })
}

func TestManualAdvance(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	m.AfterFunc(100*time.Millisecond, func() {
		order = append(order, "a")
		m.Post(func() { order = append(order, "a-post") })
	})
	m.AfterFunc(200*time.Millisecond, func() { order = append(order, "b") })

	m.Advance(250 * time.Millisecond)
	want := []string{"a", "a-post", "b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if m.Now() != 250*time.Millisecond {
		t.Errorf("Now() = %v, want 250ms", m.Now())
	}
	if m.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", m.Pending())
	}
}

func TestManualTimerStop(t *testing.T) {
	m := NewManual()
	calls := 0
	timer := m.AfterFunc(time.Second, func() { calls++ })

	if !timer.Stop() {
		t.Error("Stop() = false for a pending timer")
	}
	if timer.Stop() {
		t.Error("second Stop() = true")
	}
	m.Advance(2 * time.Second)
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}

	fired := m.AfterFunc(0, func() { calls++ })
	m.Advance(0)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if fired.Stop() {
		t.Error("Stop() after firing = true")
	}
}

func TestManualWaitForPost(t *testing.T) {
	m := NewManual()
	if m.WaitForPost(10 * time.Millisecond) {
		t.Error("WaitForPost() = true with nothing posted")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Post(func() {})
	}()
	if !m.WaitForPost(2 * time.Second) {
		t.Fatal("WaitForPost() = false after Post")
	}
	if n := m.Drain(); n != 1 {
		t.Errorf("Drain() = %d, want 1", n)
	}
}
