package recorder

import (
	"errors"
	"sync"
)

// ErrSourceClosed is returned by a closed source.
var ErrSourceClosed = errors.New("capture source closed")

// Source delivers signed 16-bit little-endian PCM.
type Source interface {
	// Start begins or resumes capture. onData may be called from another
	// goroutine and must not retain pcm.
	Start(onData func(pcm []byte)) error
	// Stop suspends capture and waits for a running onData call to
	// return. Start may be called again.
	Stop() error
	// Close releases the device.
	Close() error
}

// MockSource is a Source driven by Emit. Like a real device, Stop waits
// for Emit calls that are already delivering.
type MockSource struct {
	mu       sync.Mutex
	idle     *sync.Cond
	inflight int
	onData   func([]byte)
	running  bool
	closed   bool
	failing  error

	// Test helpers
	Starts int
	Stops  int
}

// NewMockSource creates an idle mock source.
func NewMockSource() *MockSource {
	m := &MockSource{}
	m.idle = sync.NewCond(&m.mu)
	return m
}

// FailStart makes the next Start return err.
func (m *MockSource) FailStart(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = err
}

func (m *MockSource) Start(onData func([]byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrSourceClosed
	}
	if m.failing != nil {
		err := m.failing
		m.failing = nil
		return err
	}
	m.onData = onData
	m.running = true
	m.Starts++
	return nil
}

func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.running = false
		m.Stops++
	}
	for m.inflight > 0 {
		m.idle.Wait()
	}
	return nil
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.running = false
	return nil
}

// Emit delivers pcm if the source is running and reports whether it did.
func (m *MockSource) Emit(pcm []byte) bool {
	m.mu.Lock()
	fn := m.onData
	if !m.running || fn == nil {
		m.mu.Unlock()
		return false
	}
	m.inflight++
	m.mu.Unlock()

	fn(pcm)

	m.mu.Lock()
	m.inflight--
	if m.inflight == 0 {
		m.idle.Broadcast()
	}
	m.mu.Unlock()
	return true
}
