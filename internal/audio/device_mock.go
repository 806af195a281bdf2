package audio

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MockDevice implements Device without hardware. Players drain their reader
// as fast as it produces data, like a device with an unbounded buffer.
// Whether anything counts as heard is controlled by SetRealtime.
type MockDevice struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	ready      bool
	realtime   bool
	failNext   error
	players    []*MockPlayer

	// Test helpers
	PlayersCreated int
	PlayersClosed  int
}

// NewMockDevice creates a ready mock device.
func NewMockDevice(sampleRate, channels int) *MockDevice {
	return &MockDevice{
		sampleRate: sampleRate,
		channels:   channels,
		ready:      true,
	}
}

// SetRealtime makes players report audio as heard at the device rate. When
// false (the default) buffered data is never heard, which freezes the
// playback position at zero.
func (d *MockDevice) SetRealtime(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.realtime = v
}

// FailNextPlayer makes the next NewPlayer call return err.
func (d *MockDevice) FailNextPlayer(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = err
}

// NewPlayer creates a mock player.
func (d *MockDevice) NewPlayer(r io.Reader) (Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return nil, ErrDeviceClosed
	}
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return nil, err
	}

	p := &MockPlayer{
		device:      d,
		reader:      r,
		realtime:    d.realtime,
		bytesPerSec: d.sampleRate * d.channels * BytesPerSample,
		drained:     make(chan struct{}),
	}
	d.players = append(d.players, p)
	d.PlayersCreated++
	log.Debug("Created mock player", "players_created", d.PlayersCreated)
	return p, nil
}

// Players returns every player created so far.
func (d *MockDevice) Players() []*MockPlayer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MockPlayer(nil), d.players...)
}

// SampleRate returns the configured rate.
func (d *MockDevice) SampleRate() int { return d.sampleRate }

// ChannelCount returns the configured channel count.
func (d *MockDevice) ChannelCount() int { return d.channels }

// IsReady reports whether the device is open.
func (d *MockDevice) IsReady() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// Close closes every player and the device.
func (d *MockDevice) Close() error {
	d.mu.Lock()
	players := d.players
	d.players = nil
	d.ready = false
	d.mu.Unlock()

	for _, p := range players {
		_ = p.Close()
	}
	return nil
}

// MockPlayer is the player returned by MockDevice.
type MockPlayer struct {
	device      *MockDevice
	reader      io.Reader
	realtime    bool
	bytesPerSec int

	mu      sync.Mutex
	started bool
	playing bool
	closed  bool
	read    int
	startAt time.Time
	err     error
	drained chan struct{}

	// Test helpers
	PlayCount  int
	PauseCount int
}

// Play starts pulling from the reader on a separate goroutine.
func (p *MockPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.playing {
		return
	}
	p.playing = true
	p.PlayCount++
	if !p.started {
		p.started = true
		p.startAt = time.Now()
		go p.pull()
	}
}

func (p *MockPlayer) pull() {
	defer close(p.drained)

	buf := make([]byte, 4096)
	for {
		p.mu.Lock()
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return
		}

		n, err := p.reader.Read(buf)

		p.mu.Lock()
		p.read += n
		if err != nil && !errors.Is(err, io.EOF) {
			p.err = err
		}
		p.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// Pause marks the player paused. Reading continues, as a device would keep
// its buffer full.
func (p *MockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		p.playing = false
		p.PauseCount++
	}
}

// IsPlaying reports whether Play was called more recently than Pause.
func (p *MockPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// BufferedSize returns bytes read but not yet heard.
func (p *MockPlayer) BufferedSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.realtime || !p.started {
		return p.read
	}
	heard := int(time.Since(p.startAt).Seconds() * float64(p.bytesPerSec))
	if heard > p.read {
		heard = p.read
	}
	return p.read - heard
}

// BytesRead returns how many bytes the player pulled from its reader.
func (p *MockPlayer) BytesRead() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.read
}

// Drained is closed once the reader returned an error or EOF.
func (p *MockPlayer) Drained() <-chan struct{} { return p.drained }

// Err returns the first non-EOF read error.
func (p *MockPlayer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close stops the player. It is safe to call more than once.
func (p *MockPlayer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.playing = false
	p.mu.Unlock()

	p.device.mu.Lock()
	p.device.PlayersClosed++
	p.device.mu.Unlock()
	return nil
}
