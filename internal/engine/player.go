package engine

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
)

// CompletionFunc receives the number of source frames not yet heard when
// the scheduled segment has been fully rendered. ok is false when the
// player's position could not be determined.
type CompletionFunc func(remaining int64, ok bool)

// PlayerNode is the source of a chain. It plays one scheduled asset.
type PlayerNode struct {
	mu         sync.Mutex
	asset      *audio.Asset
	completion CompletionFunc

	pump          *pump
	player        audio.Player
	speed         float64
	bytesPerFrame int
	playing       bool
	stopped       bool
	completed     bool
}

// NewPlayerNode creates an idle player node.
func NewPlayerNode() *PlayerNode {
	return &PlayerNode{speed: 1}
}

func (p *PlayerNode) Name() string { return "player" }

// Schedule queues the whole asset to render once. completion runs at most
// once, on its own goroutine, when the last frame has been rendered.
// Scheduling again replaces the pending segment before the engine starts.
func (p *PlayerNode) Schedule(asset *audio.Asset, completion CompletionFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asset = asset
	p.completion = completion
	p.completed = false
}

// Play starts pulling audio. The engine must be running.
func (p *PlayerNode) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil || p.stopped {
		return ErrNotRunning
	}
	p.playing = true
	p.player.Play()
	return nil
}

// Stop silences the player. A pending completion is dropped.
func (p *PlayerNode) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopped = true
	p.playing = false
	if p.pump != nil {
		p.pump.stop()
	}
	if p.player != nil {
		p.player.Pause()
	}
}

// IsPlaying reports whether Play was called and Stop was not.
func (p *PlayerNode) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// PlayerTime returns how many source frames have been heard.
func (p *PlayerNode) PlayerTime() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playerTimeLocked()
}

func (p *PlayerNode) playerTimeLocked() (int64, bool) {
	if p.player == nil || p.pump == nil || !p.playing || p.bytesPerFrame == 0 {
		return 0, false
	}
	heard := p.pump.bytesProduced() - int64(p.player.BufferedSize())
	if heard < 0 {
		heard = 0
	}
	frames := float64(heard/int64(p.bytesPerFrame)) * p.speed
	return int64(frames), true
}

// bind connects the node to a started device player.
func (p *PlayerNode) bind(pm *pump, player audio.Player, speed float64, bytesPerFrame int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pump = pm
	p.player = player
	p.speed = speed
	p.bytesPerFrame = bytesPerFrame
	p.stopped = false
}

// release drops the device player. It returns the player so the caller can
// close it without holding the node lock.
func (p *PlayerNode) release() audio.Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	player := p.player
	p.player = nil
	p.pump = nil
	p.playing = false
	p.stopped = true
	return player
}

// rendered runs on its own goroutine once the pump drains.
func (p *PlayerNode) rendered() {
	p.mu.Lock()
	if p.completed || p.stopped || p.asset == nil {
		p.mu.Unlock()
		return
	}
	p.completed = true
	heard, ok := p.playerTimeLocked()
	remaining := p.asset.Length() - heard
	cb := p.completion
	if err := p.pump.streamErr(); err != nil {
		log.Warn("Stream ended with error", "error", err)
	}
	p.mu.Unlock()

	log.Debug("Segment rendered", "remaining", remaining, "ok", ok)
	if cb != nil {
		cb(remaining, ok)
	}
}
