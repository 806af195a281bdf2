package engine

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/gopxl/beep/v2"
)

const sinkResampleQuality = 4

type link struct {
	to     Node
	format audio.Format
}

// Engine owns a set of attached nodes and the links between them.
type Engine struct {
	mu      sync.Mutex
	device  audio.Device
	nodes   map[Node]bool
	links   map[Node]link
	inbound map[Node]Node
	running bool
	source  *PlayerNode
}

// New creates an engine that renders to device.
func New(device audio.Device) *Engine {
	return &Engine{
		device:  device,
		nodes:   make(map[Node]bool),
		links:   make(map[Node]link),
		inbound: make(map[Node]Node),
	}
}

// Attach adds n to the engine. Attaching twice is a no-op.
func (e *Engine) Attach(n Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrRunning
	}
	e.nodes[n] = true
	return nil
}

// Connect links from's output to to's input with format.
func (e *Engine) Connect(from, to Node, format audio.Format) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrRunning
	}
	if !e.nodes[from] {
		return fmt.Errorf("%w: %s", ErrNotAttached, from.Name())
	}
	if !e.nodes[to] {
		return fmt.Errorf("%w: %s", ErrNotAttached, to.Name())
	}
	if err := format.Validate(); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", from.Name(), to.Name(), err)
	}
	if _, ok := e.links[from]; ok {
		return fmt.Errorf("%w: %s output", ErrAlreadyConnected, from.Name())
	}
	if _, ok := e.inbound[to]; ok {
		return fmt.Errorf("%w: %s input", ErrAlreadyConnected, to.Name())
	}
	if up, ok := e.inbound[from]; ok && e.links[up].format != format {
		return fmt.Errorf("%w: %s carries %s, link uses %s",
			ErrFormatMismatch, from.Name(), e.links[up].format, format)
	}

	e.links[from] = link{to: to, format: format}
	e.inbound[to] = from
	return nil
}

// Nodes returns the number of attached nodes.
func (e *Engine) Nodes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)
}

// Links returns the number of connections.
func (e *Engine) Links() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.links)
}

// IsRunning reports whether Start succeeded and Stop has not been called.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start builds the sample pipeline from the player through every stage to
// the output stage and creates a device player for it. Audio flows once the
// player node's Play is called.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}
	if e.device == nil || !e.device.IsReady() {
		return ErrDeviceNotReady
	}

	source, err := e.findSource()
	if err != nil {
		return err
	}
	stages, format, err := e.walk(source)
	if err != nil {
		return err
	}

	source.mu.Lock()
	asset := source.asset
	source.mu.Unlock()
	if asset == nil {
		return ErrNothingScheduled
	}

	s := effects.Apply(stages, asset.Streamer(), format)
	speed := effects.Speed(stages)

	deviceRate := e.device.SampleRate()
	if deviceRate != format.SampleRate {
		s = beep.Resample(sinkResampleQuality, beep.SampleRate(format.SampleRate), beep.SampleRate(deviceRate), s)
		speed *= float64(format.SampleRate) / float64(deviceRate)
	}

	channels := e.device.ChannelCount()
	pm := newPump(s, channels, source.rendered)
	player, err := e.device.NewPlayer(pm)
	if err != nil {
		return fmt.Errorf("create device player: %w", err)
	}
	source.bind(pm, player, speed, channels*audio.BytesPerSample)

	e.source = source
	e.running = true
	log.Debug("Engine started",
		"stages", len(stages),
		"format", format.String(),
		"device_rate", deviceRate,
		"speed", speed)
	return nil
}

func (e *Engine) findSource() (*PlayerNode, error) {
	var source *PlayerNode
	for n := range e.nodes {
		if p, ok := n.(*PlayerNode); ok {
			if source != nil {
				return nil, ErrNoSource
			}
			source = p
		}
	}
	if source == nil {
		return nil, ErrNoSource
	}
	return source, nil
}

// walk follows links from source and returns the stages in order and the
// format of the first link.
func (e *Engine) walk(source *PlayerNode) ([]effects.Stage, audio.Format, error) {
	first, ok := e.links[source]
	if !ok {
		return nil, audio.Format{}, ErrNoOutput
	}

	var stages []effects.Stage
	for n := Node(source); ; {
		l, ok := e.links[n]
		if !ok {
			break
		}
		en, ok := l.to.(*EffectNode)
		if !ok {
			return nil, audio.Format{}, fmt.Errorf("%w: %s is not an effect", ErrNoOutput, l.to.Name())
		}
		stages = append(stages, en.Stage())
		n = l.to
	}
	if stages[len(stages)-1].Kind() != effects.KindOutput {
		return nil, audio.Format{}, ErrNoOutput
	}
	return stages, first.format, nil
}

// Stop halts rendering and closes the device player. It is safe to call
// more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	source := e.source
	wasRunning := e.running
	e.running = false
	e.source = nil
	e.mu.Unlock()

	if source == nil {
		return
	}
	source.Stop()
	if player := source.release(); player != nil {
		if err := player.Close(); err != nil {
			log.Debug("Closing device player", "error", err)
		}
	}
	if wasRunning {
		log.Debug("Engine stopped")
	}
}

// Reset detaches every node and drops all links.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes = make(map[Node]bool)
	e.links = make(map[Node]link)
	e.inbound = make(map[Node]Node)
}
