package playback

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/engine"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
	"github.com/google/uuid"
)

// BuildOptions carries what a graph needs besides the asset and effects.
type BuildOptions struct {
	Device     audio.Device
	Dispatcher runloop.Dispatcher

	// OnArmed, if set, runs on the dispatcher with the delay each time the
	// graph's scheduler is armed.
	OnArmed func(delay time.Duration)
}

// Graph is one playback cycle's chain: player, stages and output.
type Graph struct {
	id     string
	asset  *audio.Asset
	cfg    effects.Config
	opts   BuildOptions
	engine *engine.Engine
	player *engine.PlayerNode
	nodes  []*engine.EffectNode
	stages []effects.Stage

	mu        sync.Mutex
	scheduler *Scheduler
	started   bool
	stopped   bool
}

// Build creates a graph for asset with cfg. Every node is attached before
// any link is made, and every link carries the asset's format.
func Build(asset *audio.Asset, cfg effects.Config, opts BuildOptions) (*Graph, error) {
	if asset == nil {
		return nil, &AudioGraphError{Err: ErrNoAsset}
	}
	if opts.Device == nil {
		return nil, &AudioGraphError{Err: ErrNoDevice}
	}
	if opts.Dispatcher == nil {
		return nil, &AudioGraphError{Err: ErrNoDispatcher}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &AudioGraphError{Node: "rate-pitch", Err: err}
	}

	g := &Graph{
		id:     uuid.NewString(),
		asset:  asset,
		cfg:    cfg,
		opts:   opts,
		engine: engine.New(opts.Device),
		player: engine.NewPlayerNode(),
		stages: effects.Chain(cfg),
	}

	nodes := []engine.Node{g.player}
	for _, st := range g.stages {
		n := engine.NewEffectNode(st)
		g.nodes = append(g.nodes, n)
		nodes = append(nodes, n)
	}

	for _, n := range nodes {
		if err := g.engine.Attach(n); err != nil {
			return nil, &AudioGraphError{Node: n.Name(), Err: err}
		}
	}
	format := asset.Format()
	for i := 0; i+1 < len(nodes); i++ {
		if err := g.engine.Connect(nodes[i], nodes[i+1], format); err != nil {
			g.engine.Reset()
			return nil, &AudioGraphError{Node: nodes[i+1].Name(), Err: err}
		}
	}

	log.Debug("Playback graph built",
		"graph", g.id,
		"effects", cfg.String(),
		"chain_length", len(g.stages),
		"format", format.String())
	return g, nil
}

// ID returns the graph's unique id.
func (g *Graph) ID() string { return g.id }

// Stages returns the processing stages in chain order, output last.
func (g *Graph) Stages() []effects.Stage {
	return append([]effects.Stage(nil), g.stages...)
}

// ChainLength returns the number of stages after the player.
func (g *Graph) ChainLength() int { return len(g.stages) }

// Links returns the number of connections in the engine.
func (g *Graph) Links() int { return g.engine.Links() }

// Format returns the format every link carries.
func (g *Graph) Format() audio.Format { return g.asset.Format() }

// Config returns the effect configuration the graph was built from.
func (g *Graph) Config() effects.Config { return g.cfg }

// Scheduler returns the completion scheduler, or nil before Start.
func (g *Graph) Scheduler() *Scheduler {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scheduler
}

// Start schedules the whole asset, starts the engine and starts the player.
// onComplete runs on the dispatcher once the audible output has finished.
// On error the graph is torn down and must be discarded.
func (g *Graph) Start(onComplete func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return ErrGraphStopped
	}
	if g.started {
		return ErrGraphStarted
	}

	sched := NewScheduler(g.opts.Dispatcher)
	g.scheduler = sched
	sampleRate := g.asset.SampleRate()
	rate := g.cfg.Rate
	onArmed := g.opts.OnArmed
	dispatcher := g.opts.Dispatcher

	g.player.Schedule(g.asset, func(remaining int64, ok bool) {
		if !ok {
			remaining = 0
		}
		dispatcher.Post(func() {
			delay := sched.Arm(remaining, sampleRate, rate, onComplete)
			if onArmed != nil && !sched.Cancelled() {
				onArmed(delay)
			}
		})
	})

	if err := g.engine.Start(); err != nil {
		g.teardownLocked()
		return &AudioEngineStartError{Err: err}
	}
	if err := g.player.Play(); err != nil {
		g.teardownLocked()
		return &AudioEngineStartError{Err: err}
	}

	g.started = true
	log.Debug("Playback graph started", "graph", g.id)
	return nil
}

// Stop cancels the scheduler, silences the player and stops and resets the
// engine. It is idempotent; a stopped graph cannot be restarted.
func (g *Graph) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	g.teardownLocked()
	log.Debug("Playback graph stopped", "graph", g.id)
}

func (g *Graph) teardownLocked() {
	g.stopped = true
	if g.scheduler != nil {
		g.scheduler.Cancel()
	}
	g.player.Stop()
	g.engine.Stop()
	g.engine.Reset()
}

// IsStopped reports whether Stop ran or Start failed.
func (g *Graph) IsStopped() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stopped
}
