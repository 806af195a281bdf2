package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
	"github.com/google/uuid"
)

// UISink receives playback state changes for the screen.
type UISink interface {
	ConfigureUI(playing bool)
}

// AlertSink shows a user-facing error.
type AlertSink interface {
	ShowAlert(title, message string)
}

// UIFunc adapts a function to UISink.
type UIFunc func(playing bool)

func (f UIFunc) ConfigureUI(playing bool) { f(playing) }

// AlertFunc adapts a function to AlertSink.
type AlertFunc func(title, message string)

func (f AlertFunc) ShowAlert(title, message string) { f(title, message) }

// Observer is notified of playback events, for metrics.
type Observer interface {
	PlaybackStarted(cfg effects.Config, chainLength int)
	PlaybackStopped()
	PlaybackCompleted()
	PlaybackFailed(kind string)
	CompletionArmed(delay time.Duration)
}

type nopObserver struct{}

func (nopObserver) PlaybackStarted(effects.Config, int) {}
func (nopObserver) PlaybackStopped()                    {}
func (nopObserver) PlaybackCompleted()                  {}
func (nopObserver) PlaybackFailed(string)               {}
func (nopObserver) CompletionArmed(time.Duration)       {}

// Failure kinds reported to the Observer.
const (
	FailureFile   = "file"
	FailureGraph  = "graph"
	FailureEngine = "engine"
)

// Options configures a Controller.
type Options struct {
	// Capable reports whether audio hardware may be used. When false, Play
	// and Stop only drive the UI state.
	Capable bool

	Device     audio.Device
	Dispatcher runloop.Dispatcher
	UI         UISink
	Alerts     AlertSink
	Observer   Observer
}

// Controller owns the single playback slot for a screen.
type Controller struct {
	mu      sync.Mutex
	opts    Options
	asset   *audio.Asset
	loadErr error
	state   State
	graph   *Graph
	cycle   uint64
	cycleID string
}

// NewController creates an idle controller.
func NewController(opts Options) *Controller {
	if opts.UI == nil {
		opts.UI = UIFunc(func(bool) {})
	}
	if opts.Alerts == nil {
		opts.Alerts = AlertFunc(func(string, string) {})
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Controller{opts: opts}
}

// Open loads the take at path. A load failure is shown as an alert and
// makes every later Play return the same error.
func (c *Controller) Open(path string) error {
	if !c.opts.Capable {
		log.Debug("Audio disabled, not loading take", "path", path)
		return nil
	}

	asset, err := audio.Load(path)
	if err != nil {
		c.mu.Lock()
		c.asset = nil
		c.loadErr = err
		c.mu.Unlock()

		log.Error("Unable to load take", "path", path, "error", err)
		c.opts.Observer.PlaybackFailed(FailureFile)
		c.opts.Alerts.ShowAlert(audio.AudioFileErrorTitle, err.Error())
		return err
	}
	c.UseAsset(asset)
	return nil
}

// UseAsset installs an already loaded take.
func (c *Controller) UseAsset(asset *audio.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asset = asset
	c.loadErr = nil
}

// Asset returns the loaded take, if any.
func (c *Controller) Asset() *audio.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asset
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPlaying reports whether the controller is in StatePlaying.
func (c *Controller) IsPlaying() bool {
	return c.State() == StatePlaying
}

// Graph returns the live graph, or nil when idle.
func (c *Controller) Graph() *Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph
}

// CycleID returns the id of the current or last playback cycle.
func (c *Controller) CycleID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycleID
}

// Play starts the take with cfg. A live cycle is stopped first.
func (c *Controller) Play(cfg effects.Config) error {
	c.mu.Lock()
	if c.loadErr != nil {
		err := c.loadErr
		c.mu.Unlock()
		return err
	}

	wasPlaying := c.stopLocked()
	c.cycle++
	gen := c.cycle
	c.cycleID = uuid.NewString()
	id := c.cycleID

	if !c.opts.Capable {
		c.state = StatePlaying
		c.mu.Unlock()

		log.Debug("Audio disabled, playing without sound", "cycle", id, "effects", cfg.String())
		if wasPlaying {
			c.opts.UI.ConfigureUI(false)
		}
		c.opts.UI.ConfigureUI(true)
		return nil
	}

	if c.asset == nil {
		c.mu.Unlock()
		if wasPlaying {
			c.opts.UI.ConfigureUI(false)
		}
		return ErrNoAsset
	}

	g, err := Build(c.asset, cfg, BuildOptions{
		Device:     c.opts.Device,
		Dispatcher: c.opts.Dispatcher,
		OnArmed:    c.opts.Observer.CompletionArmed,
	})
	if err == nil {
		err = g.Start(func() { c.finish(gen) })
	}
	if err != nil {
		c.mu.Unlock()
		c.fail(id, err)
		return err
	}

	c.graph = g
	c.state = StatePlaying
	c.mu.Unlock()

	log.Info("Playback started", "cycle", id, "graph", g.ID(), "effects", cfg.String())
	c.opts.Observer.PlaybackStarted(cfg, g.ChainLength())
	if wasPlaying {
		c.opts.UI.ConfigureUI(false)
	}
	c.opts.UI.ConfigureUI(true)
	return nil
}

func (c *Controller) fail(id string, err error) {
	kind := FailureEngine
	var graphErr *AudioGraphError
	if errors.As(err, &graphErr) {
		kind = FailureGraph
	}
	log.Error("Playback failed", "cycle", id, "kind", kind, "error", err)
	c.opts.Observer.PlaybackFailed(kind)
	c.opts.Alerts.ShowAlert(alertTitle(err), err.Error())
	c.opts.UI.ConfigureUI(false)
}

// finish runs on the dispatcher when cycle gen completes naturally.
func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	if c.cycle != gen || c.state != StatePlaying {
		c.mu.Unlock()
		return
	}
	id := c.cycleID
	c.stopLocked()
	c.mu.Unlock()

	log.Info("Playback finished", "cycle", id)
	c.opts.Observer.PlaybackCompleted()
	c.opts.UI.ConfigureUI(false)
}

// Stop ends the live cycle, if any. The controller is Idle when Stop
// returns and the cycle's completion will never run. Stop is idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	wasPlaying := c.stopLocked()
	id := c.cycleID
	c.mu.Unlock()

	if wasPlaying {
		log.Info("Playback stopped", "cycle", id)
		c.opts.Observer.PlaybackStopped()
	}
	c.opts.UI.ConfigureUI(false)
}

// stopLocked tears down the live graph and reports whether a cycle was
// playing.
func (c *Controller) stopLocked() bool {
	wasPlaying := c.state == StatePlaying
	if c.graph != nil {
		c.graph.Stop()
		c.graph = nil
	}
	c.state = StateIdle
	return wasPlaying
}
