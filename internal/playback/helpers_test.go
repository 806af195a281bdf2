package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
)

func testAsset(t *testing.T, frames, sampleRate int) *audio.Asset {
	t.Helper()
	data := make([][2]float64, frames)
	for i := range data {
		data[i] = [2]float64{0.2, 0.2}
	}
	asset, err := audio.NewAssetFromFrames("recordedVoice.wav", audio.Format{SampleRate: sampleRate, Channels: 1, BitDepth: 16}, data)
	if err != nil {
		t.Fatal(err)
	}
	return asset
}

type alert struct {
	title   string
	message string
}

// recorder captures everything the controller reports.
type recorder struct {
	mu        sync.Mutex
	ui        []bool
	alerts    []alert
	started   int
	stopped   int
	completed int
	failed    []string
	delays    []time.Duration
}

func (r *recorder) ConfigureUI(playing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ui = append(r.ui, playing)
}

func (r *recorder) ShowAlert(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert{title, message})
}

func (r *recorder) PlaybackStarted(effects.Config, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recorder) PlaybackStopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
}

func (r *recorder) PlaybackCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *recorder) PlaybackFailed(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, kind)
}

func (r *recorder) CompletionArmed(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
}

func (r *recorder) uiEvents() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.ui...)
}

func (r *recorder) completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

type harness struct {
	device     *audio.MockDevice
	dispatcher *runloop.Manual
	rec        *recorder
	ctrl       *Controller
}

func newHarness(t *testing.T, capable bool) *harness {
	t.Helper()
	h := &harness{
		device:     audio.NewMockDevice(44100, 1),
		dispatcher: runloop.NewManual(),
		rec:        &recorder{},
	}
	h.ctrl = NewController(Options{
		Capable:    capable,
		Device:     h.device,
		Dispatcher: h.dispatcher,
		UI:         h.rec,
		Alerts:     h.rec,
		Observer:   h.rec,
	})
	t.Cleanup(func() { _ = h.device.Close() })
	return h
}

// waitArmed waits for the render completion to reach the dispatcher and
// runs it, which arms the scheduler.
func (h *harness) waitArmed(t *testing.T) *Scheduler {
	t.Helper()
	if !h.dispatcher.WaitForPost(5 * time.Second) {
		t.Fatal("render completion never posted")
	}
	h.dispatcher.Drain()
	g := h.ctrl.Graph()
	if g == nil {
		t.Fatal("no live graph")
	}
	s := g.Scheduler()
	if s == nil || !s.Armed() {
		t.Fatal("scheduler not armed")
	}
	return s
}

func equalBools(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func near(got, want, tol time.Duration) bool {
	d := got - want
	return d >= -tol && d <= tol
}
