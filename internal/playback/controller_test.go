package playback

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
)

func TestFastPlaybackCompletesAfterScaledDuration(t *testing.T) {
	h := newHarness(t, true)
	h.ctrl.UseAsset(testAsset(t, 44100, 44100))

	if err := h.ctrl.Play(effects.Config{Rate: effects.Float32(1.5)}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if h.ctrl.State() != StatePlaying {
		t.Fatalf("State() = %v, want playing", h.ctrl.State())
	}

	s := h.waitArmed(t)
	if !near(s.Delay(), 667*time.Millisecond, time.Millisecond) {
		t.Errorf("Delay() = %v, want about 667ms", s.Delay())
	}

	h.dispatcher.Advance(600 * time.Millisecond)
	if h.ctrl.State() != StatePlaying {
		t.Fatal("completed too early")
	}
	h.dispatcher.Advance(100 * time.Millisecond)
	if h.ctrl.State() != StateIdle {
		t.Fatalf("State() = %v after delay, want idle", h.ctrl.State())
	}
	if h.rec.completions() != 1 {
		t.Errorf("completions = %d, want 1", h.rec.completions())
	}
	if got := h.rec.uiEvents(); !equalBools(got, []bool{true, false}) {
		t.Errorf("UI events = %v, want [true false]", got)
	}
	if h.ctrl.Graph() != nil {
		t.Error("graph still live after completion")
	}
}

func TestEmptyConfigCompletesAfterFullDuration(t *testing.T) {
	h := newHarness(t, true)
	asset := testAsset(t, 22050, 44100)
	h.ctrl.UseAsset(asset)

	if err := h.ctrl.Play(effects.Config{}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if n := h.ctrl.Graph().ChainLength(); n != 2 {
		t.Errorf("ChainLength() = %d, want 2", n)
	}

	s := h.waitArmed(t)
	if !near(s.Delay(), asset.Duration(), time.Millisecond) {
		t.Errorf("Delay() = %v, want %v", s.Delay(), asset.Duration())
	}

	h.dispatcher.Advance(asset.Duration())
	if h.ctrl.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.ctrl.State())
	}
	if len(h.rec.delays) != 1 || !near(h.rec.delays[0], asset.Duration(), time.Millisecond) {
		t.Errorf("observed delays = %v", h.rec.delays)
	}
}

func TestStopBeforeCompletion(t *testing.T) {
	h := newHarness(t, true)
	h.ctrl.UseAsset(testAsset(t, 44100, 44100))

	if err := h.ctrl.Play(effects.Config{}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	h.dispatcher.Advance(10 * time.Millisecond)
	h.ctrl.Stop()

	if h.ctrl.State() != StateIdle {
		t.Fatalf("State() = %v right after Stop, want idle", h.ctrl.State())
	}

	// A render completion may still be on its way; it must be ignored.
	h.dispatcher.WaitForPost(100 * time.Millisecond)
	h.dispatcher.Advance(10 * time.Second)

	if h.rec.completions() != 0 {
		t.Errorf("completions = %d, want 0", h.rec.completions())
	}
	if h.rec.stopped != 1 {
		t.Errorf("stops = %d, want 1", h.rec.stopped)
	}
	if got := h.rec.uiEvents(); !equalBools(got, []bool{true, false}) {
		t.Errorf("UI events = %v, want [true false]", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	h := newHarness(t, true)

	h.ctrl.Stop()
	h.ctrl.Stop()
	if h.ctrl.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.ctrl.State())
	}
	if h.rec.stopped != 0 {
		t.Errorf("stops = %d with nothing playing, want 0", h.rec.stopped)
	}

	h.ctrl.UseAsset(testAsset(t, 4410, 44100))
	if err := h.ctrl.Play(effects.Config{}); err != nil {
		t.Fatal(err)
	}
	h.ctrl.Stop()
	h.ctrl.Stop()
	if h.rec.stopped != 1 {
		t.Errorf("stops = %d, want 1", h.rec.stopped)
	}
}

func TestPlayWhilePlayingReplacesGraph(t *testing.T) {
	h := newHarness(t, true)
	h.ctrl.UseAsset(testAsset(t, 44100, 44100))

	if err := h.ctrl.Play(effects.Config{Echo: true}); err != nil {
		t.Fatal(err)
	}
	first := h.ctrl.Graph()

	if err := h.ctrl.Play(effects.Config{Reverb: true}); err != nil {
		t.Fatal(err)
	}
	second := h.ctrl.Graph()

	if first == second {
		t.Fatal("second Play reused the first graph")
	}
	if !first.IsStopped() {
		t.Error("first graph still live")
	}
	if second.IsStopped() {
		t.Error("second graph stopped")
	}

	// Let every posted completion run; only the live cycle may finish.
	deadline := time.Now().Add(5 * time.Second)
	for !second.Scheduler().Armed() && time.Now().Before(deadline) {
		h.dispatcher.WaitForPost(50 * time.Millisecond)
		h.dispatcher.Drain()
	}
	h.dispatcher.WaitForPost(50 * time.Millisecond)
	h.dispatcher.Advance(5 * time.Second)

	if h.rec.completions() != 1 {
		t.Errorf("completions = %d, want 1", h.rec.completions())
	}
	if got := h.rec.uiEvents(); !equalBools(got, []bool{true, false, true, false}) {
		t.Errorf("UI events = %v, want [true false true false]", got)
	}
}

func TestPlayWithoutAudio(t *testing.T) {
	h := newHarness(t, false)

	if err := h.ctrl.Open("/nonexistent/recordedVoice.wav"); err != nil {
		t.Errorf("Open() without audio = %v, want nil", err)
	}
	if err := h.ctrl.Play(effects.Config{Rate: effects.Float32(0.5)}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if h.ctrl.State() != StatePlaying {
		t.Errorf("State() = %v, want playing", h.ctrl.State())
	}
	if h.device.PlayersCreated != 0 {
		t.Errorf("PlayersCreated = %d, want 0", h.device.PlayersCreated)
	}

	h.ctrl.Stop()
	if h.ctrl.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.ctrl.State())
	}
	if got := h.rec.uiEvents(); !equalBools(got, []bool{true, false}) {
		t.Errorf("UI events = %v, want [true false]", got)
	}
}

func TestOpenFailureDisablesPlayback(t *testing.T) {
	h := newHarness(t, true)

	err := h.ctrl.Open(filepath.Join(t.TempDir(), "missing.wav"))
	var fileErr *audio.AudioFileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("Open() error = %v, want *AudioFileError", err)
	}
	if len(h.rec.alerts) != 1 || h.rec.alerts[0].title != "Audio File Error" {
		t.Fatalf("alerts = %+v", h.rec.alerts)
	}

	if perr := h.ctrl.Play(effects.Config{}); perr != err {
		t.Errorf("Play() = %v, want the load error", perr)
	}
	if h.ctrl.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.ctrl.State())
	}
	if h.device.PlayersCreated != 0 {
		t.Errorf("PlayersCreated = %d, want 0", h.device.PlayersCreated)
	}
	if len(h.rec.failed) != 1 || h.rec.failed[0] != FailureFile {
		t.Errorf("failures = %v", h.rec.failed)
	}
}

func TestEngineStartFailureIsRetryable(t *testing.T) {
	h := newHarness(t, true)
	h.ctrl.UseAsset(testAsset(t, 4410, 44100))
	h.device.FailNextPlayer(errors.New("device busy"))

	err := h.ctrl.Play(effects.Config{})
	var startErr *AudioEngineStartError
	if !errors.As(err, &startErr) {
		t.Fatalf("Play() error = %v, want *AudioEngineStartError", err)
	}
	if h.ctrl.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.ctrl.State())
	}
	if len(h.rec.alerts) != 1 || h.rec.alerts[0].title != AudioEngineErrorTitle {
		t.Errorf("alerts = %+v", h.rec.alerts)
	}

	if err := h.ctrl.Play(effects.Config{}); err != nil {
		t.Fatalf("retry Play() error = %v", err)
	}
	if h.ctrl.State() != StatePlaying {
		t.Errorf("State() = %v after retry, want playing", h.ctrl.State())
	}
	h.ctrl.Stop()
}

func TestPlayWithoutAsset(t *testing.T) {
	h := newHarness(t, true)
	if err := h.ctrl.Play(effects.Config{}); !errors.Is(err, ErrNoAsset) {
		t.Errorf("Play() = %v, want %v", err, ErrNoAsset)
	}
}

func TestPlaybackOnLoop(t *testing.T) {
	loop := runloop.NewLoop()
	defer loop.Close()

	dev := audio.NewMockDevice(44100, 1)
	defer dev.Close()

	done := make(chan bool, 4)
	ctrl := NewController(Options{
		Capable:    true,
		Device:     dev,
		Dispatcher: loop,
		UI:         UIFunc(func(playing bool) { done <- playing }),
	})
	ctrl.UseAsset(testAsset(t, 441, 44100))

	if err := ctrl.Play(effects.Config{Rate: effects.Float32(1.5), Echo: true, Reverb: true}); err != nil {
		t.Fatal(err)
	}
	if <-done != true {
		t.Fatal("first UI event should be playing")
	}
	select {
	case playing := <-done:
		if playing {
			t.Error("second UI event should be idle")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("playback never completed")
	}
	if ctrl.State() != StateIdle {
		t.Errorf("State() = %v, want idle", ctrl.State())
	}
}
