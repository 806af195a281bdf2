package playback

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
)

func TestBuildChainLength(t *testing.T) {
	asset := testAsset(t, 441, 44100)
	opts := BuildOptions{Device: audio.NewMockDevice(44100, 1), Dispatcher: runloop.NewManual()}

	tests := []struct {
		name string
		cfg  effects.Config
	}{
		{"empty", effects.Config{}},
		{"rate", effects.Config{Rate: effects.Float32(0.5)}},
		{"echo", effects.Config{Echo: true}},
		{"reverb", effects.Config{Reverb: true}},
		{"echo and reverb", effects.Config{Pitch: effects.Float32(1000), Echo: true, Reverb: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(asset, tt.cfg, opts)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			defer g.Stop()

			want := 2
			if tt.cfg.Echo {
				want++
			}
			if tt.cfg.Reverb {
				want++
			}
			if g.ChainLength() != want {
				t.Errorf("ChainLength() = %d, want %d", g.ChainLength(), want)
			}
			if g.Links() != want {
				t.Errorf("Links() = %d, want %d", g.Links(), want)
			}
			if g.Format() != asset.Format() {
				t.Errorf("Format() = %v, want %v", g.Format(), asset.Format())
			}
			stages := g.Stages()
			if stages[0].Kind() != effects.KindRateAndPitch {
				t.Errorf("first stage = %v, want rate-pitch", stages[0].Kind())
			}
			if stages[len(stages)-1].Kind() != effects.KindOutput {
				t.Errorf("last stage = %v, want output", stages[len(stages)-1].Kind())
			}
			if g.ID() == "" {
				t.Error("graph has no id")
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	asset := testAsset(t, 441, 44100)
	dev := audio.NewMockDevice(44100, 1)
	m := runloop.NewManual()

	tests := []struct {
		name    string
		asset   *audio.Asset
		cfg     effects.Config
		opts    BuildOptions
		wantErr error
	}{
		{"no asset", nil, effects.Config{}, BuildOptions{Device: dev, Dispatcher: m}, ErrNoAsset},
		{"no device", asset, effects.Config{}, BuildOptions{Dispatcher: m}, ErrNoDevice},
		{"no dispatcher", asset, effects.Config{}, BuildOptions{Device: dev}, ErrNoDispatcher},
		{"bad rate", asset, effects.Config{Rate: effects.Float32(0)}, BuildOptions{Device: dev, Dispatcher: m}, effects.ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.asset, tt.cfg, tt.opts)
			if g != nil {
				t.Error("Build() returned a graph on error")
			}
			var graphErr *AudioGraphError
			if !errors.As(err, &graphErr) {
				t.Fatalf("Build() error = %T, want *AudioGraphError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGraphStartFailure(t *testing.T) {
	dev := audio.NewMockDevice(44100, 1)
	cause := errors.New("device busy")
	dev.FailNextPlayer(cause)

	g, err := Build(testAsset(t, 441, 44100), effects.Config{}, BuildOptions{Device: dev, Dispatcher: runloop.NewManual()})
	if err != nil {
		t.Fatal(err)
	}
	err = g.Start(func() {})

	var startErr *AudioEngineStartError
	if !errors.As(err, &startErr) {
		t.Fatalf("Start() error = %T, want *AudioEngineStartError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Start() error = %v, want wrapped %v", err, cause)
	}
	if !g.IsStopped() {
		t.Error("failed graph should be torn down")
	}
	if err := g.Start(func() {}); !errors.Is(err, ErrGraphStopped) {
		t.Errorf("restart = %v, want %v", err, ErrGraphStopped)
	}
}

func TestGraphStartStop(t *testing.T) {
	dev := audio.NewMockDevice(44100, 1)
	g, err := Build(testAsset(t, 441, 44100), effects.Config{}, BuildOptions{Device: dev, Dispatcher: runloop.NewManual()})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Start(func() {}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := g.Start(func() {}); !errors.Is(err, ErrGraphStarted) {
		t.Errorf("second Start() = %v, want %v", err, ErrGraphStarted)
	}

	g.Stop()
	g.Stop()
	if !g.Scheduler().Cancelled() {
		t.Error("Stop() should cancel the scheduler")
	}
	if dev.PlayersClosed != 1 {
		t.Errorf("PlayersClosed = %d, want 1", dev.PlayersClosed)
	}
	if g.Links() != 0 {
		t.Errorf("Links() = %d after Stop, want 0", g.Links())
	}
}
