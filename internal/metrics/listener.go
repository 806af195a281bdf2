package metrics

import (
	"time"

	"github.com/dgnsrekt/pitchperfect/internal/effects"
)

// Listener records playback controller events as metrics. It satisfies
// playback.Observer.
type Listener struct{}

// NewListener creates a Listener.
func NewListener() *Listener {
	return &Listener{}
}

func (l *Listener) PlaybackStarted(cfg effects.Config, stages int) {
	RecordPlay(EffectLabel(cfg), stages)
}

func (l *Listener) PlaybackStopped() { RecordStop() }

func (l *Listener) PlaybackCompleted() { RecordCompletion() }

func (l *Listener) PlaybackFailed(kind string) { RecordError(kind) }

func (l *Listener) CompletionArmed(delay time.Duration) {
	RecordCompletionDelay(delay.Seconds())
}

// EffectLabel maps a config to a preset name, or "custom". Label values stay
// bounded this way.
func EffectLabel(cfg effects.Config) string {
	want := cfg.String()
	for _, p := range effects.Presets {
		if p.Config.String() == want {
			return p.Name
		}
	}
	if cfg.IsZero() {
		return "none"
	}
	return "custom"
}
