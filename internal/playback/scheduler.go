package playback

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
)

// ComputeDelay returns how long the remaining frames take to play at rate.
// A nil rate means 1. Results that are not finite and positive clamp to 0.
func ComputeDelay(remaining int64, sampleRate float64, rate *float32) time.Duration {
	if remaining <= 0 {
		return 0
	}
	r := 1.0
	if rate != nil {
		r = float64(*rate)
	}
	seconds := float64(remaining) / sampleRate / r
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0
	}
	if seconds >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}

// Scheduler arms a one-shot completion timer for one playback cycle.
type Scheduler struct {
	mu         sync.Mutex
	dispatcher runloop.Dispatcher
	timer      runloop.Timer
	armedAt    time.Time
	delay      time.Duration
	armed      bool
	fired      bool
	cancelled  bool
}

// NewScheduler creates a scheduler whose timer fires on d.
func NewScheduler(d runloop.Dispatcher) *Scheduler {
	return &Scheduler{dispatcher: d}
}

// Arm computes the delay and schedules onComplete. It does nothing when the
// scheduler is cancelled or already armed. It returns the computed delay.
func (s *Scheduler) Arm(remaining int64, sampleRate float64, rate *float32, onComplete func()) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled || s.armed {
		return s.delay
	}
	s.delay = ComputeDelay(remaining, sampleRate, rate)
	s.armed = true
	s.armedAt = time.Now()
	s.timer = s.dispatcher.AfterFunc(s.delay, func() { s.fire(onComplete) })

	log.Debug("Completion armed", "remaining", remaining, "sample_rate", sampleRate, "delay", s.delay)
	return s.delay
}

func (s *Scheduler) fire(onComplete func()) {
	s.mu.Lock()
	if s.cancelled || s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	s.mu.Unlock()

	if onComplete != nil {
		onComplete()
	}
}

// Cancel disarms the scheduler. The callback will not run afterwards, even
// if its timer is already due. Cancel is idempotent.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled {
		return
	}
	s.cancelled = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Delay returns the armed delay, or 0 before Arm.
func (s *Scheduler) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// ArmedAt returns when Arm ran.
func (s *Scheduler) ArmedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armedAt
}

// Armed reports whether Arm ran.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Fired reports whether the callback ran.
func (s *Scheduler) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Cancelled reports whether Cancel was called.
func (s *Scheduler) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}
