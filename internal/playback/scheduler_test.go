package playback

import (
	"math"
	"testing"
	"time"

	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
)

func TestComputeDelay(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name       string
		remaining  int64
		sampleRate float64
		rate       *float32
		want       time.Duration
	}{
		{"one second", 44100, 44100, nil, time.Second},
		{"fast", 44100, 44100, effects.Float32(1.5), 666666666 * time.Nanosecond},
		{"slow", 22050, 44100, effects.Float32(0.5), time.Second},
		{"nothing left", 0, 44100, nil, 0},
		{"negative remaining", -10, 44100, nil, 0},
		{"zero rate", 44100, 44100, effects.Float32(0), 0},
		{"negative rate", 44100, 44100, effects.Float32(-1), 0},
		{"nan rate", 44100, 44100, &nan, 0},
		{"infinite rate", 44100, 44100, &inf, 0},
		{"zero sample rate", 44100, 0, nil, 0},
		{"nan sample rate", 44100, math.NaN(), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDelay(tt.remaining, tt.sampleRate, tt.rate)
			if diff := got - tt.want; diff < -time.Microsecond || diff > time.Microsecond {
				t.Errorf("ComputeDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDelayDecreasesWithRate(t *testing.T) {
	prev := time.Duration(math.MaxInt64)
	for _, r := range []float32{0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 4} {
		d := ComputeDelay(88200, 44100, &r)
		if d >= prev {
			t.Errorf("ComputeDelay(rate=%v) = %v, not below %v", r, d, prev)
		}
		want := time.Duration(2 / float64(r) * float64(time.Second))
		if diff := d - want; diff < -time.Microsecond || diff > time.Microsecond {
			t.Errorf("ComputeDelay(rate=%v) = %v, want %v", r, d, want)
		}
		prev = d
	}
}

func TestSchedulerFiresOnce(t *testing.T) {
	m := runloop.NewManual()
	s := NewScheduler(m)
	calls := 0

	delay := s.Arm(44100, 44100, nil, func() { calls++ })
	if delay != time.Second {
		t.Fatalf("Arm() = %v, want 1s", delay)
	}
	// A second Arm is ignored.
	s.Arm(0, 44100, nil, func() { calls += 100 })

	m.Advance(999 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("fired early: calls = %d", calls)
	}
	m.Advance(time.Millisecond)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	m.Advance(10 * time.Second)
	if calls != 1 {
		t.Errorf("calls = %d after more time, want 1", calls)
	}
	if !s.Fired() || !s.Armed() {
		t.Error("Fired() and Armed() should be true")
	}
}

func TestSchedulerZeroDelayFiresOnDispatcher(t *testing.T) {
	m := runloop.NewManual()
	s := NewScheduler(m)
	calls := 0

	s.Arm(0, 44100, nil, func() { calls++ })
	if calls != 0 {
		t.Fatal("callback ran outside the dispatcher")
	}
	m.Advance(0)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSchedulerCancelBeforeFire(t *testing.T) {
	m := runloop.NewManual()
	s := NewScheduler(m)
	calls := 0

	s.Arm(4410, 44100, nil, func() { calls++ })
	s.Cancel()
	s.Cancel()
	m.Advance(time.Second)

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestSchedulerCancelBeforeArm(t *testing.T) {
	m := runloop.NewManual()
	s := NewScheduler(m)
	s.Cancel()

	calls := 0
	s.Arm(4410, 44100, nil, func() { calls++ })
	m.Advance(time.Second)
	if calls != 0 || s.Armed() {
		t.Errorf("calls = %d, Armed() = %v, want 0, false", calls, s.Armed())
	}
}

// dueDispatcher hands back timer callbacks instead of running them, so a
// test can cancel after the timer has already fired.
type dueDispatcher struct {
	due []func()
}

func (d *dueDispatcher) Post(fn func()) { fn() }

func (d *dueDispatcher) AfterFunc(_ time.Duration, fn func()) runloop.Timer {
	d.due = append(d.due, fn)
	return stoppedTimer{}
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }

func TestSchedulerCancelWinsWhenDue(t *testing.T) {
	d := &dueDispatcher{}
	s := NewScheduler(d)
	calls := 0

	s.Arm(441, 44100, nil, func() { calls++ })
	s.Cancel()
	for _, fn := range d.due {
		fn()
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}
