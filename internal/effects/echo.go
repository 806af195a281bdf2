package effects

import (
	"time"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/gopxl/beep/v2"
)

// EchoTap is a single delayed copy of the signal.
type EchoTap struct {
	Delay time.Duration
	Gain  float64
}

// MultiEcho is the fixed multi-tap echo preset.
var MultiEcho = []EchoTap{
	{Delay: 100 * time.Millisecond, Gain: 0.8},
	{Delay: 200 * time.Millisecond, Gain: 0.6},
	{Delay: 300 * time.Millisecond, Gain: 0.4},
}

// EchoWetDryMix is the share of delayed signal in the output, in percent.
const EchoWetDryMix = 50

// EchoStage mixes delayed copies of the input back in. It adds no tail, so
// output length equals input length.
type EchoStage struct {
	taps []EchoTap
	mix  float64
}

// NewEcho creates an echo stage with the multi-echo preset.
func NewEcho() *EchoStage {
	return &EchoStage{taps: MultiEcho, mix: EchoWetDryMix / 100.0}
}

func (e *EchoStage) Kind() Kind { return KindEcho }

func (e *EchoStage) Speed() float64 { return 1 }

func (e *EchoStage) String() string { return "echo(multi)" }

func (e *EchoStage) Apply(in beep.Streamer, format audio.Format) beep.Streamer {
	sr := format.Beep().SampleRate
	delays := make([]int, len(e.taps))
	size := 1
	for i, t := range e.taps {
		delays[i] = max(sr.N(t.Delay), 1)
		size = max(size, delays[i])
	}
	return &echoStreamer{
		src:     in,
		taps:    e.taps,
		delays:  delays,
		history: make([][2]float64, size),
		mix:     e.mix,
	}
}

type echoStreamer struct {
	src     beep.Streamer
	taps    []EchoTap
	delays  []int
	history [][2]float64
	pos     int
	mix     float64
}

func (e *echoStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.src.Stream(samples)
	size := len(e.history)
	for i := range samples[:n] {
		x := samples[i]
		var wet [2]float64
		for t, d := range e.delays {
			h := e.history[(e.pos-d+size)%size]
			wet[0] += e.taps[t].Gain * h[0]
			wet[1] += e.taps[t].Gain * h[1]
		}
		e.history[e.pos] = x
		e.pos = (e.pos + 1) % size
		samples[i][0] = (1-e.mix)*x[0] + e.mix*wet[0]
		samples[i][1] = (1-e.mix)*x[1] + e.mix*wet[1]
	}
	return n, ok
}

func (e *echoStreamer) Err() error { return e.src.Err() }
