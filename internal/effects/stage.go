package effects

import (
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/gopxl/beep/v2"
)

// Kind identifies a stage variant.
type Kind int

const (
	KindRateAndPitch Kind = iota
	KindEcho
	KindReverb
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindRateAndPitch:
		return "rate-pitch"
	case KindEcho:
		return "echo"
	case KindReverb:
		return "reverb"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Stage is one processing unit in a linear chain. A stage's input and output
// formats are the same.
type Stage interface {
	Kind() Kind

	// Apply wraps in with this stage's processing.
	Apply(in beep.Streamer, format audio.Format) beep.Streamer

	// Speed returns how many input frames are consumed per output frame.
	Speed() float64

	String() string
}

// Chain returns the ordered stages for cfg: the rate and pitch stage always,
// echo and reverb when requested, and the output stage last.
func Chain(cfg Config) []Stage {
	stages := []Stage{NewRateAndPitch(cfg.Rate, cfg.Pitch)}
	if cfg.Echo {
		stages = append(stages, NewEcho())
	}
	if cfg.Reverb {
		stages = append(stages, NewReverb())
	}
	return append(stages, NewOutput())
}

// Apply runs s through every stage in order.
func Apply(stages []Stage, s beep.Streamer, format audio.Format) beep.Streamer {
	for _, st := range stages {
		s = st.Apply(s, format)
	}
	return s
}

// Speed returns the combined speed of stages.
func Speed(stages []Stage) float64 {
	speed := 1.0
	for _, st := range stages {
		speed *= st.Speed()
	}
	return speed
}

// OutputStage hands audio to the sink unchanged.
type OutputStage struct{}

// NewOutput creates the passthrough output stage.
func NewOutput() *OutputStage { return &OutputStage{} }

func (*OutputStage) Kind() Kind { return KindOutput }

func (*OutputStage) Apply(in beep.Streamer, _ audio.Format) beep.Streamer { return in }

func (*OutputStage) Speed() float64 { return 1 }

func (*OutputStage) String() string { return "output" }
