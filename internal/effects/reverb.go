package effects

import (
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/gopxl/beep/v2"
)

// Freeverb tunings at 44.1 kHz.
var (
	combTuning    = []int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = []int{556, 441, 341, 225}
)

const (
	stereoSpread     = 23
	reverbFixedGain  = 0.015
	reverbScaleRoom  = 0.28
	reverbOffsetRoom = 0.7
	reverbScaleDamp  = 0.4
	allpassFeedback  = 0.5
	tuningRate       = 44100.0
)

// ReverbPreset is a Freeverb parameter set.
type ReverbPreset struct {
	Name     string
	RoomSize float64
	Damp     float64
	Width    float64
}

// Cathedral is the fixed reverb preset.
var Cathedral = ReverbPreset{Name: "cathedral", RoomSize: 0.95, Damp: 0.3, Width: 1}

// ReverbWetDryMix is the share of reverberated signal in the output, in
// percent.
const ReverbWetDryMix = 50

// ReverbStage is a Freeverb reverb. Like the echo stage it adds no tail.
type ReverbStage struct {
	preset ReverbPreset
	mix    float64
}

// NewReverb creates a reverb stage with the cathedral preset.
func NewReverb() *ReverbStage {
	return &ReverbStage{preset: Cathedral, mix: ReverbWetDryMix / 100.0}
}

func (r *ReverbStage) Kind() Kind { return KindReverb }

func (r *ReverbStage) Speed() float64 { return 1 }

func (r *ReverbStage) String() string { return "reverb(" + r.preset.Name + ")" }

func (r *ReverbStage) Apply(in beep.Streamer, format audio.Format) beep.Streamer {
	scale := float64(format.SampleRate) / tuningRate
	feedback := r.preset.RoomSize*reverbScaleRoom + reverbOffsetRoom
	damp := r.preset.Damp * reverbScaleDamp

	rs := &reverbStreamer{
		src:  in,
		mix:  r.mix,
		wet1: r.preset.Width/2 + 0.5,
		wet2: (1 - r.preset.Width) / 2,
	}
	for ch := 0; ch < 2; ch++ {
		spread := 0
		if ch == 1 {
			spread = stereoSpread
		}
		for _, n := range combTuning {
			rs.combs[ch] = append(rs.combs[ch], newComb(scaled(n+spread, scale), feedback, damp))
		}
		for _, n := range allpassTuning {
			rs.allpasses[ch] = append(rs.allpasses[ch], newAllpass(scaled(n+spread, scale)))
		}
	}
	return rs
}

func scaled(n int, scale float64) int {
	return max(int(float64(n)*scale), 1)
}

type reverbStreamer struct {
	src        beep.Streamer
	mix        float64
	wet1, wet2 float64
	combs      [2][]*comb
	allpasses  [2][]*allpass
}

func (r *reverbStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.src.Stream(samples)
	for i := range samples[:n] {
		in := (samples[i][0] + samples[i][1]) * reverbFixedGain
		var out [2]float64
		for ch := 0; ch < 2; ch++ {
			for _, c := range r.combs[ch] {
				out[ch] += c.process(in)
			}
			for _, a := range r.allpasses[ch] {
				out[ch] = a.process(out[ch])
			}
		}
		wetL := out[0]*r.wet1 + out[1]*r.wet2
		wetR := out[1]*r.wet1 + out[0]*r.wet2
		samples[i][0] = (1-r.mix)*samples[i][0] + r.mix*wetL
		samples[i][1] = (1-r.mix)*samples[i][1] + r.mix*wetR
	}
	return n, ok
}

func (r *reverbStreamer) Err() error { return r.src.Err() }

type comb struct {
	buf      []float64
	idx      int
	store    float64
	feedback float64
	damp1    float64
	damp2    float64
}

func newComb(size int, feedback, damp float64) *comb {
	return &comb{buf: make([]float64, size), feedback: feedback, damp1: damp, damp2: 1 - damp}
}

func (c *comb) process(in float64) float64 {
	out := c.buf[c.idx]
	c.store = out*c.damp2 + c.store*c.damp1
	c.buf[c.idx] = in + c.store*c.feedback
	c.idx = (c.idx + 1) % len(c.buf)
	return out
}

type allpass struct {
	buf []float64
	idx int
}

func newAllpass(size int) *allpass {
	return &allpass{buf: make([]float64, size)}
}

func (a *allpass) process(in float64) float64 {
	bufout := a.buf[a.idx]
	a.buf[a.idx] = in + bufout*allpassFeedback
	a.idx = (a.idx + 1) % len(a.buf)
	return bufout - in
}
