package effects

import (
	"fmt"
	"math"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/gopxl/beep/v2"
)

const (
	wsolaFrame     = 1024
	wsolaHop       = wsolaFrame / 2
	wsolaTolerance = 256

	resampleQuality = 4
)

// RateAndPitchStage changes speed and pitch independently. It is an identity
// when neither is set.
type RateAndPitchStage struct {
	rate  float64
	cents float64
}

// NewRateAndPitch creates the stage. Nil values leave that dimension alone.
func NewRateAndPitch(rate, pitch *float32) *RateAndPitchStage {
	st := &RateAndPitchStage{rate: 1}
	if rate != nil {
		st.rate = float64(*rate)
	}
	if pitch != nil {
		st.cents = float64(*pitch)
	}
	return st
}

func (st *RateAndPitchStage) Kind() Kind { return KindRateAndPitch }

// Rate returns the speed multiplier.
func (st *RateAndPitchStage) Rate() float64 { return st.rate }

// Cents returns the pitch shift.
func (st *RateAndPitchStage) Cents() float64 { return st.cents }

// PitchRatio returns the frequency multiplier for the pitch shift.
func (st *RateAndPitchStage) PitchRatio() float64 {
	return math.Pow(2, st.cents/1200)
}

// IsIdentity reports whether the stage passes audio through untouched.
func (st *RateAndPitchStage) IsIdentity() bool {
	return st.rate == 1 && st.cents == 0
}

func (st *RateAndPitchStage) Speed() float64 { return st.rate }

// Apply stretches time by pitch/rate without changing pitch, then resamples
// by the pitch ratio. The result plays 1/rate as long at the shifted pitch.
func (st *RateAndPitchStage) Apply(in beep.Streamer, _ audio.Format) beep.Streamer {
	if st.IsIdentity() || st.rate <= 0 {
		return in
	}

	ratio := st.PitchRatio()
	s := in
	if stretch := ratio / st.rate; stretch != 1 {
		s = newStretcher(s, stretch)
	}
	if ratio != 1 {
		s = beep.ResampleRatio(resampleQuality, ratio, s)
	}
	return s
}

func (st *RateAndPitchStage) String() string {
	return fmt.Sprintf("rate-pitch(rate=%g, pitch=%+gc)", st.rate, st.cents)
}

// stretcher is a WSOLA time-scale modifier. Output is stretch times as long
// as the input with the same pitch.
type stretcher struct {
	src     beep.Streamer
	stretch float64
	window  []float64
	readBuf [][2]float64

	in      [][2]float64
	base    int
	total   int
	srcDone bool

	k       int
	prevPos int
	overlap [][2]float64
	pending [][2]float64
	emitted int
}

func newStretcher(src beep.Streamer, stretch float64) *stretcher {
	w := make([]float64, wsolaFrame)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/wsolaFrame)
	}
	return &stretcher{
		src:     src,
		stretch: stretch,
		window:  w,
		readBuf: make([][2]float64, 512),
		prevPos: -1,
		overlap: make([][2]float64, wsolaFrame),
	}
}

func (s *stretcher) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) {
		if len(s.pending) == 0 {
			if s.srcDone && s.emitted >= s.target() {
				break
			}
			s.step()
			continue
		}
		if s.srcDone {
			rem := s.target() - s.emitted
			if rem <= 0 {
				s.pending = nil
				break
			}
			if len(s.pending) > rem {
				s.pending = s.pending[:rem]
			}
		}
		c := copy(samples[n:], s.pending)
		s.pending = s.pending[c:]
		s.emitted += c
		n += c
	}
	return n, n > 0
}

func (s *stretcher) Err() error { return s.src.Err() }

func (s *stretcher) target() int {
	return int(math.Round(float64(s.total) * s.stretch))
}

// fill reads from the source until absolute index end is buffered.
func (s *stretcher) fill(end int) {
	for !s.srcDone && s.base+len(s.in) < end {
		n, ok := s.src.Stream(s.readBuf)
		s.in = append(s.in, s.readBuf[:n]...)
		s.total += n
		if !ok {
			s.srcDone = true
		}
	}
}

func (s *stretcher) at(i int) [2]float64 {
	i -= s.base
	if i < 0 || i >= len(s.in) {
		return [2]float64{}
	}
	return s.in[i]
}

func (s *stretcher) corr(a, b int) float64 {
	var c float64
	for i := 0; i < wsolaHop; i += 2 {
		x, y := s.at(a+i), s.at(b+i)
		c += (x[0] + x[1]) * (y[0] + y[1])
	}
	return c
}

func (s *stretcher) nominal(k int) int {
	return int(float64(k*wsolaHop) / s.stretch)
}

func (s *stretcher) step() {
	pos := s.nominal(s.k)
	s.fill(pos + wsolaTolerance + wsolaFrame)

	if s.prevPos >= 0 {
		natural := s.prevPos + wsolaHop
		best := s.corr(natural, pos)
		lo := max(pos-wsolaTolerance, s.base)
		hi := pos + wsolaTolerance
		center := pos
		for cand := lo; cand <= hi; cand += 2 {
			if cand == center {
				continue
			}
			if c := s.corr(natural, cand); c > best {
				best, pos = c, cand
			}
		}
	}

	for i := 0; i < wsolaFrame; i++ {
		f := s.at(pos + i)
		s.overlap[i][0] += s.window[i] * f[0]
		s.overlap[i][1] += s.window[i] * f[1]
	}
	s.pending = append(s.pending[:0], s.overlap[:wsolaHop]...)
	copy(s.overlap, s.overlap[wsolaHop:])
	for i := wsolaFrame - wsolaHop; i < wsolaFrame; i++ {
		s.overlap[i] = [2]float64{}
	}

	s.prevPos = pos
	s.k++
	s.trim()
}

// trim drops input no future frame can reach.
func (s *stretcher) trim() {
	keep := min(s.prevPos+wsolaHop, s.nominal(s.k)-wsolaTolerance)
	drop := keep - s.base
	if drop <= 0 {
		return
	}
	if drop > len(s.in) {
		drop = len(s.in)
	}
	s.in = s.in[drop:]
	s.base += drop
}
