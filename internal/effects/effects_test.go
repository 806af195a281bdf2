package effects

import (
	"errors"
	"math"
	"testing"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/gopxl/beep/v2"
)

type sliceStreamer struct {
	frames [][2]float64
	pos    int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

func tone(n int, sampleRate float64) [][2]float64 {
	frames := make([][2]float64, n)
	for i := range frames {
		v := 0.5 * math.Sin(2*math.Pi*220*float64(i)/sampleRate)
		frames[i] = [2]float64{v, v}
	}
	return frames
}

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 1000)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestConfigValidate(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"empty", Config{}, nil},
		{"fast", Config{Rate: Float32(1.5)}, nil},
		{"pitch only", Config{Pitch: Float32(-1000)}, nil},
		{"zero rate", Config{Rate: Float32(0)}, ErrInvalidRate},
		{"negative rate", Config{Rate: Float32(-1)}, ErrInvalidRate},
		{"nan pitch", Config{Pitch: &nan}, ErrInvalidPitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{}, "none"},
		{Config{Rate: Float32(0.5)}, "rate=0.5"},
		{Config{Pitch: Float32(1000), Echo: true}, "pitch=+1000c echo"},
		{Config{Rate: Float32(1.5), Pitch: Float32(-1000), Echo: true, Reverb: true}, "rate=1.5 pitch=-1000c echo reverb"},
	}

	for _, tt := range tests {
		if got := tt.cfg.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfigZeroIsNotUnset(t *testing.T) {
	unset := Config{}
	zero := Config{Pitch: Float32(0)}
	if !unset.IsZero() {
		t.Error("empty config should be zero")
	}
	if zero.IsZero() {
		t.Error("explicit pitch 0 should not count as unset")
	}
	if unset.RateValue() != 1 {
		t.Errorf("RateValue() = %v, want 1", unset.RateValue())
	}
}

func TestChain(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		kinds []Kind
	}{
		{"empty", Config{}, []Kind{KindRateAndPitch, KindOutput}},
		{"echo", Config{Echo: true}, []Kind{KindRateAndPitch, KindEcho, KindOutput}},
		{"reverb", Config{Reverb: true}, []Kind{KindRateAndPitch, KindReverb, KindOutput}},
		{"both", Config{Rate: Float32(1.5), Echo: true, Reverb: true}, []Kind{KindRateAndPitch, KindEcho, KindReverb, KindOutput}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := Chain(tt.cfg)
			if len(stages) != len(tt.kinds) {
				t.Fatalf("len(Chain()) = %d, want %d", len(stages), len(tt.kinds))
			}
			for i, st := range stages {
				if st.Kind() != tt.kinds[i] {
					t.Errorf("stage %d = %v, want %v", i, st.Kind(), tt.kinds[i])
				}
			}
			if got, want := Speed(stages), tt.cfg.RateValue(); got != want {
				t.Errorf("Speed() = %v, want %v", got, want)
			}
		})
	}
}

func TestRateAndPitchIdentity(t *testing.T) {
	st := NewRateAndPitch(nil, nil)
	if !st.IsIdentity() {
		t.Fatal("unset stage should be identity")
	}
	src := &sliceStreamer{frames: tone(100, 1000)}
	if got := st.Apply(src, audio.DefaultFormat()); got != beep.Streamer(src) {
		t.Error("identity stage should return its input")
	}
}

func TestRateAndPitchLength(t *testing.T) {
	const frames = 44100
	format := audio.DefaultFormat()

	tests := []struct {
		name  string
		rate  *float32
		pitch *float32
		want  int
		tol   int
	}{
		{"fast", Float32(1.5), nil, 29400, 0},
		{"slow", Float32(0.5), nil, 88200, 0},
		{"chipmunk", nil, Float32(1000), frames, frames / 100},
		{"vader", nil, Float32(-1000), frames, frames / 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewRateAndPitch(tt.rate, tt.pitch)
			out := drain(st.Apply(&sliceStreamer{frames: tone(frames, 44100)}, format))
			if d := len(out) - tt.want; d < -tt.tol || d > tt.tol {
				t.Errorf("output length = %d, want %d±%d", len(out), tt.want, tt.tol)
			}
			for i, f := range out {
				if math.IsNaN(f[0]) || math.IsInf(f[0], 0) {
					t.Fatalf("frame %d is not finite: %v", i, f)
				}
			}
		})
	}
}

func TestStretcherEmptyInput(t *testing.T) {
	s := newStretcher(&sliceStreamer{}, 2)
	buf := make([][2]float64, 10)
	if n, ok := s.Stream(buf); n != 0 || ok {
		t.Errorf("Stream() = %d, %v, want 0, false", n, ok)
	}
}

func TestEcho(t *testing.T) {
	format := audio.Format{SampleRate: 1000, Channels: 1, BitDepth: 16}
	in := make([][2]float64, 500)
	in[0] = [2]float64{1, 1}

	out := drain(NewEcho().Apply(&sliceStreamer{frames: in}, format))
	if len(out) != len(in) {
		t.Fatalf("output length = %d, want %d", len(out), len(in))
	}

	want := map[int]float64{0: 0.5, 100: 0.4, 200: 0.3, 300: 0.2, 50: 0}
	for i, w := range want {
		if math.Abs(out[i][0]-w) > 1e-9 {
			t.Errorf("out[%d] = %v, want %v", i, out[i][0], w)
		}
	}
}

func TestReverb(t *testing.T) {
	format := audio.Format{SampleRate: 22050, Channels: 2, BitDepth: 16}
	in := make([][2]float64, 22050)
	in[0] = [2]float64{1, 1}

	out := drain(NewReverb().Apply(&sliceStreamer{frames: in}, format))
	if len(out) != len(in) {
		t.Fatalf("output length = %d, want %d", len(out), len(in))
	}
	if math.Abs(out[0][0]-0.5) > 1e-9 {
		t.Errorf("dry impulse = %v, want 0.5", out[0][0])
	}

	var tail float64
	for _, f := range out[1000:] {
		if math.IsNaN(f[0]) || math.IsInf(f[0], 0) {
			t.Fatal("reverb produced a non-finite sample")
		}
		tail += math.Abs(f[0]) + math.Abs(f[1])
	}
	if tail == 0 {
		t.Error("reverb produced no tail")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"slow", "slow", false},
		{"CHIPMUNK", "chipmunk", false},
		{"4", "vader", false},
		{"chip", "chipmunk", false},
		{"vdr", "vader", false},
		{"zzz", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Lookup(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPreset) {
					t.Errorf("Lookup(%q) error = %v, want %v", tt.in, err, ErrUnknownPreset)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.in, err)
			}
			if got.Name != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.in, got.Name, tt.want)
			}
		})
	}
}

func TestPresetConfigs(t *testing.T) {
	for _, p := range Presets {
		if err := p.Config.Validate(); err != nil {
			t.Errorf("preset %s: Validate() = %v", p.Name, err)
		}
		if got, ok := ByKey(p.Key); !ok || got.Name != p.Name {
			t.Errorf("ByKey(%q) = %v, %v", p.Key, got.Name, ok)
		}
	}
}

func TestPitchPresetDescriptions(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"chipmunk", "Pitch up ten semitones"},
		{"vader", "Pitch down ten semitones"},
	}
	for _, tt := range tests {
		p, err := Lookup(tt.name)
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", tt.name, err)
		}
		if p.Description != tt.want {
			t.Errorf("%s description = %q, want %q", tt.name, p.Description, tt.want)
		}
		if semitones := math.Abs(float64(*p.Config.Pitch)) / 100; semitones != 10 {
			t.Errorf("%s shifts %v semitones, want 10", tt.name, semitones)
		}
	}
}
