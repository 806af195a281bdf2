package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeS16LE(t *testing.T) {
	frames := [][2]float64{{0, 0}, {1, 1}, {-1, -1}, {0.5, -0.5}, {2, -2}}

	t.Run("stereo", func(t *testing.T) {
		dst := make([]byte, len(frames)*4)
		n := EncodeS16LE(dst, frames, 2)
		if n != len(dst) {
			t.Fatalf("EncodeS16LE() = %d, want %d", n, len(dst))
		}
		want := []int16{0, 0, math.MaxInt16, math.MaxInt16, -math.MaxInt16, -math.MaxInt16, 16383, -16383, math.MaxInt16, -math.MaxInt16}
		for i, w := range want {
			got := int16(binary.LittleEndian.Uint16(dst[i*2:]))
			if got != w {
				t.Errorf("sample %d = %d, want %d", i, got, w)
			}
		}
	})

	t.Run("mono averages channels", func(t *testing.T) {
		dst := make([]byte, len(frames)*2)
		EncodeS16LE(dst, frames, 1)
		if got := int16(binary.LittleEndian.Uint16(dst[6:])); got != 0 {
			t.Errorf("mono sample 3 = %d, want 0", got)
		}
	})

	t.Run("short destination", func(t *testing.T) {
		dst := make([]byte, 7)
		if n := EncodeS16LE(dst, frames, 2); n != 4 {
			t.Errorf("EncodeS16LE() = %d, want 4", n)
		}
	})
}

func TestDecodeS16LE(t *testing.T) {
	src := make([]byte, 8)
	EncodeS16LE(src, [][2]float64{{0.25, 0.25}, {-0.5, -0.5}, {1, 1}, {0, 0}}, 1)

	dst := make([][2]float64, 8)
	n := DecodeS16LE(dst, src, 1)
	if n != 4 {
		t.Fatalf("DecodeS16LE() = %d, want 4", n)
	}
	for i, want := range []float64{0.25, -0.5, 1, 0} {
		if math.Abs(dst[i][0]-want) > 1e-4 || dst[i][0] != dst[i][1] {
			t.Errorf("frame %d = %v, want %v on both channels", i, dst[i], want)
		}
	}
}
