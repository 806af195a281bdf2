package audio

import (
	"encoding/binary"
	"math"
)

// BytesPerSample is the size of one signed 16-bit sample.
const BytesPerSample = 2

// EncodeS16LE writes frames into dst as interleaved signed 16-bit
// little-endian samples and returns the number of bytes written. Mono output
// averages both channels. Frames that do not fit are ignored.
func EncodeS16LE(dst []byte, frames [][2]float64, channels int) int {
	frameSize := BytesPerSample * channels
	n := 0
	for _, fr := range frames {
		if n+frameSize > len(dst) {
			break
		}
		if channels == 1 {
			binary.LittleEndian.PutUint16(dst[n:], uint16(toInt16((fr[0]+fr[1])/2)))
		} else {
			binary.LittleEndian.PutUint16(dst[n:], uint16(toInt16(fr[0])))
			binary.LittleEndian.PutUint16(dst[n+2:], uint16(toInt16(fr[1])))
		}
		n += frameSize
	}
	return n
}

// DecodeS16LE reads interleaved signed 16-bit little-endian samples from src
// into dst and returns the number of frames decoded. Mono input is copied to
// both channels.
func DecodeS16LE(dst [][2]float64, src []byte, channels int) int {
	frameSize := BytesPerSample * channels
	n := 0
	for off := 0; off+frameSize <= len(src) && n < len(dst); off += frameSize {
		l := float64(int16(binary.LittleEndian.Uint16(src[off:]))) / math.MaxInt16
		r := l
		if channels > 1 {
			r = float64(int16(binary.LittleEndian.Uint16(src[off+2:]))) / math.MaxInt16
		}
		dst[n] = [2]float64{l, r}
		n++
	}
	return n
}

func toInt16(v float64) int16 {
	switch {
	case v >= 1:
		return math.MaxInt16
	case v <= -1:
		return -math.MaxInt16
	default:
		return int16(v * math.MaxInt16)
	}
}
