package audio

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
)

// Format constants used when nothing else is known about a take.
const (
	// DefaultSampleRate is the sample rate recordings are captured at.
	DefaultSampleRate = 44100
	// DefaultChannels is the channel count recordings are captured with.
	DefaultChannels = 1
	// DefaultBitDepth is the PCM bit depth used on the wire.
	DefaultBitDepth = 16
)

var (
	// ErrInvalidSampleRate indicates a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrInvalidChannels indicates an unsupported channel count.
	ErrInvalidChannels = errors.New("invalid number of channels")
	// ErrInvalidBitDepth indicates an unsupported bit depth.
	ErrInvalidBitDepth = errors.New("invalid bit depth")
)

// Format is the processing format of an asset. Every link in a playback
// graph carries the same Format.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns the format recordings are captured in.
func DefaultFormat() Format {
	return Format{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// FromBeep converts a beep format.
func FromBeep(f beep.Format) Format {
	return Format{
		SampleRate: int(f.SampleRate),
		Channels:   f.NumChannels,
		BitDepth:   f.Precision * 8,
	}
}

// Beep converts the format for use with beep encoders and resamplers.
func (f Format) Beep() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(f.SampleRate),
		NumChannels: f.Channels,
		Precision:   f.BitDepth / 8,
	}
}

// BytesPerFrame returns the size of one interleaved frame.
func (f Format) BytesPerFrame() int {
	return f.BitDepth / 8 * f.Channels
}

// Validate checks the format is something the engine can render.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, f.Channels)
	}
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, f.BitDepth)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit", f.SampleRate, f.Channels, f.BitDepth)
}
