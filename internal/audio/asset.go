package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// Asset is a fully decoded take. It is immutable once created; every
// playback cycle reads it through a fresh streamer.
type Asset struct {
	path   string
	format Format
	buffer *beep.Buffer
}

// NewAsset drains s into memory and returns the resulting asset.
func NewAsset(path string, format Format, s beep.Streamer) (*Asset, error) {
	if err := format.Validate(); err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}

	buf := beep.NewBuffer(bufferFormat(format))
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, &AudioFileError{Path: path, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &AudioFileError{Path: path, Err: ErrEmptyAsset}
	}

	return &Asset{
		path:   path,
		format: format,
		buffer: buf,
	}, nil
}

// NewAssetFromFrames builds an asset from raw frames.
func NewAssetFromFrames(path string, format Format, frames [][2]float64) (*Asset, error) {
	return NewAsset(path, format, &frameStreamer{frames: frames})
}

// Path returns the file the asset was loaded from, if any.
func (a *Asset) Path() string { return a.path }

// Format returns the processing format.
func (a *Asset) Format() Format { return a.format }

// SampleRate returns the sample rate in Hz.
func (a *Asset) SampleRate() float64 { return float64(a.format.SampleRate) }

// Length returns the total number of sample frames.
func (a *Asset) Length() int64 { return int64(a.buffer.Len()) }

// Duration returns the unscaled playback duration.
func (a *Asset) Duration() time.Duration {
	return a.format.Beep().SampleRate.D(a.buffer.Len())
}

// Streamer returns a new streamer positioned at the first frame.
func (a *Asset) Streamer() beep.StreamSeeker {
	return a.buffer.Streamer(0, a.buffer.Len())
}

// bufferFormat keeps the in-memory precision within what beep can encode.
func bufferFormat(f Format) beep.Format {
	bf := f.Beep()
	switch {
	case bf.Precision < 2:
		bf.Precision = 2
	case bf.Precision > 3:
		bf.Precision = 3
	}
	return bf
}

type frameStreamer struct {
	frames [][2]float64
	pos    int
}

func (f *frameStreamer) Stream(samples [][2]float64) (int, bool) {
	if f.pos >= len(f.frames) {
		return 0, false
	}
	n := copy(samples, f.frames[f.pos:])
	f.pos += n
	return n, true
}

func (f *frameStreamer) Err() error { return nil }
