package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAsset indicates the file decoded to zero frames.
	ErrEmptyAsset = errors.New("audio file contains no samples")

	// ErrNoAudioStream indicates the container holds no audio stream.
	ErrNoAudioStream = errors.New("no audio stream found")

	// ErrDeviceUnavailable indicates the output device cannot be used.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrDeviceClosed indicates the device was closed.
	ErrDeviceClosed = errors.New("audio device closed")
)

// AudioFileErrorTitle is the alert title used for load failures.
const AudioFileErrorTitle = "Audio File Error"

// AudioFileError reports that a take could not be loaded. No partial asset
// is ever returned alongside it.
type AudioFileError struct {
	Path string
	Err  error
}

func (e *AudioFileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unable to load audio: %v", e.Err)
	}
	return fmt.Sprintf("unable to load audio %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *AudioFileError) Unwrap() error { return e.Err }

// Title returns the alert title for this error.
func (e *AudioFileError) Title() string { return AudioFileErrorTitle }

// IsFatal reports that the playback screen cannot recover.
func (e *AudioFileError) IsFatal() bool { return true }

// IsRetryable reports that loading again will not help.
func (e *AudioFileError) IsRetryable() bool { return false }
