// Package speech transcribes recordings with an external recognizer.
package speech

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Texts shown in the transcript view.
const (
	DefaultText = "Transcribed text will appear here if you are connected to the internet."
	WaitingText = "Give it a moment for transcription to start..."
)

var (
	// ErrUnavailable is returned when no recognizer is configured.
	ErrUnavailable = errors.New("speech recognition unavailable")
	// ErrTimeout is returned when the recognizer ran past its deadline.
	ErrTimeout = errors.New("speech recognition timed out")
)

// Recognizer turns a recording into text.
type Recognizer interface {
	// Available reports whether Transcribe can succeed.
	Available() bool

	// Transcribe recognises the file at path. partial, if not nil, is called
	// with the full transcription so far each time it grows.
	Transcribe(ctx context.Context, path string, partial func(text string)) (string, error)
}

// New returns a CommandRecognizer for command, or Unavailable when command
// is empty or not installed.
func New(command string, timeout time.Duration) Recognizer {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return Unavailable{}
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		log.Warn("Speech command not found, transcription disabled", "command", fields[0])
		return Unavailable{}
	}
	cfg := DefaultTimeoutConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return NewCommandRecognizer(fields[0], fields[1:], cfg)
}

// Unavailable is the recognizer used when transcription is disabled.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

// Transcribe returns DefaultText and ErrUnavailable.
func (Unavailable) Transcribe(context.Context, string, func(string)) (string, error) {
	return DefaultText, ErrUnavailable
}
