package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAsset indicates playback was requested before a take was loaded.
	ErrNoAsset = errors.New("no audio asset loaded")

	// ErrNoDevice indicates a graph was built without an output device.
	ErrNoDevice = errors.New("no output device")

	// ErrNoDispatcher indicates a graph was built without a dispatcher.
	ErrNoDispatcher = errors.New("no dispatcher")

	// ErrGraphStopped indicates a stopped graph was started again.
	ErrGraphStopped = errors.New("playback graph was stopped")

	// ErrGraphStarted indicates a graph was started twice.
	ErrGraphStarted = errors.New("playback graph already started")
)

// AudioEngineErrorTitle is the alert title for graph and engine failures.
const AudioEngineErrorTitle = "Audio Engine Error"

// AudioGraphError reports that a graph could not be constructed.
type AudioGraphError struct {
	Node string
	Err  error
}

func (e *AudioGraphError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("unable to build playback graph: %v", e.Err)
	}
	return fmt.Sprintf("unable to build playback graph at %s: %v", e.Node, e.Err)
}

// Unwrap returns the underlying error.
func (e *AudioGraphError) Unwrap() error { return e.Err }

// Title returns the alert title for this error.
func (e *AudioGraphError) Title() string { return AudioEngineErrorTitle }

// IsFatal reports whether the screen cannot recover.
func (e *AudioGraphError) IsFatal() bool { return false }

// IsRetryable reports whether playing again may succeed.
func (e *AudioGraphError) IsRetryable() bool { return true }

// AudioEngineStartError reports that the engine refused to start. The graph
// is discarded; the user may try again.
type AudioEngineStartError struct {
	Err error
}

func (e *AudioEngineStartError) Error() string {
	return fmt.Sprintf("unable to start audio engine: %v", e.Err)
}

// Unwrap returns the underlying diagnostic.
func (e *AudioEngineStartError) Unwrap() error { return e.Err }

// Title returns the alert title for this error.
func (e *AudioEngineStartError) Title() string { return AudioEngineErrorTitle }

// IsFatal reports whether the screen cannot recover.
func (e *AudioEngineStartError) IsFatal() bool { return false }

// IsRetryable reports whether playing again may succeed.
func (e *AudioEngineStartError) IsRetryable() bool { return true }

// alertTitle picks the alert title for err.
func alertTitle(err error) string {
	var titled interface{ Title() string }
	if errors.As(err, &titled) {
		return titled.Title()
	}
	return AudioEngineErrorTitle
}
