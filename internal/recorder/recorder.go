// Package recorder captures a voice take from a Source and writes it as a
// 16-bit WAV file.
package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/metrics"
)

var (
	// ErrNothingRecorded is returned by Stop when no samples arrived.
	ErrNothingRecorded = errors.New("nothing was recorded")
	// ErrInvalidTransition is returned when an action is not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("invalid recorder transition")
)

// Recorder toggles between recording and paused and finalises the take on
// Stop.
//
// mu guards the state machine and is held across source calls. The capture
// callback only takes bufMu, since stopping a source waits for a callback
// that is already running.
type Recorder struct {
	mu       sync.Mutex
	source   Source
	format   audio.Format
	path     string
	state    State
	onChange func(State)

	bufMu     sync.Mutex
	capturing bool
	pcm       []byte
}

// New creates a recorder that writes to path.
func New(source Source, format audio.Format, path string) (*Recorder, error) {
	if source == nil {
		return nil, errors.New("recorder needs a capture source")
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Recorder{
		source: source,
		format: format,
		path:   path,
		state:  StateStopped,
	}, nil
}

// OnChange registers fn to run after every state change.
func (r *Recorder) OnChange(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Path returns the output file.
func (r *Recorder) Path() string { return r.path }

// State returns the current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Duration returns how much audio has been captured.
func (r *Recorder) Duration() time.Duration {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	frames := len(r.pcm) / r.format.BytesPerFrame()
	return time.Duration(frames) * time.Second / time.Duration(r.format.SampleRate)
}

// Record starts a new take when stopped, pauses a running take and
// resumes a paused one.
func (r *Recorder) Record() error {
	r.mu.Lock()

	var next State
	switch r.state {
	case StateStopped:
		r.bufMu.Lock()
		r.pcm = r.pcm[:0]
		r.bufMu.Unlock()
		next = StateRecording
	case StateRecording:
		next = StatePaused
	case StatePaused:
		next = StateRecording
	}

	var err error
	verb := "start"
	if next == StatePaused {
		verb = "pause"
		r.setCapturing(false)
		err = r.source.Stop()
	} else {
		r.setCapturing(true)
		if err = r.source.Start(r.append); err != nil {
			r.setCapturing(false)
		}
	}
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("unable to %s capture: %w", verb, err)
	}

	fn := r.transitionLocked(next)
	r.mu.Unlock()

	if fn != nil {
		fn(next)
	}
	return nil
}

// Stop ends the take and writes it to Path.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	if !CanTransition(r.state, StateStopped) {
		r.mu.Unlock()
		return "", fmt.Errorf("%w: stop while %s", ErrInvalidTransition, r.state)
	}

	r.setCapturing(false)
	stopErr := r.source.Stop()

	r.bufMu.Lock()
	pcm := append([]byte(nil), r.pcm...)
	r.bufMu.Unlock()

	fn := r.transitionLocked(StateStopped)
	r.mu.Unlock()

	if fn != nil {
		fn(StateStopped)
	}

	err := stopErr
	if err == nil {
		err = r.write(pcm)
	}
	metrics.RecordRecording(err)
	if err != nil {
		log.Error("Recording failed", "path", r.path, "error", err)
		return "", err
	}

	log.Info("Recording saved", "path", r.path, "bytes", len(pcm))
	return r.path, nil
}

// Close releases the source.
func (r *Recorder) Close() error {
	return r.source.Close()
}

func (r *Recorder) append(pcm []byte) {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	if r.capturing {
		r.pcm = append(r.pcm, pcm...)
	}
}

func (r *Recorder) setCapturing(on bool) {
	r.bufMu.Lock()
	r.capturing = on
	r.bufMu.Unlock()
}

func (r *Recorder) transitionLocked(to State) func(State) {
	log.Debug("Recorder transition", "from", r.state, "to", to)
	r.state = to
	return r.onChange
}

func (r *Recorder) write(pcm []byte) error {
	frames := make([][2]float64, len(pcm)/r.format.BytesPerFrame())
	if len(frames) == 0 {
		return ErrNothingRecorded
	}
	audio.DecodeS16LE(frames, pcm, r.format.Channels)

	asset, err := audio.NewAssetFromFrames(r.path, r.format, frames)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create recording directory: %w", err)
	}
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	if err := audio.Encode(f, asset.Streamer(), r.format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
