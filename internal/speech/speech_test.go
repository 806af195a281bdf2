package speech

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "recognize.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func recording(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recordedVoice.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func TestUnavailable(t *testing.T) {
	var r Recognizer = Unavailable{}

	assert.False(t, r.Available())
	text, err := r.Transcribe(context.Background(), "x.wav", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, DefaultText, text)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Unavailable{}, New("", time.Second))
	assert.IsType(t, Unavailable{}, New("definitely-not-a-recognizer-binary", time.Second))

	r := New(script(t, "echo hi\n")+" --plain", 0)
	require.IsType(t, &CommandRecognizer{}, r)
	cr := r.(*CommandRecognizer)
	assert.Equal(t, []string{"--plain"}, cr.args)
	assert.Equal(t, DefaultTimeoutConfig().Timeout, cr.config.Timeout)
}

func TestCommandRecognizerPartials(t *testing.T) {
	cmd := script(t, "echo hello\necho\necho \"from $(basename \"$1\")\"\n")
	r := NewCommandRecognizer(cmd, nil, DefaultTimeoutConfig())

	var partials []string
	text, err := r.Transcribe(context.Background(), recording(t), func(s string) {
		partials = append(partials, s)
	})

	require.NoError(t, err)
	assert.True(t, r.Available())
	assert.Equal(t, "hello from recordedVoice.wav", text)
	assert.Equal(t, []string{"hello", "hello from recordedVoice.wav"}, partials)
}

func TestCommandRecognizerFailure(t *testing.T) {
	cmd := script(t, "echo partial\necho 'no network' >&2\nexit 3\n")
	r := NewCommandRecognizer(cmd, nil, DefaultTimeoutConfig())

	text, err := r.Transcribe(context.Background(), recording(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no network")
	assert.Equal(t, "partial", text)
}

func TestCommandRecognizerTimeout(t *testing.T) {
	cmd := script(t, "echo started\nexec sleep 5\n")
	r := NewCommandRecognizer(cmd, nil, TimeoutConfig{
		Timeout:     200 * time.Millisecond,
		GracePeriod: 100 * time.Millisecond,
	})

	start := time.Now()
	text, err := r.Transcribe(context.Background(), recording(t), nil)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "started", text)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestCommandRecognizerMissingRecording(t *testing.T) {
	r := NewCommandRecognizer("true", nil, DefaultTimeoutConfig())

	_, err := r.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
