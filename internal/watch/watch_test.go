package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
	return r.err
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func newTestWatcher(t *testing.T, cfg Config, h Handler) *Watcher {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1000
	}
	w, err := New(cfg, h)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })
	return w
}

func write(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("RIFF...."), 0o644))
	return path
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{}, func(context.Context, string) error { return nil })
	assert.Error(t, err)

	_, err = New(Config{Dir: t.TempDir()}, nil)
	assert.Error(t, err)

	_, err = New(Config{Dir: filepath.Join(t.TempDir(), "missing")}, func(context.Context, string) error { return nil })
	assert.Error(t, err)
}

func TestAccepts(t *testing.T) {
	w := newTestWatcher(t, Config{
		Ignore: func(p string) bool { return strings.HasSuffix(p, "-vader.wav") },
	}, (&recorder{}).handle)

	tests := []struct {
		path string
		want bool
	}{
		{"voice.wav", true},
		{"VOICE.M4A", true},
		{"notes.txt", false},
		{".voice.wav", false},
		{"voice-vader.wav", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Accepts(tt.path), tt.path)
	}
}

func TestFlushDebouncesAndDeduplicates(t *testing.T) {
	rec := &recorder{}
	w := newTestWatcher(t, Config{Interval: time.Second}, rec.handle)
	path := write(t, w.config.Dir, "take.wav")

	t0 := time.Now()
	w.observe(path, t0)
	w.observe(path, t0.Add(500*time.Millisecond))

	require.NoError(t, w.flush(context.Background(), t0.Add(time.Second)))
	assert.Empty(t, rec.seen(), "file still settling")

	require.NoError(t, w.flush(context.Background(), t0.Add(1500*time.Millisecond)))
	assert.Equal(t, []string{"take.wav"}, rec.seen())

	// Same version again is skipped.
	w.observe(path, t0.Add(2*time.Second))
	require.NoError(t, w.flush(context.Background(), t0.Add(4*time.Second)))
	assert.Len(t, rec.seen(), 1)
	assert.Equal(t, Stats{Handled: 1, Skipped: 1}, w.Stats())
}

func TestFlushCountsFailuresAndRetries(t *testing.T) {
	rec := &recorder{err: errors.New("decode failed")}
	w := newTestWatcher(t, Config{Interval: time.Millisecond}, rec.handle)
	path := write(t, w.config.Dir, "bad.wav")

	now := time.Now()
	w.observe(path, now)
	require.NoError(t, w.flush(context.Background(), now.Add(time.Second)))
	w.observe(path, now)
	require.NoError(t, w.flush(context.Background(), now.Add(time.Second)))

	assert.Len(t, rec.seen(), 2)
	assert.Equal(t, 2, w.Stats().Failed)
}

func TestFlushHonoursCancelledContext(t *testing.T) {
	rec := &recorder{}
	w := newTestWatcher(t, Config{Interval: time.Millisecond, RateLimit: 0.001}, rec.handle)
	w.limiter.Allow() // use up the burst

	path := write(t, w.config.Dir, "take.wav")
	now := time.Now()
	w.observe(path, now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, w.flush(ctx, now.Add(time.Second)))
	assert.Empty(t, rec.seen())
}

func TestRunHandlesNewRecordings(t *testing.T) {
	rec := &recorder{}
	dir := t.TempDir()
	write(t, dir, "existing.wav")

	w := newTestWatcher(t, Config{
		Dir:             dir,
		Interval:        50 * time.Millisecond,
		ProcessExisting: true,
	}, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(rec.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)

	write(t, dir, "new.wav")
	write(t, dir, "ignored.txt")

	assert.Eventually(t, func() bool { return len(rec.seen()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"existing.wav", "new.wav"}, rec.seen())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
