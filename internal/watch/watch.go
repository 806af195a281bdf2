// Package watch renders recordings as they land in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Config configures a Watcher.
type Config struct {
	Dir string

	// Interval is how long a file must go without writes before it is
	// handled.
	Interval time.Duration

	// RateLimit is the maximum number of handled files per second.
	RateLimit float64

	// Extensions lists the accepted file extensions, lower case with the
	// leading dot.
	Extensions []string

	// Ignore, if set, skips paths it returns true for, such as rendered
	// outputs written back into Dir.
	Ignore func(path string) bool

	// ProcessExisting queues files already in Dir at start.
	ProcessExisting bool
}

// DefaultExtensions are the containers audio.Load understands.
var DefaultExtensions = []string{".wav", ".mp3", ".m4a", ".caf", ".aac", ".flac", ".ogg"}

// Stats counts handled files.
type Stats struct {
	Handled int
	Failed  int
	Skipped int
}

// Watcher debounces filesystem events and calls a Handler once per settled
// file version.
type Watcher struct {
	config  Config
	handler Handler
	limiter *rate.Limiter
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time // path -> last event
	done    map[string]time.Time // path -> modtime handled
	stats   Stats
}

// New creates a watcher for cfg.Dir.
func New(cfg Config, handler Handler) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if handler == nil {
		return nil, errors.New("watch handler is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(cfg.Dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		config:  cfg,
		handler: handler,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		watcher: fw,
		pending: make(map[string]time.Time),
		done:    make(map[string]time.Time),
	}, nil
}

// Run watches until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if w.config.ProcessExisting {
		if err := w.queueExisting(time.Now()); err != nil {
			log.Warn("Unable to scan existing files", "dir", w.config.Dir, "error", err)
		}
	}

	ticker := time.NewTicker(w.config.Interval / 2)
	defer ticker.Stop()

	log.Info("Watching for recordings", "dir", w.config.Dir, "interval", w.config.Interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.observe(event.Name, time.Now())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "error", err)
		case now := <-ticker.C:
			if err := w.flush(ctx, now); err != nil {
				return nil
			}
		}
	}
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Accepts reports whether path is a candidate recording.
func (w *Watcher) Accepts(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if w.config.Ignore != nil && w.config.Ignore(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.config.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) observe(path string, at time.Time) {
	if !w.Accepts(path) {
		return
	}
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

func (w *Watcher) queueExisting(at time.Time) error {
	entries, err := os.ReadDir(w.config.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.observe(filepath.Join(w.config.Dir, e.Name()), at.Add(-w.config.Interval))
		}
	}
	return nil
}

// flush handles every pending file that has been quiet for Interval. It
// returns the context error if ctx ends while waiting on the rate limiter.
func (w *Watcher) flush(ctx context.Context, now time.Time) error {
	w.mu.Lock()
	var due []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.config.Interval {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range due {
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			continue
		}

		w.mu.Lock()
		seen, ok := w.done[path]
		w.mu.Unlock()
		if ok && seen.Equal(info.ModTime()) {
			w.count(func(s *Stats) { s.Skipped++ })
			continue
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}

		log.Debug("Handling settled file", "path", path)
		if err := w.handler(ctx, path); err != nil {
			log.Error("Failed to handle file", "path", path, "error", err)
			w.count(func(s *Stats) { s.Failed++ })
			continue
		}

		w.mu.Lock()
		w.done[path] = info.ModTime()
		w.stats.Handled++
		w.mu.Unlock()
	}
	return nil
}

func (w *Watcher) count(fn func(*Stats)) {
	w.mu.Lock()
	fn(&w.stats)
	w.mu.Unlock()
}
