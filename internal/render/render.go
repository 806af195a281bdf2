// Package render runs the effect chain offline and encodes the result as
// WAV, optionally through the take cache.
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/cache"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/metrics"
)

// ErrNoAsset is returned when Take is given nothing to render.
var ErrNoAsset = errors.New("no asset to render")

// Take renders asset through the chain built from cfg and returns WAV bytes
// in the asset's format.
func Take(asset *audio.Asset, cfg effects.Config) ([]byte, error) {
	if asset == nil {
		return nil, ErrNoAsset
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stages := effects.Chain(cfg)
	s := effects.Apply(stages, asset.Streamer(), asset.Format())

	var buf seekBuffer
	if err := audio.Encode(&buf, s, asset.Format()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Result describes a finished render.
type Result struct {
	Source  string
	Effect  string
	Data    []byte
	Cached  bool
	Elapsed time.Duration
}

// Renderer renders files, consulting a cache when one is set.
type Renderer struct {
	store *cache.Store
}

// NewRenderer creates a renderer. store may be nil.
func NewRenderer(store *cache.Store) *Renderer {
	return &Renderer{store: store}
}

// File loads path and renders it with cfg.
func (r *Renderer) File(path string, cfg effects.Config) (res Result, err error) {
	start := time.Now()
	res = Result{Source: path, Effect: cfg.String()}
	defer func() {
		res.Elapsed = time.Since(start)
		metrics.RecordRender(err, res.Cached, res.Elapsed.Seconds())
	}()

	var key string
	if r.store != nil {
		sum, err := cache.HashFile(path)
		if err != nil {
			return res, err
		}
		key = cache.TakeKey(sum, res.Effect)
		if data, level, ok := r.store.Get(key); ok {
			log.Debug("Render cache hit", "source", path, "effect", res.Effect, "level", level)
			res.Data, res.Cached = data, true
			return res, nil
		}
	}

	asset, err := audio.Load(path)
	if err != nil {
		return res, err
	}
	res.Data, err = Take(asset, cfg)
	if err != nil {
		return res, fmt.Errorf("failed to render %s: %w", path, err)
	}

	if r.store != nil {
		if err := r.store.Put(key, res.Data); err != nil {
			log.Warn("Unable to cache render", "source", path, "error", err)
		}
	}
	log.Debug("Rendered take", "source", path, "effect", res.Effect, "bytes", len(res.Data))
	return res, nil
}

// OutputName derives the file name for a render of src, e.g.
// "voice.m4a" with "vader" becomes "voice-vader.wav".
func OutputName(src, label string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if label == "" {
		return base + ".wav"
	}
	return base + "-" + label + ".wav"
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
