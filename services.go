package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/cache"
	"github.com/dgnsrekt/pitchperfect/internal/metrics"
	"github.com/dgnsrekt/pitchperfect/internal/playback"
	"github.com/dgnsrekt/pitchperfect/internal/recorder"
	"github.com/dgnsrekt/pitchperfect/internal/speech"
	"github.com/dgnsrekt/pitchperfect/utils"
	gap "github.com/muesli/go-app-paths"
)

var errNoAudio = errors.New("no audio output available: set audio.mode to device or mock, or use export to render the take")

// recordingPath is where the recorder writes and where the TUI looks for
// the last take.
func recordingPath() string {
	name := appConfig.Recorder.FileName
	if dir := appConfig.Recorder.Dir; dir != "" {
		return filepath.Join(utils.ExpandPath(dir), name)
	}
	p, err := gap.NewScope(gap.User, "pitchperfect").DataPath(name)
	if err != nil {
		return name
	}
	return p
}

func cacheDir() string {
	if dir := appConfig.Cache.Dir; dir != "" {
		return utils.ExpandPath(dir)
	}
	dir, err := gap.NewScope(gap.User, "pitchperfect").CacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "takes")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// openDevice opens the configured output device and reports whether real
// playback should be attempted.
func openDevice() (audio.Device, bool, error) {
	mode := appConfig.AudioMode()
	dev, err := audio.NewDevice(mode, audio.DefaultFormat(), appConfig.Audio.BufferSize)
	if err != nil {
		return nil, false, err
	}

	capable := true
	if mode == audio.ModeAuto {
		capable = audio.DetectCapability()
	}
	log.Debug("Audio output ready", "mode", mode, "capable", capable)
	return dev, capable, nil
}

func newRecorder(path string) (*recorder.Recorder, error) {
	format := appConfig.RecorderFormat()
	src, err := recorder.NewMalgoSource(format)
	if err != nil {
		return nil, err
	}
	rec, err := recorder.New(src, format, path)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return rec, nil
}

func newRecognizer() speech.Recognizer {
	return speech.New(appConfig.Speech.Command, appConfig.Speech.Timeout)
}

func newObserver() playback.Observer {
	return metrics.NewListener()
}

// newStore opens the render cache, or returns nil when it cannot be used.
func newStore() *cache.Store {
	dir := cacheDir()
	if dir == "" || appConfig.Cache.MaxSize == 0 {
		return nil
	}

	cfg := cache.DefaultConfig()
	cfg.Dir = dir
	cfg.DiskCapacity = appConfig.Cache.MaxSize
	cfg.CompressionLevel = appConfig.Cache.CompressionLevel
	store, err := cache.NewStore(cfg)
	if err != nil {
		log.Warn("Render cache disabled", "dir", dir, "error", err)
		return nil
	}
	return store
}

// startMetrics serves the Prometheus endpoint when configured and returns
// a function that shuts it down.
func startMetrics() func() {
	addr := appConfig.Metrics.Addr
	if addr == "" {
		return func() {}
	}

	exporter := metrics.NewExporter(addr)
	go func() {
		if err := exporter.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	log.Info("Serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := exporter.Shutdown(ctx); err != nil {
			log.Warn("Metrics server shutdown failed", "error", err)
		}
	}
}
