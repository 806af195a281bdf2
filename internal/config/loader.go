package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadFromViper reads every key viper knows about over the defaults.
func LoadFromViper(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("audio.mode") {
		cfg.Audio.Mode = v.GetString("audio.mode")
	}
	if v.IsSet("audio.buffer_size") {
		cfg.Audio.BufferSize = duration(v, "audio.buffer_size", cfg.Audio.BufferSize)
	}

	if v.IsSet("playback.effect") {
		cfg.Playback.Effect = v.GetString("playback.effect")
	}

	if v.IsSet("recorder.dir") {
		cfg.Recorder.Dir = v.GetString("recorder.dir")
	}
	if v.IsSet("recorder.file_name") {
		cfg.Recorder.FileName = v.GetString("recorder.file_name")
	}
	if v.IsSet("recorder.sample_rate") {
		cfg.Recorder.SampleRate = v.GetInt("recorder.sample_rate")
	}
	if v.IsSet("recorder.channels") {
		cfg.Recorder.Channels = v.GetInt("recorder.channels")
	}

	if v.IsSet("speech.command") {
		cfg.Speech.Command = v.GetString("speech.command")
	}
	if v.IsSet("speech.timeout") {
		cfg.Speech.Timeout = duration(v, "speech.timeout", cfg.Speech.Timeout)
	}

	if v.IsSet("cache.dir") {
		cfg.Cache.Dir = v.GetString("cache.dir")
	}
	if v.IsSet("cache.max_size") {
		cfg.Cache.MaxSize = v.GetInt64("cache.max_size")
	}
	if v.IsSet("cache.compression_level") {
		cfg.Cache.CompressionLevel = v.GetInt("cache.compression_level")
	}

	if v.IsSet("metrics.addr") {
		cfg.Metrics.Addr = v.GetString("metrics.addr")
	}

	if v.IsSet("watch.interval") {
		cfg.Watch.Interval = duration(v, "watch.interval", cfg.Watch.Interval)
	}
	if v.IsSet("watch.rate_limit") {
		cfg.Watch.RateLimit = v.GetFloat64("watch.rate_limit")
	}

	// PITCHPERFECT_* variables win over the file.
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// duration accepts both "250ms" strings and bare numbers of nanoseconds.
func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(v.GetString(key)); err == nil {
		return d
	}
	if d := v.GetDuration(key); d != 0 {
		return d
	}
	return fallback
}

// SetDefaults registers the defaults with viper so they show up in
// AllSettings and the generated config file.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("audio.mode", d.Audio.Mode)
	v.SetDefault("audio.buffer_size", d.Audio.BufferSize.String())

	v.SetDefault("playback.effect", d.Playback.Effect)

	v.SetDefault("recorder.file_name", d.Recorder.FileName)
	v.SetDefault("recorder.sample_rate", d.Recorder.SampleRate)
	v.SetDefault("recorder.channels", d.Recorder.Channels)

	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.timeout", d.Speech.Timeout.String())

	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.compression_level", d.Cache.CompressionLevel)

	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetDefault("watch.interval", d.Watch.Interval.String())
	v.SetDefault("watch.rate_limit", d.Watch.RateLimit)
}

// Template is written by `pitchperfect config` when no file exists yet.
const Template = `# pitchperfect configuration

audio:
  # auto, device or mock
  mode: auto
  # device buffer; 0 picks a platform default
  buffer_size: 0s

playback:
  # default effect preset: slow, fast, chipmunk, vader, echo, reverb
  effect: ""

recorder:
  dir: ""
  file_name: recordedVoice.wav
  sample_rate: 44100
  channels: 1

speech:
  # command that prints a transcription for the file path appended to it
  command: ""
  timeout: 60s

cache:
  dir: ""
  max_size: 536870912
  compression_level: 3

metrics:
  # e.g. localhost:9464
  addr: ""

watch:
  interval: 500ms
  rate_limit: 2
`
