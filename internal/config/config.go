// Package config holds the application settings and loads them from viper.
package config

import (
	"fmt"
	"time"

	"github.com/dgnsrekt/pitchperfect/internal/audio"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
)

// DefaultRecordingName is the file the recorder writes into its directory.
const DefaultRecordingName = "recordedVoice.wav"

// Config contains all settings.
type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Playback PlaybackConfig `yaml:"playback"`
	Recorder RecorderConfig `yaml:"recorder"`
	Speech   SpeechConfig   `yaml:"speech"`
	Cache    CacheConfig    `yaml:"cache"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
}

// AudioConfig selects and sizes the output device.
type AudioConfig struct {
	Mode       string        `yaml:"mode" env:"PITCHPERFECT_AUDIO_MODE"`
	BufferSize time.Duration `yaml:"buffer_size" env:"PITCHPERFECT_AUDIO_BUFFER_SIZE"`
}

// PlaybackConfig holds playback defaults.
type PlaybackConfig struct {
	// Effect is the preset used by play and export when no flag is given.
	Effect string `yaml:"effect" env:"PITCHPERFECT_PLAYBACK_EFFECT"`
}

// RecorderConfig describes where and how recordings are captured.
type RecorderConfig struct {
	Dir        string `yaml:"dir" env:"PITCHPERFECT_RECORDER_DIR"`
	FileName   string `yaml:"file_name" env:"PITCHPERFECT_RECORDER_FILE_NAME"`
	SampleRate int    `yaml:"sample_rate" env:"PITCHPERFECT_RECORDER_SAMPLE_RATE"`
	Channels   int    `yaml:"channels" env:"PITCHPERFECT_RECORDER_CHANNELS"`
}

// SpeechConfig configures the external transcription command.
type SpeechConfig struct {
	// Command is run with the recording path appended; empty disables
	// transcription.
	Command string        `yaml:"command" env:"PITCHPERFECT_SPEECH_COMMAND"`
	Timeout time.Duration `yaml:"timeout" env:"PITCHPERFECT_SPEECH_TIMEOUT"`
}

// CacheConfig configures the rendered take cache.
type CacheConfig struct {
	Dir              string `yaml:"dir" env:"PITCHPERFECT_CACHE_DIR"`
	MaxSize          int64  `yaml:"max_size" env:"PITCHPERFECT_CACHE_MAX_SIZE"`
	CompressionLevel int    `yaml:"compression_level" env:"PITCHPERFECT_CACHE_COMPRESSION_LEVEL"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the exporter.
	Addr string `yaml:"addr" env:"PITCHPERFECT_METRICS_ADDR"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// Interval is the quiet period after the last write before rendering.
	Interval time.Duration `yaml:"interval" env:"PITCHPERFECT_WATCH_INTERVAL"`
	// RateLimit is the maximum renders per second.
	RateLimit float64 `yaml:"rate_limit" env:"PITCHPERFECT_WATCH_RATE_LIMIT"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{
			Mode: "auto",
		},
		Recorder: RecorderConfig{
			FileName:   DefaultRecordingName,
			SampleRate: audio.DefaultSampleRate,
			Channels:   1,
		},
		Speech: SpeechConfig{
			Timeout: 60 * time.Second,
		},
		Cache: CacheConfig{
			MaxSize:          512 * 1024 * 1024,
			CompressionLevel: 3,
		},
		Watch: WatchConfig{
			Interval:  500 * time.Millisecond,
			RateLimit: 2,
		},
	}
}

// Validate checks the configuration and normalises the audio mode.
func (c *Config) Validate() error {
	mode, err := audio.ParseMode(c.Audio.Mode)
	if err != nil {
		return err
	}
	c.Audio.Mode = mode.String()

	if c.Audio.BufferSize < 0 || c.Audio.BufferSize > 2*time.Second {
		return fmt.Errorf("audio buffer_size must be between 0 and 2s, got %v", c.Audio.BufferSize)
	}

	if c.Playback.Effect != "" {
		if _, err := effects.Lookup(c.Playback.Effect); err != nil {
			return fmt.Errorf("playback effect: %w", err)
		}
	}

	if err := c.Recorder.Validate(); err != nil {
		return fmt.Errorf("recorder config: %w", err)
	}

	if c.Speech.Timeout < time.Second {
		return fmt.Errorf("speech timeout must be at least 1 second, got %v", c.Speech.Timeout)
	}

	if c.Cache.MaxSize < 0 {
		return fmt.Errorf("cache max_size must not be negative, got %d", c.Cache.MaxSize)
	}
	if c.Cache.CompressionLevel < 0 || c.Cache.CompressionLevel > 22 {
		return fmt.Errorf("cache compression_level must be between 0 and 22, got %d", c.Cache.CompressionLevel)
	}

	if c.Watch.Interval < 0 {
		return fmt.Errorf("watch interval must not be negative, got %v", c.Watch.Interval)
	}
	if c.Watch.RateLimit <= 0 {
		return fmt.Errorf("watch rate_limit must be positive, got %v", c.Watch.RateLimit)
	}

	return nil
}

// Validate checks the recorder settings.
func (c *RecorderConfig) Validate() error {
	if c.FileName == "" {
		return fmt.Errorf("file_name cannot be empty")
	}
	format := audio.Format{SampleRate: c.SampleRate, Channels: c.Channels, BitDepth: audio.DefaultBitDepth}
	return format.Validate()
}

// AudioMode returns the parsed audio mode.
func (c *Config) AudioMode() audio.Mode {
	mode, _ := audio.ParseMode(c.Audio.Mode)
	return mode
}

// RecorderFormat returns the capture format.
func (c *Config) RecorderFormat() audio.Format {
	return audio.Format{
		SampleRate: c.Recorder.SampleRate,
		Channels:   c.Recorder.Channels,
		BitDepth:   audio.DefaultBitDepth,
	}
}
