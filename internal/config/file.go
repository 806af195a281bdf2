package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/viper"
)

// ErrUnsupportedType is returned for config files that are not YAML.
var ErrUnsupportedType = errors.New("unsupported configuration type")

// EnsureFile writes Template to path unless a file is already there. It
// reports whether the file was created.
func EnsureFile(path string) (bool, error) {
	if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
		return false, fmt.Errorf("%w %q: use .yaml or .yml", ErrUnsupportedType, ext)
	}

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("unable to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("unable to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		return false, fmt.Errorf("unable to write config file: %w", err)
	}
	return true, nil
}

// LoadFile reads and validates a single config file, without the search
// paths the CLI uses.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return DefaultConfig(), fmt.Errorf("unable to read %s: %w", path, err)
	}
	return LoadFromViper(v)
}

// Changed lists the keys whose values differ from DefaultConfig, sorted.
func Changed(cfg Config) []string {
	defaults := settings(DefaultConfig())
	var keys []string
	for k, v := range settings(cfg) {
		if defaults[k] != v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// settings flattens cfg to the dotted keys used in the YAML file.
func settings(c Config) map[string]string {
	return map[string]string{
		"audio.mode":              c.Audio.Mode,
		"audio.buffer_size":       c.Audio.BufferSize.String(),
		"playback.effect":         c.Playback.Effect,
		"recorder.dir":            c.Recorder.Dir,
		"recorder.file_name":      c.Recorder.FileName,
		"recorder.sample_rate":    strconv.Itoa(c.Recorder.SampleRate),
		"recorder.channels":       strconv.Itoa(c.Recorder.Channels),
		"speech.command":          c.Speech.Command,
		"speech.timeout":          c.Speech.Timeout.String(),
		"cache.dir":               c.Cache.Dir,
		"cache.max_size":          strconv.FormatInt(c.Cache.MaxSize, 10),
		"cache.compression_level": strconv.Itoa(c.Cache.CompressionLevel),
		"metrics.addr":            c.Metrics.Addr,
		"watch.interval":          c.Watch.Interval.String(),
		"watch.rate_limit":        strconv.FormatFloat(c.Watch.RateLimit, 'g', -1, 64),
	}
}
