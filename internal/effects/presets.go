package effects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ErrUnknownPreset is returned when no preset matches a name.
var ErrUnknownPreset = errors.New("unknown effect preset")

// Preset is one of the fixed playback buttons.
type Preset struct {
	Name        string
	Key         string
	Description string
	Config      Config
}

// Presets lists the playback buttons in display order.
var Presets = []Preset{
	{Name: "slow", Key: "1", Description: "Half speed", Config: Config{Rate: Float32(0.5)}},
	{Name: "fast", Key: "2", Description: "One and a half speed", Config: Config{Rate: Float32(1.5)}},
	{Name: "chipmunk", Key: "3", Description: "Pitch up ten semitones", Config: Config{Pitch: Float32(1000)}},
	{Name: "vader", Key: "4", Description: "Pitch down ten semitones", Config: Config{Pitch: Float32(-1000)}},
	{Name: "echo", Key: "5", Description: "Multi-tap echo", Config: Config{Echo: true}},
	{Name: "reverb", Key: "6", Description: "Cathedral reverb", Config: Config{Reverb: true}},
}

// Names returns the preset names in display order.
func Names() []string {
	names := make([]string, len(Presets))
	for i, p := range Presets {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a preset by exact name, key, or best fuzzy match.
func Lookup(name string) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, fmt.Errorf("%w: empty name", ErrUnknownPreset)
	}
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) || p.Key == name {
			return p, nil
		}
	}

	matches := fuzzy.Find(strings.ToLower(name), Names())
	if len(matches) == 0 {
		return Preset{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(Names(), ", "))
	}
	return Presets[matches[0].Index], nil
}

// ByKey returns the preset bound to a key, if any.
func ByKey(key string) (Preset, bool) {
	for _, p := range Presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}
