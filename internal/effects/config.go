package effects

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidRate indicates a rate that is not a positive finite number.
	ErrInvalidRate = errors.New("rate must be a positive finite number")
	// ErrInvalidPitch indicates a pitch shift that is not finite.
	ErrInvalidPitch = errors.New("pitch must be a finite number of cents")
)

// Config is the effect configuration for a single play request. Nil Rate and
// Pitch mean "not set", which is different from zero.
type Config struct {
	// Rate is the playback speed multiplier, practically 0.5 to 1.5.
	Rate *float32 `yaml:"rate,omitempty" json:"rate,omitempty"`
	// Pitch is the pitch shift in cents, practically -1000 to +1000.
	Pitch  *float32 `yaml:"pitch,omitempty" json:"pitch,omitempty"`
	Echo   bool     `yaml:"echo" json:"echo"`
	Reverb bool     `yaml:"reverb" json:"reverb"`
}

// Float32 returns a pointer to v, for building configs inline.
func Float32(v float32) *float32 { return &v }

// Validate checks that any set rate and pitch can be rendered.
func (c Config) Validate() error {
	if c.Rate != nil {
		r := float64(*c.Rate)
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return fmt.Errorf("%w: %v", ErrInvalidRate, r)
		}
	}
	if c.Pitch != nil {
		p := float64(*c.Pitch)
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidPitch, p)
		}
	}
	return nil
}

// RateValue returns the rate, or 1 when unset.
func (c Config) RateValue() float64 {
	if c.Rate == nil {
		return 1
	}
	return float64(*c.Rate)
}

// PitchValue returns the pitch shift in cents, or 0 when unset.
func (c Config) PitchValue() float64 {
	if c.Pitch == nil {
		return 0
	}
	return float64(*c.Pitch)
}

// IsZero reports whether the config changes nothing.
func (c Config) IsZero() bool {
	return c.Rate == nil && c.Pitch == nil && !c.Echo && !c.Reverb
}

// String returns a stable description, also used as a cache key component.
func (c Config) String() string {
	var parts []string
	if c.Rate != nil {
		parts = append(parts, fmt.Sprintf("rate=%g", *c.Rate))
	}
	if c.Pitch != nil {
		parts = append(parts, fmt.Sprintf("pitch=%+gc", *c.Pitch))
	}
	if c.Echo {
		parts = append(parts, "echo")
	}
	if c.Reverb {
		parts = append(parts, "reverb")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
