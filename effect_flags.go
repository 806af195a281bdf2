package main

import (
	"fmt"

	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/metrics"
	"github.com/spf13/cobra"
)

// effectFlags are the effect options shared by play, export and watch.
type effectFlags struct {
	preset string
	rate   float32
	pitch  float32
	echo   bool
	reverb bool
}

func (f *effectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.preset, "effect", "e", "", "effect preset (slow, fast, chipmunk, vader, echo, reverb)")
	cmd.Flags().Float32Var(&f.rate, "rate", 1, "playback rate, e.g. 0.5 or 1.5")
	cmd.Flags().Float32Var(&f.pitch, "pitch", 0, "pitch shift in cents, e.g. -1000 or 1000")
	cmd.Flags().BoolVar(&f.echo, "echo", false, "add the echo effect")
	cmd.Flags().BoolVar(&f.reverb, "reverb", false, "add the reverb effect")
}

// resolve builds the effect config. Explicit effect flags win over a
// preset, which wins over the configured default.
func (f *effectFlags) resolve(cmd *cobra.Command) (effects.Config, string, error) {
	flags := cmd.Flags()
	custom := flags.Changed("rate") || flags.Changed("pitch") || flags.Changed("echo") || flags.Changed("reverb")
	if custom {
		if f.preset != "" {
			return effects.Config{}, "", fmt.Errorf("--effect cannot be combined with --rate, --pitch, --echo or --reverb")
		}
		var cfg effects.Config
		if flags.Changed("rate") {
			cfg.Rate = effects.Float32(f.rate)
		}
		if flags.Changed("pitch") {
			cfg.Pitch = effects.Float32(f.pitch)
		}
		cfg.Echo = f.echo
		cfg.Reverb = f.reverb
		if err := cfg.Validate(); err != nil {
			return effects.Config{}, "", err
		}
		return cfg, metrics.EffectLabel(cfg), nil
	}

	name := f.preset
	if name == "" {
		name = appConfig.Playback.Effect
	}
	return presetConfig(name)
}

// presetConfig looks up a preset; an empty name means no effect.
func presetConfig(name string) (effects.Config, string, error) {
	if name == "" {
		return effects.Config{}, "", nil
	}
	p, err := effects.Lookup(name)
	if err != nil {
		return effects.Config{}, "", err
	}
	return p.Config, p.Name, nil
}
