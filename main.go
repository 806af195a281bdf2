// Package main provides the entry point for the PitchPerfect CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/config"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/ui"
	"github.com/dgnsrekt/pitchperfect/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	debug       bool
	mouse       bool
	transcribe  bool
	metricsAddr string
	rootEffect  string

	// appConfig is loaded in PersistentPreRunE.
	appConfig = config.DefaultConfig()

	rootCmd = &cobra.Command{
		Use:   "pitchperfect [FILE]",
		Short: "Record your voice and play it back with effects",
		Long: paragraph(
			fmt.Sprintf("\nRecord your voice and play it back %s!", keyword("slow, fast, chipmunk, vader, with echo or reverb")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(utils.ExpandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	debug = viper.GetBool("debug")
	if debug {
		mirrorLogToStderr()
	}

	cfg, err := config.LoadFromViper(viper.GetViper())
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	appConfig = cfg

	if rootEffect != "" {
		if _, err := effects.Lookup(rootEffect); err != nil {
			return err
		}
	}
	return nil
}

func execute(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = utils.AbsPath(args[0])
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("unable to open file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory: use %s to render every take in it", args[0], keyword("pitchperfect export"))
		}
	} else if p := recordingPath(); fileExists(p) {
		path = p
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		if path == "" {
			return errors.New("no take to play: pass a FILE or record one first")
		}
		effect := rootEffect
		if effect == "" {
			effect = appConfig.Playback.Effect
		}
		cfg, label, err := presetConfig(effect)
		if err != nil {
			return err
		}
		return playFile(cmd.Context(), path, cfg, label)
	}

	return runTUI(path)
}

func runTUI(path string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = path
	cfg.Effect = rootEffect
	cfg.Transcribe = transcribe || appConfig.Speech.Command != ""
	cfg.EnableMouse = cfg.EnableMouse || mouse

	stopMetrics := startMetrics()
	defer stopMetrics()

	dev, capable, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Close() //nolint:errcheck

	rec, err := newRecorder(recordingPath())
	if err != nil {
		log.Warn("Recording disabled", "error", err)
	} else {
		defer rec.Close() //nolint:errcheck
	}

	deps := ui.Deps{
		Device:   dev,
		Capable:  capable,
		Observer: newObserver(),
		Recorder: rec,
		Speech:   newRecognizer(),
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, deps).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "also write the log to stderr")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.Flags().StringVarP(&rootEffect, "effect", "e", "", "play this preset as soon as the take opens")
	rootCmd.Flags().BoolVar(&transcribe, "transcribe", false, "transcribe new recordings with the configured speech command")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("metrics.addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, playCmd, recordCmd, exportCmd, watchCmd, presetsCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "pitchperfect")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "pitchperfect")}, dirs...)
	}

	if c := os.Getenv("PITCHPERFECT_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("pitchperfect")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("pitchperfect")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "pitchperfect.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
