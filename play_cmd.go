package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/playback"
	"github.com/dgnsrekt/pitchperfect/internal/runloop"
	"github.com/dgnsrekt/pitchperfect/utils"
	"github.com/spf13/cobra"
)

var playEffects effectFlags

var playCmd = &cobra.Command{
	Use:   "play FILE",
	Short: "Play a take with an effect and wait for it to finish",
	Long: paragraph(fmt.Sprintf("\n%s a take once with an effect preset or custom settings, without the TUI.",
		keyword("Play"))),
	Example: paragraph("pitchperfect play voice.wav --effect vader\npitchperfect play voice.wav --rate 1.5 --echo"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, label, err := playEffects.resolve(cmd)
		if err != nil {
			return err
		}
		return playFile(cmd.Context(), utils.AbsPath(args[0]), cfg, label)
	},
}

func init() {
	playEffects.register(playCmd)
}

// playFile plays path once and returns when playback completes or the
// process is interrupted.
func playFile(ctx context.Context, path string, cfg effects.Config, label string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	stopMetrics := startMetrics()
	defer stopMetrics()

	dev, capable, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Close() //nolint:errcheck
	if !capable {
		return errNoAudio
	}

	loop := runloop.NewLoop()
	defer loop.Close()

	out := newPrinter(os.Stdout)
	done := make(chan struct{})
	var once sync.Once
	var alertErr error

	player := playback.NewController(playback.Options{
		Capable:    true,
		Device:     dev,
		Dispatcher: loop,
		UI: playback.UIFunc(func(playing bool) {
			if !playing {
				once.Do(func() { close(done) })
			}
		}),
		Alerts: playback.AlertFunc(func(title, message string) {
			alertErr = fmt.Errorf("%s: %s", title, message)
		}),
		Observer: newObserver(),
	})

	if err := player.Open(path); err != nil {
		return alertOr(alertErr, err)
	}
	asset := player.Asset()

	if label == "" {
		label = "no effect"
	}
	out.info("Playing %s (%s, %s)", path, label, asset.Duration().Round(10*time.Millisecond))

	if err := player.Play(cfg); err != nil {
		return alertOr(alertErr, err)
	}

	select {
	case <-done:
		out.ok("Finished")
	case <-ctx.Done():
		log.Debug("Playback interrupted")
		player.Stop()
		out.fail("Stopped")
	}
	return nil
}

func alertOr(alert, err error) error {
	if alert != nil {
		return alert
	}
	return err
}
