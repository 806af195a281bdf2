package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/recorder"
	"github.com/dgnsrekt/pitchperfect/internal/speech"
	"github.com/dgnsrekt/pitchperfect/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	recordOutput     string
	recordDuration   time.Duration
	recordTranscribe bool

	recordCmd = &cobra.Command{
		Use:   "record",
		Short: "Record a take from the microphone",
		Long: paragraph(fmt.Sprintf("\n%s a take from the default microphone. Press Enter to pause or resume and Ctrl+C to finish.",
			keyword("Record"))),
		Example: paragraph("pitchperfect record\npitchperfect record --duration 10s --transcribe"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := recordingPath()
			if recordOutput != "" {
				path = utils.AbsPath(recordOutput)
			}
			return recordTake(cmd.Context(), path)
		},
	}
)

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "write the take here instead of the configured location")
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "stop after this long (0 records until Ctrl+C)")
	recordCmd.Flags().BoolVar(&recordTranscribe, "transcribe", false, "transcribe the take with the configured speech command")
}

func recordTake(ctx context.Context, path string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	stopMetrics := startMetrics()
	defer stopMetrics()

	rec, err := newRecorder(path)
	if err != nil {
		return fmt.Errorf("%s: %w", recorder.LabelFailed, err)
	}
	defer rec.Close() //nolint:errcheck

	out := newPrinter(os.Stdout)
	rec.OnChange(func(s recorder.State) {
		out.info("%s", s.Label())
	})

	if err := rec.Record(); err != nil {
		return fmt.Errorf("%s: %w", recorder.LabelFailed, err)
	}

	var deadline <-chan time.Time
	if recordDuration > 0 {
		deadline = time.After(recordDuration)
	}

	toggles := make(chan struct{})
	if term.IsTerminal(int(os.Stdin.Fd())) {
		go readToggles(ctx, toggles)
	}

wait:
	for {
		select {
		case <-toggles:
			if err := rec.Record(); err != nil {
				log.Warn("Unable to toggle recording", "error", err)
			}
		case <-deadline:
			break wait
		case <-ctx.Done():
			break wait
		}
	}

	saved, err := rec.Stop()
	if err != nil {
		out.fail("%s", recorder.LabelFailed)
		return err
	}
	var size uint64
	if info, err := os.Stat(saved); err == nil {
		size = uint64(info.Size())
	}
	out.ok("Saved %s (%s, %s)", saved, humanize.Bytes(size), rec.Duration().Round(100*time.Millisecond))

	if !recordTranscribe {
		return nil
	}
	return transcribeTake(context.Background(), saved, out)
}

// readToggles sends on toggles each time Enter is pressed.
func readToggles(ctx context.Context, toggles chan<- struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case toggles <- struct{}{}:
		case <-ctx.Done():
			return
		}
	}
}

func transcribeTake(ctx context.Context, path string, out printer) error {
	rec := newRecognizer()
	if !rec.Available() {
		out.info("%s", speech.DefaultText)
		return nil
	}

	out.info("%s", speech.WaitingText)
	text, err := rec.Transcribe(ctx, path, func(partial string) {
		log.Debug("Partial transcription", "text", partial)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		out.fail("Transcription failed: %v", err)
		return err
	}
	fmt.Println(text)
	return nil
}
