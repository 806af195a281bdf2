package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/render"
	"github.com/dgnsrekt/pitchperfect/internal/watch"
	"github.com/dgnsrekt/pitchperfect/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	watchEffects  effectFlags
	watchOutput   string
	watchExisting bool

	watchCmd = &cobra.Command{
		Use:   "watch DIR",
		Short: "Render new takes as they appear in a directory",
		Long: paragraph(fmt.Sprintf("\n%s a directory and render every new or changed take with an effect. Stops on Ctrl+C.",
			keyword("Watch"))),
		Example: paragraph("pitchperfect watch takes/ --effect vader\npitchperfect watch takes/ --effect echo -o rendered/ --existing"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, label, err := watchEffects.resolve(cmd)
			if err != nil {
				return err
			}
			return watchDir(cmd.Context(), utils.AbsPath(args[0]), cfg, label)
		},
	}
)

func init() {
	watchEffects.register(watchCmd)
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "output directory (default: the watched directory)")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also render takes already in the directory")
}

func watchDir(ctx context.Context, dir string, cfg effects.Config, label string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	stopMetrics := startMetrics()
	defer stopMetrics()

	store := newStore()
	if store != nil {
		defer store.Close() //nolint:errcheck
	}
	renderer := render.NewRenderer(store)
	out := newPrinter(os.Stdout)

	outDir := dir
	if watchOutput != "" {
		outDir = utils.AbsPath(watchOutput)
	}

	w, err := watch.New(watch.Config{
		Dir:        dir,
		Interval:   appConfig.Watch.Interval,
		RateLimit:  appConfig.Watch.RateLimit,
		Extensions: watch.DefaultExtensions,
		Ignore: func(path string) bool {
			return isRender(path, label)
		},
		ProcessExisting: watchExisting,
	}, func(_ context.Context, path string) error {
		res, err := renderer.File(path, cfg)
		if err != nil {
			out.fail("%s: %v", filepath.Base(path), err)
			return err
		}
		dst := filepath.Join(outDir, render.OutputName(path, label))
		if dst == path {
			return fmt.Errorf("refusing to overwrite %s", path)
		}
		if err := render.WriteFile(dst, res.Data); err != nil {
			out.fail("%s: %v", filepath.Base(path), err)
			return err
		}
		out.ok("%s → %s (%s in %s)", filepath.Base(path), dst,
			humanize.Bytes(uint64(len(res.Data))), res.Elapsed.Round(time.Millisecond))
		return nil
	})
	if err != nil {
		return err
	}

	out.info("Watching %s, press Ctrl+C to stop", dir)
	if err := w.Run(ctx); err != nil {
		return err
	}

	s := w.Stats()
	log.Info("Watch stopped", "handled", s.Handled, "failed", s.Failed, "skipped", s.Skipped)
	out.info("Rendered %d, failed %d, unchanged %d", s.Handled, s.Failed, s.Skipped)
	return nil
}
