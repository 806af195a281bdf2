package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/dgnsrekt/pitchperfect/internal/render"
	"github.com/dgnsrekt/pitchperfect/internal/watch"
	"github.com/dgnsrekt/pitchperfect/utils"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	exportEffects effectFlags
	exportOutput  string
	exportJobs    int
	exportNoCache bool
	exportAll     bool

	exportCmd = &cobra.Command{
		Use:   "export FILE|DIR",
		Short: "Render takes with an effect to WAV files",
		Long: paragraph(fmt.Sprintf("\n%s a take, or every take under a directory, with an effect and write the results as WAV files. Renders are cached.",
			keyword("Render"))),
		Example: paragraph("pitchperfect export voice.wav --effect chipmunk\npitchperfect export takes/ --effect reverb -o rendered/"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, label, err := exportEffects.resolve(cmd)
			if err != nil {
				return err
			}
			return exportPath(cmd.Context(), utils.AbsPath(args[0]), cfg, label)
		},
	}
)

func init() {
	exportEffects.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory (default: next to each take)")
	exportCmd.Flags().IntVarP(&exportJobs, "jobs", "j", runtime.NumCPU(), "number of takes to render at once")
	exportCmd.Flags().BoolVar(&exportNoCache, "no-cache", false, "skip the render cache")
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "include files ignored by .gitignore")
}

func exportPath(ctx context.Context, path string, cfg effects.Config, label string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = findTakes(path, label)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no takes found in %s", path)
		}
	}

	stopMetrics := startMetrics()
	defer stopMetrics()

	var renderer *render.Renderer
	if exportNoCache {
		renderer = render.NewRenderer(nil)
	} else {
		store := newStore()
		if store != nil {
			defer store.Close() //nolint:errcheck
		}
		renderer = render.NewRenderer(store)
	}

	out := newPrinter(os.Stdout)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, exportJobs))
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dst, res, err := exportFile(renderer, f, cfg, label)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.fail("%s: %v", f, err)
				return err
			}
			cached := ""
			if res.Cached {
				cached = ", cached"
			}
			out.ok("%s → %s (%s%s)", filepath.Base(f), dst, humanize.Bytes(uint64(len(res.Data))), cached)
			return nil
		})
	}
	return g.Wait()
}

func exportFile(renderer *render.Renderer, src string, cfg effects.Config, label string) (string, render.Result, error) {
	res, err := renderer.File(src, cfg)
	if err != nil {
		return "", res, err
	}

	dir := filepath.Dir(src)
	if exportOutput != "" {
		dir = utils.ExpandPath(exportOutput)
	}
	dst := filepath.Join(dir, render.OutputName(src, label))
	if dst == src {
		return "", res, fmt.Errorf("refusing to overwrite %s", src)
	}
	if err := render.WriteFile(dst, res.Data); err != nil {
		return "", res, err
	}
	return dst, res, nil
}

// findTakes lists the audio files under dir, skipping earlier renders.
func findTakes(dir, label string) ([]string, error) {
	patterns := make([]string, len(watch.DefaultExtensions))
	for i, ext := range watch.DefaultExtensions {
		patterns[i] = "*" + ext
	}

	// Switch between FindFiles and FindAllFiles to bypass .gitignore rules
	var ch chan gitcha.SearchResult
	var err error
	if exportAll {
		ch, err = gitcha.FindAllFilesExcept(dir, patterns, nil)
	} else {
		ch, err = gitcha.FindFilesExcept(dir, patterns, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to search %s: %w", dir, err)
	}

	var files []string
	for res := range ch {
		if isRender(res.Path, label) {
			log.Debug("Skipping rendered take", "path", res.Path)
			continue
		}
		files = append(files, res.Path)
	}
	sort.Strings(files)
	return files, nil
}

// isRender reports whether path looks like an output of a render with
// label.
func isRender(path, label string) bool {
	base := filepath.Base(path)
	if label == "" {
		return false
	}
	return strings.HasSuffix(base, "-"+label+".wav")
}
