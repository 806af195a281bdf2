package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/dgnsrekt/pitchperfect/internal/effects"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the effect presets",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		style := styles.AutoStyle
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			style = styles.NoTTYStyle
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return fmt.Errorf("unable to create renderer: %w", err)
		}

		out, err := r.Render(presetsMarkdown())
		if err != nil {
			return fmt.Errorf("unable to render presets: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func presetsMarkdown() string {
	var b strings.Builder
	b.WriteString("# Effect presets\n\n")
	b.WriteString("| Key | Name | Settings | Description |\n")
	b.WriteString("|-----|------|----------|-------------|\n")
	for _, p := range effects.Presets {
		fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n", p.Key, p.Name, p.Config, p.Description)
	}
	b.WriteString("\nUse a preset with `--effect NAME`, or combine `--rate`, `--pitch`, `--echo` and `--reverb`.\n")
	return b.String()
}
