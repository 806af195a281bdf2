package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/dgnsrekt/pitchperfect/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the pitchperfect config file",
	Long: paragraph(fmt.Sprintf("\n%s the pitchperfect config file in $EDITOR. A commented file with the defaults is created on first use, and the result is checked when the editor exits.",
		keyword("Edit"))),
	Example: paragraph("pitchperfect config\npitchperfect config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}
		if err := editConfig(configFile); err != nil {
			return err
		}
		return reportConfig(newPrinter(os.Stdout), configFile)
	},
}

func editConfig(path string) error {
	c, err := editor.Cmd("PitchPerfect", path)
	if err != nil {
		return fmt.Errorf("unable to open editor: %w", err)
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor exited with an error: %w", err)
	}
	return nil
}

// reportConfig loads the edited file and lists the settings that differ
// from the defaults.
func reportConfig(out printer, path string) error {
	cfg, err := config.LoadFile(path)
	if err != nil {
		out.fail("%s", err)
		return fmt.Errorf("%s needs fixing, run %s again", path, keyword("pitchperfect config"))
	}

	out.ok("Config OK: %s", path)
	if changed := config.Changed(cfg); len(changed) > 0 {
		out.info("Changed from defaults: %s", strings.Join(changed, ", "))
	} else {
		out.info("Using the defaults")
	}
	return nil
}

// ensureConfigFile resolves configFile and writes the default template
// there if it is missing.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	created, err := config.EnsureFile(configFile)
	if err != nil {
		return err
	}
	if created {
		log.Info("Created default configuration", "path", configFile)
	}
	return nil
}
