package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// logOutput is where setupLog sends log output.
var logOutput io.Writer = io.Discard

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "pitchperfect").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pitchperfect.log"), nil
}

func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	// Log to file, if set
	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		// log disabled
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		// log disabled
		return func() error { return nil }, nil
	}
	logOutput = f
	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	log.SetReportTimestamp(true)
	return f.Close, nil
}

// mirrorLogToStderr also sends log output to stderr, for --debug.
func mirrorLogToStderr() {
	log.SetOutput(io.MultiWriter(logOutput, os.Stderr))
}
