package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

// TimeoutConfig bounds a recognizer run.
type TimeoutConfig struct {
	// Timeout is the maximum time the command may run.
	Timeout time.Duration
	// GracePeriod is how long to wait after the interrupt before killing.
	GracePeriod time.Duration
}

// DefaultTimeoutConfig returns the default limits.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Timeout:     60 * time.Second,
		GracePeriod: 500 * time.Millisecond,
	}
}

// CommandRecognizer runs an external program with the recording path as its
// last argument. Each line it prints to stdout extends the transcription.
type CommandRecognizer struct {
	name   string
	args   []string
	config TimeoutConfig
}

// NewCommandRecognizer creates a recognizer for name and args.
func NewCommandRecognizer(name string, args []string, config TimeoutConfig) *CommandRecognizer {
	return &CommandRecognizer{name: name, args: args, config: config}
}

func (r *CommandRecognizer) Available() bool { return true }

// Transcribe runs the command. On timeout it interrupts the process, kills
// it after the grace period and returns ErrTimeout with the text so far.
func (r *CommandRecognizer) Transcribe(ctx context.Context, path string, partial func(string)) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("recording not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	args := append(append([]string(nil), r.args...), path)
	cmd := exec.CommandContext(ctx, r.name, args...)
	cmd.Cancel = func() error { return interrupt(cmd.Process) }
	cmd.WaitDelay = r.config.GracePeriod

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open stdout: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", r.name, err)
	}

	var lines []string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if partial != nil {
			partial(strings.Join(lines, " "))
		}
	}

	err = cmd.Wait()
	text := strings.Join(lines, " ")
	log.Debug("Speech command finished",
		"command", r.name,
		"duration", time.Since(start),
		"chars", len(text),
		"error", err)

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.Warn("Speech command timed out", "command", r.name, "timeout", r.config.Timeout)
		return text, fmt.Errorf("%w after %v", ErrTimeout, r.config.Timeout)
	case ctx.Err() != nil:
		return text, ctx.Err()
	case err != nil:
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return text, fmt.Errorf("%s failed: %w\nstderr: %s", r.name, err, msg)
		}
		return text, fmt.Errorf("%s failed: %w", r.name, err)
	}
	return text, nil
}

// interrupt asks the process to stop. Windows has no SIGINT.
func interrupt(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return proc.Kill()
	}
	return proc.Signal(syscall.SIGINT)
}
