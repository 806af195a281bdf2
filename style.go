package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	keyword = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Render

	paragraph = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 0, 2).
			Render
)

// printer writes status lines for the non-TUI commands, coloured only
// when the writer supports it.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer) printer {
	return printer{out: termenv.NewOutput(w)}
}

func (p printer) ok(format string, args ...any) {
	mark := p.out.String("✓").Foreground(p.out.Color("#04B575")).Bold()
	fmt.Fprintf(p.out, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

func (p printer) fail(format string, args ...any) {
	mark := p.out.String("✗").Foreground(p.out.Color("#FF5F87")).Bold()
	fmt.Fprintf(p.out, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

func (p printer) info(format string, args ...any) {
	fmt.Fprintf(p.out, "%s\n", p.out.String(fmt.Sprintf(format, args...)).Faint())
}
