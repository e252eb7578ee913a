// Package console prints status lines and the score summary to a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// Printer writes formatted console output, with colors when the writer is
// an interactive terminal.
type Printer struct {
	writer    io.Writer
	useColors bool
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// New creates a Printer. noColor forces plain output; it is set from
// NO_COLOR by the caller.
func New(w io.Writer, noColor bool) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{writer: w, useColors: !noColor && colorCapable(w)}
}

func colorCapable(w io.Writer) bool {
	// Legacy Windows consoles do not interpret ANSI sequences.
	if runtime.GOOS == "windows" && os.Getenv("WT_SESSION") == "" {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.writer
}

// Colors reports whether output is colored.
func (p *Printer) Colors() bool {
	return p.useColors
}

// Success prints a message with a green check mark.
func (p *Printer) Success(msg string) {
	p.mark(colorGreen, "✓", msg)
}

// Error prints a message with a red cross.
func (p *Printer) Error(msg string) {
	p.mark(colorRed, "✗", msg)
}

// Warning prints a message with a yellow warning sign.
func (p *Printer) Warning(msg string) {
	p.mark(colorYellow, "!", msg)
}

// Info prints a plain line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.writer, msg)
}

// Infof prints a formatted plain line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintf(p.writer, format+"\n", args...)
}

func (p *Printer) mark(color, sym, msg string) {
	if p.useColors {
		fmt.Fprintf(p.writer, "%s%s%s %s\n", color, sym, colorReset, msg)
		return
	}
	fmt.Fprintf(p.writer, "%s %s\n", sym, msg)
}

// Bold wraps s in bold formatting.
func (p *Printer) Bold(s string) string {
	return p.wrap(colorBold, s)
}

// Cyan wraps s in cyan formatting.
func (p *Printer) Cyan(s string) string {
	return p.wrap(colorCyan, s)
}

// ScoreColor colors s by how high score is: green from 80, yellow from 60,
// red below.
func (p *Printer) ScoreColor(score float64, s string) string {
	switch {
	case score >= 80:
		return p.wrap(colorGreen, s)
	case score >= 60:
		return p.wrap(colorYellow, s)
	default:
		return p.wrap(colorRed, s)
	}
}

func (p *Printer) wrap(color, s string) string {
	if p.useColors {
		return color + s + colorReset
	}
	return s
}
