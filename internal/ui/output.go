package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// UI provides the user-facing streams of a sweep
type UI struct {
	in          io.Reader
	output      io.Writer
	errOutput   io.Writer
	interactive bool // stdin is a terminal, prompt with survey
	// Color functions
	colorSuccess *color.Color
	colorError   *color.Color
}

// New creates a UI on the process standard streams
func New() *UI {
	return NewWithIO(os.Stdin, os.Stdout, os.Stderr)
}

// NewWithIO creates a UI with custom streams (useful for testing).
// Prompts go through survey only when in is a terminal.
func NewWithIO(in io.Reader, out, errOut io.Writer) *UI {
	return &UI{
		in:           in,
		output:       out,
		errOutput:    errOut,
		interactive:  isTerminal(in),
		colorSuccess: color.New(color.FgGreen),
		colorError:   color.New(color.FgRed),
	}
}

// IsInteractive reports whether prompts use the terminal widget
func (u *UI) IsInteractive() bool {
	return u.interactive
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RemoveFailed reports a file that matched but could not be removed
func (u *UI) RemoveFailed(path string, err error) {
	u.colorError.Fprintf(u.errOutput, "Failed to remove %s: %v\n", path, err)
}

// Fatal prints a startup error. The caller decides the exit status.
func (u *UI) Fatal(msg string) {
	u.colorError.Fprintln(u.errOutput, msg)
}

// Summary prints the final removal count for root
func (u *UI) Summary(count int, root string) {
	u.colorSuccess.Fprintf(u.output, "Removed %d PNG file(s) with spaces in the name under %s\n", count, root)
}
