// Package terminal provides terminal detection and capabilities.
//
// This package handles:
//   - TTY detection for stdin and stdout
//   - NO_COLOR and TERM=dumb support
//   - Terminal dimensions
//   - Whether the fullscreen launcher grid can take over the terminal
package terminal

import (
	"os"

	"golang.org/x/term"
)

// Info holds terminal capability information.
type Info struct {
	IsTTY     bool
	StdinTTY  bool
	NoColor   bool
	Dumb      bool
	Width     int
	Height    int
	ForceFlag bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current environment.
func Detect() *Info {
	stdoutFD := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(stdoutFD)

	width, height := 80, 24

	if isTTY {
		if w, h, err := term.GetSize(stdoutFD); err == nil {
			width, height = w, h
		}
	}

	// https://no-color.org/
	_, noColor := os.LookupEnv("NO_COLOR")

	dumb := os.Getenv("TERM") == "dumb"
	if dumb {
		noColor = true
	}

	return &Info{
		IsTTY:    isTTY,
		StdinTTY: term.IsTerminal(int(os.Stdin.Fd())),
		NoColor:  noColor,
		Dumb:     dumb,
		Width:    width,
		Height:   height,
	}
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// SpinnersEnabled returns true if spinners should be used.
func (t *Info) SpinnersEnabled() bool {
	return t.IsTTY && !t.NoColor
}

// FullscreenEnabled reports whether the launcher grid can own the
// terminal. Both ends must be a TTY that understands cursor addressing.
func (t *Info) FullscreenEnabled() bool {
	return t.IsTTY && t.StdinTTY && !t.Dumb
}
