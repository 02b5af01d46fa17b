// Package ansi cleans program output for display on the launcher surface.
package ansi

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

const tabWidth = 4

// Strip removes ANSI escape sequences from a string.
func Strip(s string) string {
	return xansi.Strip(s)
}

// Lines splits captured output into displayable lines. Escape sequences
// and control characters are removed, tabs are expanded and a carriage
// return keeps only what was written after it, the way a terminal would
// show a redrawn progress line. Trailing blank lines are dropped.
func Lines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))

	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if i := strings.LastIndexByte(line, '\r'); i >= 0 {
			line = line[i+1:]
		}

		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
		line = strings.Map(func(r rune) rune {
			if (r < 0x20 && r != 0x1b) || r == 0x7f {
				return -1
			}

			return r
		}, line)

		lines = append(lines, xansi.Strip(line))
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
