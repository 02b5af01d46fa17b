package testutil

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

// NewScreen returns an initialized simulation screen of the given size.
// It is finalized when the test ends.
func NewScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()

	scr := tcell.NewSimulationScreen("UTF-8")
	if err := scr.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}

	scr.SetSize(width, height)
	t.Cleanup(scr.Fini)

	return scr
}

// ScreenText returns the screen contents as lines with trailing spaces
// removed, so it can be compared against golden files.
func ScreenText(scr tcell.Screen) string {
	w, h := scr.Size()
	lines := make([]string, h)

	for y := range h {
		var line strings.Builder

		for x := 0; x < w; x++ {
			r, comb, _, _ := scr.GetContent(x, y)
			if r == 0 {
				r = ' '
			}

			line.WriteRune(r)

			for _, c := range comb {
				line.WriteRune(c)
			}
		}

		lines[y] = strings.TrimRight(line.String(), " ")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

// ScreenContains reports whether text appears on any line of the screen.
func ScreenContains(scr tcell.Screen, text string) bool {
	return strings.Contains(ScreenText(scr), text)
}
