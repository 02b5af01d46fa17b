package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// fit truncates s to width cells, marking the cut with an ellipsis.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}

	return runewidth.Truncate(s, width, ellipsis)
}

// drawText writes s at (x, y), clipped to width cells, and returns the
// number of cells used.
func drawText(scr tcell.Screen, x, y, width int, style tcell.Style, s string) int {
	used := 0

	for _, r := range fit(s, width) {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}

		scr.SetContent(x+used, y, r, nil, style)
		used += w
	}

	return used
}

// drawCentered writes s centered in [x, x+width).
func drawCentered(scr tcell.Screen, x, y, width int, style tcell.Style, s string) {
	s = fit(s, width)
	pad := (width - runewidth.StringWidth(s)) / 2
	drawText(scr, x+pad, y, width-pad, style, s)
}

func fill(scr tcell.Screen, r Rect, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			scr.SetContent(x, y, ' ', nil, style)
		}
	}
}

func drawBox(scr tcell.Screen, r Rect, style tcell.Style) {
	if r.W < 2 || r.H < 2 {
		return
	}

	right, bottom := r.X+r.W-1, r.Y+r.H-1

	for x := r.X + 1; x < right; x++ {
		scr.SetContent(x, r.Y, tcell.RuneHLine, nil, style)
		scr.SetContent(x, bottom, tcell.RuneHLine, nil, style)
	}

	for y := r.Y + 1; y < bottom; y++ {
		scr.SetContent(r.X, y, tcell.RuneVLine, nil, style)
		scr.SetContent(right, y, tcell.RuneVLine, nil, style)
	}

	scr.SetContent(r.X, r.Y, tcell.RuneULCorner, nil, style)
	scr.SetContent(right, r.Y, tcell.RuneURCorner, nil, style)
	scr.SetContent(r.X, bottom, tcell.RuneLLCorner, nil, style)
	scr.SetContent(right, bottom, tcell.RuneLRCorner, nil, style)
}
