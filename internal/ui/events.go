package ui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/kioskware/gridlaunch/internal/input"
)

// Action tells the main loop what a terminal event amounts to.
type Action int

// Action values.
const (
	ActionNone Action = iota
	ActionInput
	ActionQuit
)

// Interpret converts a terminal event. Resizes are handled here; key
// presses and primary-button presses become input events.
func (s *Screen) Interpret(ev tcell.Event) (input.Event, Action) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
		s.Draw()
	case *tcell.EventKey:
		if isInterrupt(e) {
			return input.Event{}, ActionQuit
		}

		symbol, ok := keySymbol(e)
		if !ok {
			return input.Event{}, ActionNone
		}

		in := input.Key(symbol)
		in.Time = e.When()

		return in, ActionInput
	case *tcell.EventMouse:
		pressed := e.Buttons()&tcell.Button1 != 0
		down := s.mouseDown
		s.mouseDown = pressed

		// Drags and releases are not clicks.
		if !pressed || down {
			return input.Event{}, ActionNone
		}

		x, y := e.Position()
		in := input.Click(x, y)
		in.Time = e.When()

		return in, ActionInput
	}

	return input.Event{}, ActionNone
}

func isInterrupt(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyCtrlC {
		return true
	}

	return e.Key() == tcell.KeyRune && e.Modifiers()&tcell.ModCtrl != 0 && unicode.ToLower(e.Rune()) == 'c'
}

// keySymbol names a key the way trigger and navigation symbols are spelled.
func keySymbol(e *tcell.EventKey) (string, bool) {
	k := e.Key()

	switch {
	case k == tcell.KeyUp:
		return "up", true
	case k == tcell.KeyDown:
		return "down", true
	case k == tcell.KeyLeft:
		return "left", true
	case k == tcell.KeyRight:
		return "right", true
	case k == tcell.KeyEnter:
		return "enter", true
	case k == tcell.KeyEscape:
		return "escape", true
	case k == tcell.KeyTab:
		return "tab", true
	case k == tcell.KeyBackspace || k == tcell.KeyBackspace2:
		return "backspace", true
	case k == tcell.KeyHome:
		return "home", true
	case k == tcell.KeyEnd:
		return "end", true
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return fmt.Sprintf("f%d", int(k-tcell.KeyF1)+1), true
	case k == tcell.KeyRune:
		r := e.Rune()
		if r == ' ' {
			return "space", true
		}

		if unicode.IsPrint(r) {
			return strings.ToLower(string(r)), true
		}
	}

	return "", false
}
