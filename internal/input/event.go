// Package input turns pointer, keyboard and gamepad input into grid moves,
// activations and kill requests, and owns the input devices the launcher
// holds.
package input

import (
	"strings"
	"time"

	"github.com/kioskware/gridlaunch/internal/device"
	"github.com/kioskware/gridlaunch/internal/launch"
)

// Kind separates pointer input from button input.
type Kind int

// Kind values.
const (
	KindButton Kind = iota
	KindPointer
)

// Event is one normalized input.
type Event struct {
	Kind Kind
	Role launch.DeviceRole
	// Source is the device path, empty for the terminal.
	Source string
	Symbol string
	// Code is the evdev code, or -1 when the source has none.
	Code int
	X, Y int
	// Time is when the event arrived; zero means now.
	Time time.Time
}

// FromDevice converts a device press.
func FromDevice(ev device.Event) Event {
	return Event{
		Kind:   KindButton,
		Role:   ev.Role,
		Source: ev.Path,
		Symbol: ev.Symbol,
		Code:   ev.Code,
	}
}

// Key builds a keyboard event from a symbol name.
func Key(symbol string) Event {
	return Event{Kind: KindButton, Role: launch.RoleKeyboard, Symbol: strings.ToLower(symbol), Code: -1}
}

// Click builds a pointer event at a cell.
func Click(x, y int) Event {
	return Event{Kind: KindPointer, Role: launch.RolePointer, X: x, Y: y, Code: -1}
}

// direction returns the grid delta for a directional symbol.
func direction(symbol string) (dRow, dCol int, ok bool) {
	switch symbol {
	case "up":
		return -1, 0, true
	case "down":
		return 1, 0, true
	case "left":
		return 0, -1, true
	case "right":
		return 0, 1, true
	default:
		return 0, 0, false
	}
}

// confirm reports whether symbol activates the selection.
func confirm(symbol string) bool {
	switch symbol {
	case "south", "a", "enter", "space", "start":
		return true
	default:
		return false
	}
}

// matchesTrigger checks an event against a kill trigger. A numeric gamepad
// trigger below 256 also matches by raw button index.
func matchesTrigger(t launch.Trigger, ev Event) bool {
	if t.Matches(ev.Role, ev.Symbol, ev.Code) {
		return true
	}

	if t.Role != launch.RoleGamepad || ev.Role != launch.RoleGamepad || t.Symbol != "" || t.Code < 0 || t.Code >= 256 {
		return false
	}

	idx, ok := device.ButtonIndex(ev.Code)

	return ok && idx == t.Code
}
