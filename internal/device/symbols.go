package device

import (
	"sort"
	"strings"
)

// Linux input event types and codes used by the launcher.
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	absX     = 0x00
	absHat0X = 0x10
	absHat0Y = 0x11

	relX = 0x00

	btnLeft   = 0x110
	btnJoy    = 0x120
	btnSouth  = 0x130
	btnTouch  = 0x14a
	btnDpadUp = 0x220

	keyA     = 0x1e
	keyZ     = 0x2c
	keyEnter = 0x1c

	keyMax = 0x2ff
)

// BTNSouth is the evdev code of the first gamepad face button. Raw gamepad
// button indexes count from it.
const BTNSouth = btnSouth

// ButtonIndex converts a gamepad evdev code into the raw button index used
// by legacy kill_button settings. ok is false below BTN_SOUTH or past the
// 256 index range.
func ButtonIndex(code int) (index int, ok bool) {
	index = code - btnSouth
	if index < 0 || index >= 256 {
		return -1, false
	}

	return index, true
}

var gamepadSymbols = map[int]string{
	0x130: "south",
	0x131: "east",
	0x132: "c",
	0x133: "north",
	0x134: "west",
	0x135: "z",
	0x136: "tl",
	0x137: "tr",
	0x138: "tl2",
	0x139: "tr2",
	0x13a: "select",
	0x13b: "start",
	0x13c: "mode",
	0x13d: "thumbl",
	0x13e: "thumbr",
	0x220: "up",
	0x221: "down",
	0x222: "left",
	0x223: "right",
}

var keyboardSymbols = map[int]string{
	1:   "escape",
	14:  "backspace",
	15:  "tab",
	16:  "q",
	28:  "enter",
	57:  "space",
	59:  "f1",
	60:  "f2",
	61:  "f3",
	62:  "f4",
	63:  "f5",
	64:  "f6",
	65:  "f7",
	66:  "f8",
	67:  "f9",
	68:  "f10",
	87:  "f11",
	88:  "f12",
	96:  "enter",
	102: "home",
	103: "up",
	105: "left",
	106: "right",
	107: "end",
	108: "down",
	172: "homepage",
}

// Symbol names an evdev key code for a device role. The second result is
// false when the code has no name.
func Symbol(gamepad bool, code int) (string, bool) {
	var sym string

	var ok bool

	if gamepad {
		sym, ok = gamepadSymbols[code]
	} else {
		sym, ok = keyboardSymbols[code]
	}

	return sym, ok
}

// Symbols lists the known symbol names for a role, sorted. Used by
// `gridlaunch devices` and trigger validation.
func Symbols(gamepad bool) []string {
	table := keyboardSymbols
	if gamepad {
		table = gamepadSymbols
	}

	seen := make(map[string]bool, len(table))
	out := make([]string, 0, len(table))

	for _, s := range table {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	sort.Strings(out)

	return out
}

// KnownSymbol reports whether name is in the table for the role.
func KnownSymbol(gamepad bool, name string) bool {
	name = strings.ToLower(name)

	for _, s := range Symbols(gamepad) {
		if s == name {
			return true
		}
	}

	return false
}
