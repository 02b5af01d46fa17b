// Package launch defines the records shared by the supervisor, the input
// arbitrator and the UI: launch entries, kill triggers, supervisor states and
// run results.
package launch

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one launchable program. Entries are loaded once before the
// supervisor starts and are never mutated afterwards.
type Entry struct {
	Name          string
	Path          string
	Args          []string
	Icon          string
	Killable      bool
	KillTrigger   Trigger
	CaptureOutput bool
}

// Argv returns the argument vector handed to the new process image,
// with the executable path in position zero.
func (e *Entry) Argv() []string {
	argv := make([]string, 0, len(e.Args)+1)
	argv = append(argv, e.Path)

	return append(argv, e.Args...)
}

// DeviceRole is the logical role of an input device.
type DeviceRole int

// DeviceRole values.
const (
	RoleNone DeviceRole = iota
	RoleGamepad
	RoleKeyboard
	RolePointer
)

// String returns the role name used in trigger strings and logs.
func (r DeviceRole) String() string {
	switch r {
	case RoleGamepad:
		return "gamepad"
	case RoleKeyboard:
		return "keyboard"
	case RolePointer:
		return "pointer"
	default:
		return "none"
	}
}

// ParseRole parses a role name.
func ParseRole(s string) (DeviceRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gamepad", "joystick", "pad":
		return RoleGamepad, nil
	case "keyboard", "key", "kbd":
		return RoleKeyboard, nil
	case "pointer", "mouse", "touch":
		return RolePointer, nil
	default:
		return RoleNone, fmt.Errorf("unknown device role %q (allowed: gamepad, keyboard)", s)
	}
}

// Trigger identifies the button or key that force-terminates a running
// entry. The zero value matches nothing.
type Trigger struct {
	Role DeviceRole
	// Symbol is a backend symbol such as "mode" or "f12". Empty when the
	// trigger was given as a numeric code.
	Symbol string
	// Code is a raw backend code, or -1 when Symbol is used.
	Code int
}

// NoTrigger is the disabled trigger.
var NoTrigger = Trigger{Code: -1}

// IsSet reports whether the trigger can ever match.
func (t Trigger) IsSet() bool {
	return t.Role != RoleNone && (t.Symbol != "" || t.Code >= 0)
}

// String renders the trigger in the same syntax ParseTrigger accepts.
func (t Trigger) String() string {
	if !t.IsSet() {
		return "none"
	}

	if t.Symbol != "" {
		return t.Role.String() + ":" + t.Symbol
	}

	return t.Role.String() + ":" + strconv.Itoa(t.Code)
}

// Matches reports whether an input from a device of the given role with the
// given symbol and code is this trigger.
func (t Trigger) Matches(role DeviceRole, symbol string, code int) bool {
	if !t.IsSet() || role != t.Role {
		return false
	}

	if t.Symbol != "" {
		return strings.EqualFold(t.Symbol, symbol)
	}

	return t.Code == code
}

// ParseTrigger parses "none", "<role>:<symbol>" or "<role>:<code>".
// An empty string yields NoTrigger.
func ParseTrigger(s string) (Trigger, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return NoTrigger, nil
	}

	roleStr, value, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(value) == "" {
		return NoTrigger, fmt.Errorf("invalid kill trigger %q (want <role>:<button>, e.g. gamepad:mode)", s)
	}

	role, err := ParseRole(roleStr)
	if err != nil {
		return NoTrigger, err
	}

	if role == RolePointer {
		return NoTrigger, fmt.Errorf("invalid kill trigger %q: pointer devices cannot trigger a kill", s)
	}

	value = strings.ToLower(strings.TrimSpace(value))
	if code, convErr := strconv.Atoi(value); convErr == nil {
		if code < 0 {
			return NoTrigger, fmt.Errorf("invalid kill trigger %q: negative code", s)
		}

		return Trigger{Role: role, Code: code}, nil
	}

	return Trigger{Role: role, Symbol: value, Code: -1}, nil
}
