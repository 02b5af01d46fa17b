// Package device reads Linux evdev input devices for the launcher: it
// enumerates and classifies /dev/input/event* nodes, opens them (optionally
// with an exclusive grab), translates raw events into named button presses
// and watches the directory for hot-plug.
package device

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kioskware/gridlaunch/internal/launch"
)

// ErrUnsupported is returned on platforms without evdev.
var ErrUnsupported = errors.New("evdev input is not supported on this platform")

// Info describes an input device node.
type Info struct {
	Path string
	Name string
	Role launch.DeviceRole
}

// Event is a button press translated from a device.
type Event struct {
	// Path identifies the device handle that produced the event.
	Path   string
	Role   launch.DeviceRole
	Code   int
	Symbol string
	// Repeat is set for keyboard auto-repeat.
	Repeat bool
}

// Hotplug reports a device node appearing or disappearing.
type Hotplug struct {
	Path    string
	Removed bool
}

// IsEventNode reports whether path names an evdev event node.
func IsEventNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "event")
}

// Enumerate probes every event node under dir. Nodes that cannot be probed
// (usually permissions) are skipped and returned as a joined error.
func (m *Manager) Enumerate() ([]Info, error) {
	paths, err := filepath.Glob(filepath.Join(m.dir, "event*"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.dir, err)
	}

	sort.Strings(paths)

	var (
		infos []Info
		errs  []error
	)

	for _, p := range paths {
		info, probeErr := m.Probe(p)
		if probeErr != nil {
			errs = append(errs, probeErr)
			continue
		}

		infos = append(infos, info)
	}

	return infos, errors.Join(errs...)
}

// classify decides a device's role from its capability bitmaps.
func classify(evBits, keyBits, absBits, relBits []byte) launch.DeviceRole {
	hasEv := func(t int) bool { return testBit(evBits, t) }
	hasKey := func(c int) bool { return testBit(keyBits, c) }

	if hasEv(evKey) && (hasKey(btnSouth) || hasKey(btnJoy) || hasKey(btnDpadUp)) {
		return launch.RoleGamepad
	}

	if hasEv(evAbs) && testBit(absBits, absX) && hasKey(btnTouch) {
		return launch.RolePointer
	}

	if hasEv(evRel) && testBit(relBits, relX) && hasKey(btnLeft) {
		return launch.RolePointer
	}

	if hasEv(evKey) && hasKey(keyEnter) {
		letters := 0

		for c := keyA; c <= keyZ; c++ {
			if hasKey(c) {
				letters++
			}
		}

		if letters > 0 {
			return launch.RoleKeyboard
		}
	}

	return launch.RoleNone
}

func testBit(bits []byte, n int) bool {
	if n < 0 || n/8 >= len(bits) {
		return false
	}

	return bits[n/8]&(1<<(uint(n)%8)) != 0
}
