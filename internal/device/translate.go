package device

import (
	"github.com/kioskware/gridlaunch/internal/launch"
)

// translator turns raw evdev events from one device into presses.
type translator struct {
	path string
	role launch.DeviceRole
	hatX int32
	hatY int32
}

func newTranslator(info Info) *translator {
	return &translator{path: info.Path, role: info.Role}
}

// translate returns the press described by one raw event, if any.
func (t *translator) translate(typ, code uint16, value int32) (Event, bool) {
	switch typ {
	case evKey:
		if value == 0 {
			return Event{}, false
		}

		c := int(code)
		sym, _ := Symbol(t.role == launch.RoleGamepad, c)

		return Event{
			Path:   t.path,
			Role:   t.role,
			Code:   c,
			Symbol: sym,
			Repeat: value == 2,
		}, true
	case evAbs:
		return t.hat(code, value)
	default:
		return Event{}, false
	}
}

// hat maps D-pad hat axes onto the same symbols as D-pad buttons. Only the
// transition away from center is a press.
func (t *translator) hat(code uint16, value int32) (Event, bool) {
	var prev *int32

	var neg, pos int

	switch code {
	case absHat0X:
		prev, neg, pos = &t.hatX, 0x222, 0x223
	case absHat0Y:
		prev, neg, pos = &t.hatY, 0x220, 0x221
	default:
		return Event{}, false
	}

	was := *prev
	*prev = value

	if value == 0 || value == was {
		return Event{}, false
	}

	c := pos
	if value < 0 {
		c = neg
	}

	sym, _ := Symbol(true, c)

	return Event{Path: t.path, Role: t.role, Code: c, Symbol: sym}, true
}
