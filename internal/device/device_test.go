package device

import (
	"testing"

	"github.com/kioskware/gridlaunch/internal/launch"
)

func setBit(bits []byte, n int) {
	bits[n/8] |= 1 << (uint(n) % 8)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ev   []int
		keys []int
		abs  []int
		rel  []int
		want launch.DeviceRole
	}{
		{name: "gamepad", ev: []int{evKey, evAbs}, keys: []int{btnSouth, 0x131}, abs: []int{absX}, want: launch.RoleGamepad},
		{name: "joystick", ev: []int{evKey}, keys: []int{btnJoy}, want: launch.RoleGamepad},
		{name: "touchscreen", ev: []int{evKey, evAbs}, keys: []int{btnTouch}, abs: []int{absX}, want: launch.RolePointer},
		{name: "mouse", ev: []int{evKey, evRel}, keys: []int{btnLeft}, rel: []int{relX}, want: launch.RolePointer},
		{name: "keyboard", ev: []int{evKey}, keys: []int{keyEnter, keyA, 0x1f}, want: launch.RoleKeyboard},
		{name: "power button", ev: []int{evKey}, keys: []int{116}, want: launch.RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evBits := make([]byte, 4)
			keyBits := make([]byte, keyMax/8+1)
			absBits := make([]byte, 8)
			relBits := make([]byte, 2)

			for _, e := range tt.ev {
				setBit(evBits, e)
			}

			for _, k := range tt.keys {
				setBit(keyBits, k)
			}

			for _, a := range tt.abs {
				setBit(absBits, a)
			}

			for _, r := range tt.rel {
				setBit(relBits, r)
			}

			if got := classify(evBits, keyBits, absBits, relBits); got != tt.want {
				t.Fatalf("classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateButtons(t *testing.T) {
	tr := newTranslator(Info{Path: "/dev/input/event3", Role: launch.RoleGamepad})

	if _, ok := tr.translate(evKey, 0x13c, 0); ok {
		t.Fatal("release translated as a press")
	}

	ev, ok := tr.translate(evKey, 0x13c, 1)
	if !ok {
		t.Fatal("press not translated")
	}

	if ev.Symbol != "mode" || ev.Code != 0x13c || ev.Path != "/dev/input/event3" || ev.Role != launch.RoleGamepad {
		t.Fatalf("translate() = %+v", ev)
	}

	if _, ok := tr.translate(evSyn, 0, 0); ok {
		t.Fatal("sync event translated")
	}
}

func TestTranslateKeyboardRepeat(t *testing.T) {
	tr := newTranslator(Info{Path: "kbd", Role: launch.RoleKeyboard})

	ev, ok := tr.translate(evKey, 103, 2)
	if !ok || ev.Symbol != "up" || !ev.Repeat {
		t.Fatalf("translate() = %+v %v, want repeated up", ev, ok)
	}
}

func TestTranslateHat(t *testing.T) {
	tr := newTranslator(Info{Path: "pad", Role: launch.RoleGamepad})

	steps := []struct {
		code  uint16
		value int32
		want  string
	}{
		{absHat0X, 1, "right"},
		{absHat0X, 1, ""},
		{absHat0X, 0, ""},
		{absHat0X, -1, "left"},
		{absHat0Y, -1, "up"},
		{absHat0Y, 1, "down"},
		{absX, 200, ""},
	}

	for i, s := range steps {
		ev, ok := tr.translate(evAbs, s.code, s.value)

		got := ""
		if ok {
			got = ev.Symbol
		}

		if got != s.want {
			t.Fatalf("step %d: symbol = %q, want %q", i, got, s.want)
		}
	}
}

func TestButtonIndex(t *testing.T) {
	tests := []struct {
		code   int
		want   int
		wantOK bool
	}{
		{0x130, 0, true},
		{0x13c, 12, true},
		{0x120, -1, false},
		{0x130 + 256, -1, false},
	}

	for _, tt := range tests {
		got, ok := ButtonIndex(tt.code)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ButtonIndex(%#x) = %d %v, want %d %v", tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSymbols(t *testing.T) {
	if !KnownSymbol(true, "MODE") {
		t.Fatal("KnownSymbol(gamepad, MODE) = false")
	}

	if KnownSymbol(false, "mode") {
		t.Fatal("KnownSymbol(keyboard, mode) = true")
	}

	syms := Symbols(false)
	for i := 1; i < len(syms); i++ {
		if syms[i-1] >= syms[i] {
			t.Fatalf("Symbols() not sorted and unique at %d: %v", i, syms)
		}
	}
}

func TestIsEventNode(t *testing.T) {
	if !IsEventNode("/dev/input/event12") {
		t.Fatal("IsEventNode(event12) = false")
	}

	if IsEventNode("/dev/input/mice") {
		t.Fatal("IsEventNode(mice) = true")
	}
}
