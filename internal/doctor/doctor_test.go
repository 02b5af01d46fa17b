package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kioskware/gridlaunch/internal/config"
	"github.com/kioskware/gridlaunch/internal/device"
	"github.com/kioskware/gridlaunch/internal/launch"
	"github.com/kioskware/gridlaunch/internal/terminal"
)

const testEntries = `entries:
  - name: Shell
    path: /bin/sh
  - name: RetroArch
    path: /bin/sh
    killable: true
    kill_trigger: keyboard:f12
  - name: Diagnostics
    path: /bin/sh
    capture_output: true
`

func setup(t *testing.T, content string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	path := filepath.Join(dir, "entries.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write entries: %v", err)
	}

	t.Setenv("GRIDLAUNCH_ENTRIES_FILE", path)
	t.Setenv("GRIDLAUNCH_SUPERVISOR_CAPTURE_FILE", filepath.Join(dir, "output.txt"))

	return config.Load()
}

func byName(results []Result) map[string]Result {
	m := make(map[string]Result, len(results))
	for _, r := range results {
		m[r.Name] = r
	}

	return m
}

func TestRunner_DefaultChecks(t *testing.T) {
	cfg := setup(t, testEntries)

	runner := New(&Environment{
		Config:   cfg,
		Terminal: &terminal.Info{IsTTY: true, StdinTTY: true, Width: 80, Height: 25},
		Devices: func() ([]device.Info, error) {
			return []device.Info{{Path: "/dev/input/event3", Name: "Pad", Role: launch.RoleGamepad}}, nil
		},
	})

	results := runner.Run(context.Background())
	if len(results) != 6 {
		t.Fatalf("Run() returned %d results, want 6", len(results))
	}

	got := byName(results)

	want := map[string]Status{
		"Terminal":       StatusPass,
		"Entries":        StatusPass,
		"Kill triggers":  StatusWarn,
		"Input devices":  StatusPass,
		"Output capture": StatusPass,
	}

	for name, status := range want {
		if got[name].Status != status {
			t.Errorf("%s status = %v (%s), want %v", name, got[name].Status, got[name].Message, status)
		}
	}

	if msg := got["Entries"].Message; msg == "" || msg[0] != '3' {
		t.Errorf("Entries message = %q, want 3 loaded", msg)
	}
}

func TestCheckEntries(t *testing.T) {
	cfg := setup(t, "entries:\n  - name: Broken\n    path: relative\n  - name: Shell\n    path: /bin/sh\n")

	loaded, err := loadEntries(cfg)
	if r := checkEntries(loaded, err); r.Status != StatusWarn || r.Detail == "" {
		t.Errorf("checkEntries(one skipped) = %+v, want warning with detail", r)
	}

	if r := checkEntries(nil, errors.New("read entries file: no such file")); r.Status != StatusFail {
		t.Errorf("checkEntries(error) status = %v, want fail", r.Status)
	}

	empty := setup(t, "entries: []\n")

	loaded, err = loadEntries(empty)
	if r := checkEntries(loaded, err); r.Status != StatusFail {
		t.Errorf("checkEntries(empty) status = %v, want fail", r.Status)
	}
}

func TestCheckTerminal(t *testing.T) {
	tests := []struct {
		name string
		term terminal.Info
		want Status
	}{
		{"tty", terminal.Info{IsTTY: true, StdinTTY: true}, StatusPass},
		{"pipe", terminal.Info{IsTTY: false, StdinTTY: true}, StatusWarn},
		{"dumb", terminal.Info{IsTTY: true, StdinTTY: true, Dumb: true}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkTerminal(&tt.term).Status; got != tt.want {
				t.Errorf("checkTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckDevices(t *testing.T) {
	cfg := setup(t, testEntries)

	denied := func() ([]device.Info, error) { return nil, os.ErrPermission }
	if r := checkDevices(cfg, denied); r.Status != StatusFail {
		t.Errorf("checkDevices(denied) = %v, want fail", r.Status)
	}

	partial := func() ([]device.Info, error) {
		return []device.Info{{Role: launch.RoleGamepad}}, errors.New("event7: permission denied")
	}
	if r := checkDevices(cfg, partial); r.Status != StatusWarn {
		t.Errorf("checkDevices(partial) = %v, want warn", r.Status)
	}

	none := func() ([]device.Info, error) { return []device.Info{{Role: launch.RoleKeyboard}}, nil }
	if r := checkDevices(cfg, none); r.Status != StatusWarn {
		t.Errorf("checkDevices(no gamepad) = %v, want warn", r.Status)
	}

	t.Setenv("GRIDLAUNCH_INPUT_GAMEPAD", "false")

	if r := checkDevices(config.Load(), denied); r.Status != StatusPass {
		t.Errorf("checkDevices(disabled) = %v, want pass", r.Status)
	}
}

func TestCheckCapture_Unwritable(t *testing.T) {
	cfg := setup(t, testEntries)
	t.Setenv("GRIDLAUNCH_SUPERVISOR_CAPTURE_FILE", filepath.Join(t.TempDir(), "missing", "output.txt"))

	loaded, err := loadEntries(cfg)
	if err != nil {
		t.Fatalf("loadEntries() error = %v", err)
	}

	if r := checkCapture(config.Load(), loaded); r.Status != StatusFail {
		t.Errorf("checkCapture(missing dir) = %v, want fail", r.Status)
	}
}

func TestSummary(t *testing.T) {
	passed, failed, warnings := Summary([]Result{
		{Status: StatusPass},
		{Status: StatusPass},
		{Status: StatusWarn},
		{Status: StatusFail},
	})

	if passed != 2 || failed != 1 || warnings != 1 {
		t.Errorf("Summary() = %d, %d, %d, want 2, 1, 1", passed, failed, warnings)
	}
}
