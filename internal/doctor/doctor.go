// Package doctor provides diagnostic checks for a gridlaunch installation.
//
// The default checks validate:
//   - the terminal the launcher would take over
//   - the entries file and the executables it names
//   - kill triggers against the enabled input devices
//   - evdev device access
//   - the output capture location
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kioskware/gridlaunch/internal/buildinfo"
	"github.com/kioskware/gridlaunch/internal/config"
	"github.com/kioskware/gridlaunch/internal/device"
	"github.com/kioskware/gridlaunch/internal/entries"
	"github.com/kioskware/gridlaunch/internal/launch"
	"github.com/kioskware/gridlaunch/internal/terminal"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// Environment is what the default checks inspect.
type Environment struct {
	Config   *config.Config
	Terminal *terminal.Info
	// Devices lists evdev nodes; nil uses a device.Manager on the
	// configured directory.
	Devices func() ([]device.Info, error)
}

// New creates a runner with the default checks registered.
func New(env *Environment) *Runner {
	r := &Runner{}

	if env.Devices == nil {
		dir := env.Config.DevicesDir()
		env.Devices = func() ([]device.Info, error) {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}

			return device.NewManager(dir, nil).Enumerate()
		}
	}

	loaded, loadErr := loadEntries(env.Config)

	r.AddCheck("Terminal", func(context.Context) Result { return checkTerminal(env.Terminal) })
	r.AddCheck("Entries", func(context.Context) Result { return checkEntries(loaded, loadErr) })
	r.AddCheck("Kill triggers", func(context.Context) Result { return checkTriggers(env.Config, loaded) })
	r.AddCheck("Input devices", func(context.Context) Result { return checkDevices(env.Config, env.Devices) })
	r.AddCheck("Output capture", func(context.Context) Result { return checkCapture(env.Config, loaded) })
	r.AddCheck("Version", func(context.Context) Result { return checkVersion() })

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

func loadEntries(cfg *config.Config) (*entries.Loaded, error) {
	trigger, err := launch.ParseTrigger(cfg.DefaultKillTrigger())
	if err != nil {
		return nil, fmt.Errorf("supervisor.default_kill_trigger: %w", err)
	}

	return entries.Load(cfg.EntriesFile(), entries.Options{DefaultKillTrigger: trigger})
}

func checkTerminal(term *terminal.Info) Result {
	switch {
	case term.Dumb:
		return Result{
			Status:  StatusFail,
			Message: "TERM is dumb or unset",
			Detail:  "Set TERM to the console's terminal type, e.g. linux or xterm-256color",
		}
	case !term.IsTTY || !term.StdinTTY:
		return Result{
			Status:  StatusWarn,
			Message: "Not attached to a terminal",
			Detail:  "gridlaunch run needs an interactive terminal; this is expected over a pipe",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%dx%d)", os.Getenv("TERM"), term.Width, term.Height),
	}
}

func checkEntries(loaded *entries.Loaded, err error) Result {
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: "Cannot load entries",
			Detail:  err.Error(),
		}
	}

	problems := entries.Problems(loaded.Problems)

	switch {
	case len(loaded.Entries) == 0:
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("No launchable entries in %s", loaded.Path),
			Detail:  "Run 'gridlaunch check' for details",
		}
	case len(problems) > 0:
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%d loaded, %d skipped from %s", len(loaded.Entries), len(problems), loaded.Path),
			Detail:  problems[0].Error(),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d loaded from %s", len(loaded.Entries), loaded.Path),
	}
}

// checkTriggers reports killable entries whose trigger can never fire.
// While a program runs the terminal belongs to it, so a keyboard trigger
// needs evdev keyboards.
func checkTriggers(cfg *config.Config, loaded *entries.Loaded) Result {
	if loaded == nil {
		return Result{Status: StatusWarn, Message: "Skipped (entries not loaded)"}
	}

	var issues []string

	killable := 0

	for _, e := range loaded.Entries {
		if !e.Killable {
			continue
		}

		killable++

		switch {
		case !e.KillTrigger.IsSet():
			issues = append(issues, e.Name+" has no kill trigger")
		case e.KillTrigger.Role == launch.RoleGamepad && !cfg.GamepadEnabled():
			issues = append(issues, e.Name+" uses "+e.KillTrigger.String()+" but input.gamepad is off")
		case e.KillTrigger.Role == launch.RoleKeyboard && !cfg.KeyboardEnabled():
			issues = append(issues, e.Name+" uses "+e.KillTrigger.String()+" but input.keyboard is off")
		}
	}

	if killable == 0 {
		return Result{Status: StatusPass, Message: "No killable entries"}
	}

	if len(issues) > 0 {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%d of %d killable entries cannot be stopped", len(issues), killable),
			Detail:  strings.Join(issues, "; "),
		}
	}

	return Result{Status: StatusPass, Message: fmt.Sprintf("%d killable entries", killable)}
}

func checkDevices(cfg *config.Config, list func() ([]device.Info, error)) Result {
	if !cfg.GamepadEnabled() && !cfg.KeyboardEnabled() {
		return Result{Status: StatusPass, Message: "Disabled (terminal input only)"}
	}

	infos, err := list()
	if err != nil && len(infos) == 0 {
		return Result{
			Status:  StatusFail,
			Message: "Cannot read " + cfg.DevicesDir(),
			Detail:  "Add the kiosk user to the 'input' group: " + err.Error(),
		}
	}

	counts := map[launch.DeviceRole]int{}
	for _, info := range infos {
		counts[info.Role]++
	}

	msg := fmt.Sprintf("%d gamepads, %d keyboards, %d pointers",
		counts[launch.RoleGamepad], counts[launch.RoleKeyboard], counts[launch.RolePointer])

	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: msg + " (some devices unreadable)",
			Detail:  err.Error(),
		}
	}

	if cfg.GamepadEnabled() && counts[launch.RoleGamepad] == 0 {
		return Result{
			Status:  StatusWarn,
			Message: msg,
			Detail:  "No gamepad connected; gamepads are picked up when plugged in",
		}
	}

	return Result{Status: StatusPass, Message: msg}
}

func checkCapture(cfg *config.Config, loaded *entries.Loaded) Result {
	capturing := 0

	if loaded != nil {
		for _, e := range loaded.Entries {
			if e.CaptureOutput {
				capturing++
			}
		}
	}

	if capturing == 0 {
		return Result{Status: StatusPass, Message: "Not used"}
	}

	path := cfg.CaptureFile()

	probe, err := os.CreateTemp(filepath.Dir(path), ".gridlaunch-doctor-*")
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: "Cannot write next to " + path,
			Detail:  err.Error(),
		}
	}

	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return Result{Status: StatusPass, Message: path}
}

func checkVersion() Result {
	if buildinfo.Version == "dev" {
		return Result{Status: StatusWarn, Message: "Development build"}
	}

	return Result{Status: StatusPass, Message: buildinfo.String()}
}

// RenderResults formats diagnostic results to the given output writer.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	for _, r := range results {
		width := maxNameLen + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", width, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", width, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", width, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", r.Status.Symbol(), width, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "\u2713" // ✓
	xMark       = "\u2717" // ✗
	warningMark = "\u26A0" // ⚠
)
