package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kioskware/gridlaunch/internal/config"
	"github.com/kioskware/gridlaunch/internal/entries"
	clierrors "github.com/kioskware/gridlaunch/internal/errors"
	"github.com/kioskware/gridlaunch/internal/kiosk"
	"github.com/kioskware/gridlaunch/internal/launch"
	"github.com/kioskware/gridlaunch/internal/observability"
	"github.com/kioskware/gridlaunch/internal/output"
)

// runFlags maps run's flags to the config keys they override.
var runFlags = []struct {
	name string
	key  string
}{
	{"columns", "grid.columns"},
	{"title", "ui.title"},
	{"debounce", "input.debounce"},
	{"devices-dir", "input.devices_dir"},
	{"gamepad", "input.gamepad"},
	{"keyboard", "input.keyboard"},
	{"exclusive", "input.exclusive"},
	{"grace-period", "supervisor.grace_period"},
	{"capture-file", "supervisor.capture_file"},
	{"process-group", "supervisor.process_group"},
}

func newRunCmd() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the launcher",
		Long: `Take over the terminal and show the launcher grid.

Arrow keys, a gamepad or a tap select an entry; Enter, the gamepad's south
button or a second tap launches it. The grid hides while the program runs
and comes back when it exits. A killable entry can be stopped with its kill
trigger. Ctrl+C quits while the grid is shown.

A default entries file is written on first run.`,
		Example: `  gridlaunch run
  gridlaunch run --entries /etc/gridlaunch/entries.yaml --columns 4
  gridlaunch run --gamepad=false --keyboard`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			logger := observability.FromContext(cmd.Context())

			if !out.Terminal().FullscreenEnabled() {
				return clierrors.NotATerminal()
			}

			if created, err := entries.EnsureDefault(cfg.EntriesFile()); err != nil {
				logger.Warn("default entries file not written", slog.String("error", err.Error()))
			} else if created {
				out.Info("Wrote default entries to %s", cfg.EntriesFile())
			}

			loaded, err := loadEntries(cfg, false)
			if err != nil {
				return err
			}

			for _, p := range entries.Problems(loaded.Problems) {
				logger.Warn("entry skipped", slog.String("reason", p.Error()))
			}

			if len(loaded.Entries) == 0 {
				return clierrors.NoEntries(loaded.Path)
			}

			k, err := kiosk.New(&kiosk.Options{
				Entries:           loaded.Entries,
				Title:             cfg.Title(),
				Columns:           cfg.Columns(),
				Debounce:          cfg.Debounce(),
				PollInterval:      cfg.PollInterval(),
				ReconcileInterval: cfg.ReconcileInterval(),
				GracePeriod:       cfg.GracePeriod(),
				CapturePath:       cfg.CaptureFile(),
				CaptureLimit:      cfg.CaptureLimit(),
				ProcessGroup:      cfg.ProcessGroup(),
				DevicesDir:        cfg.DevicesDir(),
				Roles:             deviceRoles(cfg),
				Exclusive:         cfg.Exclusive(),
				Logger:            logger,
				Tracer:            observability.Tracer("gridlaunch/kiosk"),
			})
			if err != nil {
				return clierrors.DisplayFailed(err)
			}

			logger.Info("launcher starting",
				slog.String("entries", loaded.Path),
				slog.Int("count", len(loaded.Entries)),
			)

			if err := k.Run(cmd.Context()); err != nil {
				if errors.Is(err, kiosk.ErrDisplay) {
					return clierrors.DisplayFailed(err)
				}

				return clierrors.LauncherFailed(err)
			}

			return nil
		},
	}

	addEntriesFlag(cmd, cfg)

	f := cmd.Flags()
	f.Int("columns", config.DefaultColumns, "Grid columns")
	f.String("title", config.DefaultTitle, "Header title")
	f.Duration("debounce", config.DefaultDebounce, "Ignore taps for this long after the grid returns")
	f.String("devices-dir", "", "Directory holding evdev event nodes")
	f.Bool("gamepad", true, "Read gamepads from evdev")
	f.Bool("keyboard", false, "Read keyboards from evdev so kill keys work while a program runs")
	f.Bool("exclusive", true, "Grab gamepads while the grid is shown")
	f.Duration("grace-period", config.DefaultGracePeriod, "Delay before a stopped program is killed")
	f.String("capture-file", "", "File receiving output of capture_output entries")
	f.Bool("process-group", false, "Start every program in its own process group (killable ones always are)")

	for _, rf := range runFlags {
		_ = cfg.BindFlag(rf.key, f.Lookup(rf.name))
	}

	return cmd
}

// deviceRoles lists the evdev roles enabled in the configuration.
func deviceRoles(cfg *config.Config) []launch.DeviceRole {
	var roles []launch.DeviceRole

	if cfg.GamepadEnabled() {
		roles = append(roles, launch.RoleGamepad)
	}

	if cfg.KeyboardEnabled() {
		roles = append(roles, launch.RoleKeyboard)
	}

	return roles
}
