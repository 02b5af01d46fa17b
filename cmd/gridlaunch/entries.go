package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kioskware/gridlaunch/internal/config"
	"github.com/kioskware/gridlaunch/internal/entries"
	clierrors "github.com/kioskware/gridlaunch/internal/errors"
	"github.com/kioskware/gridlaunch/internal/launch"
	"github.com/kioskware/gridlaunch/internal/output"
)

// entryJSON is the JSON shape of an entry in `list --json`.
type entryJSON struct {
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Args          []string `json:"args,omitempty"`
	Icon          string   `json:"icon,omitempty"`
	Killable      bool     `json:"killable"`
	KillTrigger   string   `json:"kill_trigger"`
	CaptureOutput bool     `json:"capture_output"`
}

// addEntriesFlag registers --entries and binds it to entries.file.
func addEntriesFlag(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringP("entries", "e", "", "Entries file (.yaml, .toml or .conf)")

	_ = cfg.BindFlag("entries.file", cmd.Flags().Lookup("entries"))
}

// loadEntries resolves the configured default kill trigger and loads the
// entries file.
func loadEntries(cfg *config.Config, skipExecCheck bool) (*entries.Loaded, error) {
	path := cfg.EntriesFile()

	trigger, err := launch.ParseTrigger(cfg.DefaultKillTrigger())
	if err != nil {
		return nil, clierrors.InvalidTrigger(cfg.DefaultKillTrigger(), err)
	}

	loaded, err := entries.Load(path, entries.Options{
		DefaultKillTrigger:  trigger,
		SkipExecutableCheck: skipExecCheck,
	})
	if err != nil {
		return nil, clierrors.EntriesUnreadable(path, err)
	}

	return loaded, nil
}

func warnProblems(out *output.Writer, loaded *entries.Loaded) int {
	problems := entries.Problems(loaded.Problems)
	for _, p := range problems {
		out.Warning("Skipped %v", p)
	}

	return len(problems)
}

func newListCmd() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured entries",
		Long: `Show every launchable entry in grid order. Entries that fail validation
are skipped with a warning, the same way the launcher skips them.`,
		Example: `  gridlaunch list
  gridlaunch list --entries /etc/gridlaunch/entries.toml --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			loaded, err := loadEntries(cfg, false)
			if err != nil {
				return err
			}

			if out.JSON {
				list := make([]entryJSON, 0, len(loaded.Entries))
				for _, e := range loaded.Entries {
					list = append(list, entryJSON{
						Name:          e.Name,
						Path:          e.Path,
						Args:          e.Args,
						Icon:          e.Icon,
						Killable:      e.Killable,
						KillTrigger:   e.KillTrigger.String(),
						CaptureOutput: e.CaptureOutput,
					})
				}

				return out.PrintJSON(list)
			}

			warnProblems(out, loaded)

			if len(loaded.Entries) == 0 {
				out.Muted("(no entries)")
				return nil
			}

			rows := make([][]string, 0, len(loaded.Entries))
			for _, e := range loaded.Entries {
				kill := "-"
				if e.Killable {
					kill = e.KillTrigger.String()
				}

				command := strings.Join(e.Argv(), " ")

				rows = append(rows, []string{e.Name, command, kill, yesNo(e.CaptureOutput)})
			}

			out.Table([]string{"NAME", "COMMAND", "STOP", "CAPTURE"}, rows)

			return nil
		},
	}

	addEntriesFlag(cmd, cfg)

	return cmd
}

func newCheckCmd() *cobra.Command {
	var noExecCheck bool

	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the entries file",
		Long: `Load and validate the entries file, reporting every entry the launcher
would skip. Exits non-zero when any entry is invalid.

Use --no-exec-check to validate a file written for another machine.`,
		Example: `  gridlaunch check
  gridlaunch check --entries games.conf --no-exec-check`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			loaded, err := loadEntries(cfg, noExecCheck)
			if err != nil {
				return err
			}

			name := filepath.Base(loaded.Path)
			out.Success("Loaded %d %s from %s", len(loaded.Entries), plural(len(loaded.Entries), "entry", "entries"), name)

			if n := warnProblems(out, loaded); n > 0 {
				return clierrors.EntriesInvalid(name, n)
			}

			if len(loaded.Entries) == 0 {
				return clierrors.NoEntries(name)
			}

			for _, e := range loaded.Entries {
				if e.Killable && !e.KillTrigger.IsSet() {
					out.Info("%s is killable but has no kill trigger", e.Name)
				}
			}

			return nil
		},
	}

	addEntriesFlag(cmd, cfg)
	cmd.Flags().BoolVar(&noExecCheck, "no-exec-check", false, "Skip the executable check")

	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
