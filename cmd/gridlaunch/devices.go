package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kioskware/gridlaunch/internal/config"
	"github.com/kioskware/gridlaunch/internal/device"
	clierrors "github.com/kioskware/gridlaunch/internal/errors"
	"github.com/kioskware/gridlaunch/internal/observability"
	"github.com/kioskware/gridlaunch/internal/output"
)

// deviceJSON is the JSON shape of a device in `devices --json`.
type deviceJSON struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// symbolsJSON is the JSON shape of `devices --symbols --json`.
type symbolsJSON struct {
	Gamepad  []string `json:"gamepad"`
	Keyboard []string `json:"keyboard"`
}

func newDevicesCmd() *cobra.Command {
	var symbols bool

	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Show detected input devices",
		Long: `List the evdev input devices gridlaunch can see and the role each one
would be opened as. Devices that cannot be opened are reported with a
warning, usually a permissions problem.

Use --symbols to print the button and key names accepted in kill triggers.`,
		Example: `  gridlaunch devices
  gridlaunch devices --symbols`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if symbols {
				return printSymbols(out)
			}

			dir := cfg.DevicesDir()
			if _, err := os.Stat(dir); err != nil {
				return clierrors.DevicesUnavailable(dir, err)
			}

			logger := observability.FromContext(cmd.Context())
			mgr := device.NewManager(dir, observability.Component(logger, "device"))

			spin := out.Spinner("Scanning " + dir)
			spin.Start()

			infos, err := mgr.Enumerate()

			spin.Stop()

			if err != nil && len(infos) == 0 {
				return clierrors.DevicesUnavailable(dir, err)
			}

			if out.JSON {
				list := make([]deviceJSON, 0, len(infos))
				for _, info := range infos {
					list = append(list, deviceJSON{Path: info.Path, Name: info.Name, Role: info.Role.String()})
				}

				return out.PrintJSON(list)
			}

			if err != nil {
				out.Warning("Some devices could not be opened: %v", err)
			}

			if len(infos) == 0 {
				out.Muted("(no devices)")
				return nil
			}

			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{info.Path, info.Role.String(), info.Name})
			}

			out.Table([]string{"DEVICE", "ROLE", "NAME"}, rows)

			return nil
		},
	}

	cmd.Flags().String("devices-dir", "", "Directory holding evdev event nodes")
	_ = cfg.BindFlag("input.devices_dir", cmd.Flags().Lookup("devices-dir"))

	cmd.Flags().BoolVar(&symbols, "symbols", false, "List button and key names usable as kill triggers")

	return cmd
}

func printSymbols(out *output.Writer) error {
	gamepad := device.Symbols(true)
	keyboard := device.Symbols(false)

	if out.JSON {
		return out.PrintJSON(symbolsJSON{Gamepad: gamepad, Keyboard: keyboard})
	}

	out.Print("gamepad:  %s\n", strings.Join(gamepad, " "))
	out.Print("keyboard: %s\n", strings.Join(keyboard, " "))

	return nil
}
