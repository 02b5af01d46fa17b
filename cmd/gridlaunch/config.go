package main

import (
	"github.com/spf13/cobra"

	"github.com/kioskware/gridlaunch/internal/config"
	clierrors "github.com/kioskware/gridlaunch/internal/errors"
	"github.com/kioskware/gridlaunch/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and modify gridlaunch configuration settings.

Settings come from flags, GRIDLAUNCH_* environment variables and the
config file, in that order of priority.`,
		Example: `  gridlaunch config list
  gridlaunch config set grid.columns 4`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long:  `Display every configuration setting with its effective value, including defaults.`,
		Example: `  gridlaunch config list
  gridlaunch config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			if out.JSON {
				settings := make(map[string]interface{}, len(config.Keys))
				for _, key := range config.Keys {
					settings[key] = cfg.Get(key)
				}

				return out.PrintJSON(settings)
			}

			for _, key := range config.Keys {
				out.Print("%s = %v\n", key, cfg.Get(key))
			}

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Retrieve and display the current value of a single configuration key.`,
		Example: `  gridlaunch config get grid.columns`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]

			if !config.IsKnown(key) {
				return clierrors.UnknownConfigKey(key, config.Keys)
			}

			value := config.Load().Get(key)
			if value == nil || value == "" {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Set a configuration value",
		Long:    `Set a configuration key to the given value. The value is persisted to the config file.`,
		Example: `  gridlaunch config set supervisor.default_kill_trigger gamepad:mode`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]

			if !config.IsKnown(key) {
				return clierrors.UnknownConfigKey(key, config.Keys)
			}

			if err := config.Load().Set(key, value); err != nil {
				return clierrors.ConfigFailed("set config", err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}
