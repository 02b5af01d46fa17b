// Package config handles gridlaunch configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Command-line flags bound with BindFlag
//  2. Environment variables (GRIDLAUNCH_*)
//  3. Config file (~/.config/gridlaunch/config.yaml)
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kioskware/gridlaunch/internal/paths"
)

const (
	// DefaultColumns is the grid column count.
	DefaultColumns = 3
	// DefaultTitle is the header title.
	DefaultTitle = "Launcher"
	// DefaultDebounce is the post-resume pointer suppression window.
	DefaultDebounce = 600 * time.Millisecond
	// DefaultDevicesDir is the evdev directory.
	DefaultDevicesDir = "/dev/input"
	// DefaultPollInterval is the main-loop poll cadence.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultReconcileInterval bounds a missed SIGCHLD.
	DefaultReconcileInterval = time.Second
	// DefaultGracePeriod is the SIGTERM to SIGKILL escalation delay.
	DefaultGracePeriod = 2 * time.Second
	// DefaultCaptureLimit is the number of captured bytes kept.
	DefaultCaptureLimit = 8192
)

// Keys lists every configuration key in display order.
var Keys = []string{
	"entries.file",
	"grid.columns",
	"ui.title",
	"input.debounce",
	"input.devices_dir",
	"input.gamepad",
	"input.keyboard",
	"input.exclusive",
	"supervisor.poll_interval",
	"supervisor.reconcile_interval",
	"supervisor.grace_period",
	"supervisor.capture_file",
	"supervisor.capture_limit",
	"supervisor.process_group",
	"supervisor.default_kill_trigger",
	"telemetry.endpoint",
}

// Config holds the gridlaunch configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	// Set defaults
	entriesFile, err := paths.EntriesFile()
	if err != nil {
		entriesFile = "entries.yaml"
	}

	v.SetDefault("entries.file", entriesFile)
	v.SetDefault("grid.columns", DefaultColumns)
	v.SetDefault("ui.title", DefaultTitle)
	v.SetDefault("input.debounce", DefaultDebounce)
	v.SetDefault("input.devices_dir", DefaultDevicesDir)
	v.SetDefault("input.gamepad", true)
	v.SetDefault("input.keyboard", false)
	v.SetDefault("input.exclusive", true)
	v.SetDefault("supervisor.poll_interval", DefaultPollInterval)
	v.SetDefault("supervisor.reconcile_interval", DefaultReconcileInterval)
	v.SetDefault("supervisor.grace_period", DefaultGracePeriod)
	v.SetDefault("supervisor.capture_file", paths.CaptureFile())
	v.SetDefault("supervisor.capture_limit", DefaultCaptureLimit)
	v.SetDefault("supervisor.process_group", false)
	v.SetDefault("supervisor.default_kill_trigger", "")
	v.SetDefault("telemetry.endpoint", "")

	// Config file location
	if configDir, dirErr := paths.ConfigRoot(); dirErr == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables
	v.SetEnvPrefix("GRIDLAUNCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// BindFlag makes a command-line flag override key when it is set.
func (c *Config) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}

	if err := c.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}

	return nil
}

// Get returns a configuration value.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns a configuration value as int.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool returns a configuration value as bool.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration returns a configuration value as a duration.
func (c *Config) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

// IsKnown reports whether key is a gridlaunch setting.
func IsKnown(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}

	return false
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value interface{}) error {
	c.v.Set(key, value)

	configFile, err := paths.ConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(configFile)
}

// All returns all configuration as a map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// EntriesFile returns the entry source path.
func (c *Config) EntriesFile() string {
	return c.GetString("entries.file")
}

// Columns returns the grid column count, never less than one.
func (c *Config) Columns() int {
	if n := c.GetInt("grid.columns"); n > 0 {
		return n
	}

	return DefaultColumns
}

// Title returns the header title.
func (c *Config) Title() string {
	return c.GetString("ui.title")
}

// Debounce returns the post-resume pointer suppression window.
func (c *Config) Debounce() time.Duration {
	return c.positiveDuration("input.debounce", DefaultDebounce)
}

// DevicesDir returns the evdev directory.
func (c *Config) DevicesDir() string {
	return c.GetString("input.devices_dir")
}

// GamepadEnabled reports whether evdev gamepads are opened.
func (c *Config) GamepadEnabled() bool {
	return c.GetBool("input.gamepad")
}

// KeyboardEnabled reports whether evdev keyboards are opened.
func (c *Config) KeyboardEnabled() bool {
	return c.GetBool("input.keyboard")
}

// Exclusive reports whether held devices are grabbed while the launcher
// is visible.
func (c *Config) Exclusive() bool {
	return c.GetBool("input.exclusive")
}

// PollInterval returns the main-loop poll cadence.
func (c *Config) PollInterval() time.Duration {
	return c.positiveDuration("supervisor.poll_interval", DefaultPollInterval)
}

// ReconcileInterval returns how often a wait is attempted without SIGCHLD.
func (c *Config) ReconcileInterval() time.Duration {
	return c.positiveDuration("supervisor.reconcile_interval", DefaultReconcileInterval)
}

// GracePeriod returns the SIGTERM to SIGKILL delay.
func (c *Config) GracePeriod() time.Duration {
	return c.positiveDuration("supervisor.grace_period", DefaultGracePeriod)
}

// CaptureFile returns the output capture sink path.
func (c *Config) CaptureFile() string {
	return c.GetString("supervisor.capture_file")
}

// CaptureLimit returns how many captured bytes are kept.
func (c *Config) CaptureLimit() int {
	if n := c.GetInt("supervisor.capture_limit"); n > 0 {
		return n
	}

	return DefaultCaptureLimit
}

// ProcessGroup reports whether every child gets its own process group.
// Killable entries get one regardless.
func (c *Config) ProcessGroup() bool {
	return c.GetBool("supervisor.process_group")
}

// DefaultKillTrigger returns the trigger for killable entries without one.
func (c *Config) DefaultKillTrigger() string {
	return c.GetString("supervisor.default_kill_trigger")
}

// TelemetryEndpoint returns the OTLP/HTTP endpoint.
func (c *Config) TelemetryEndpoint() string {
	return c.GetString("telemetry.endpoint")
}

func (c *Config) positiveDuration(key string, fallback time.Duration) time.Duration {
	if d := c.GetDuration(key); d > 0 {
		return d
	}

	return fallback
}
