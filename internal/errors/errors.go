// Package errors provides structured CLI error types for gridlaunch.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for CLI errors.
const (
	ExitSuccess   = 0  // Successful execution
	ExitGeneral   = 1  // General error
	ExitConfig    = 4  // Configuration or entries error
	ExitExecution = 6  // Launcher runtime failure
	ExitDisplay   = 7  // Terminal/display unavailable
	ExitUsage     = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your gridlaunch config directory",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// UnknownConfigKey returns an error for a key gridlaunch does not use.
func UnknownConfigKey(key string, known []string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Unknown config key: %s", key),
		Hint:    fmt.Sprintf("Known keys: %s", strings.Join(known, ", ")),
		Code:    ExitUsage,
	}
}

// EntriesUnreadable returns an error when the entries file cannot be loaded.
func EntriesUnreadable(path string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot load entries from %s", path),
		Hint:    "Check the file exists and is valid YAML, TOML or [game] .conf syntax",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// EntriesInvalid returns an error when some entries failed validation.
func EntriesInvalid(path string, problems int) *CLIError {
	noun := "entries"
	if problems == 1 {
		noun = "entry"
	}

	return &CLIError{
		Message: fmt.Sprintf("%d invalid %s in %s", problems, noun, path),
		Hint:    "Fix the listed entries or run 'gridlaunch check --no-exec-check' to validate syntax only",
		Code:    ExitConfig,
	}
}

// NoEntries returns an error when no launchable entry remains.
func NoEntries(path string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("No launchable entries in %s", path),
		Hint:    "Run 'gridlaunch check' to see why entries were skipped",
		Code:    ExitConfig,
	}
}

// InvalidTrigger returns an error for a malformed kill trigger setting.
func InvalidTrigger(value string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid kill trigger: %s", value),
		Hint:    "Use none, gamepad:<button> or keyboard:<key>; run 'gridlaunch devices --symbols' for names",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// NotATerminal returns an error when the launcher is not attached to a TTY.
func NotATerminal() *CLIError {
	return &CLIError{
		Message: "gridlaunch run requires an interactive terminal",
		Hint:    "Start it from the kiosk console or a terminal session, not through a pipe",
		Code:    ExitDisplay,
	}
}

// DisplayFailed returns an error when the screen cannot be initialized.
func DisplayFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Failed to initialize the display",
		Hint:    "Check TERM is set and the terminal supports full-screen mode",
		Cause:   cause,
		Code:    ExitDisplay,
	}
}

// DevicesUnavailable returns an error when input devices cannot be listed.
func DevicesUnavailable(dir string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot read input devices in %s", dir),
		Hint:    "Add your user to the 'input' group or run as a user with access to the device nodes",
		Cause:   cause,
		Code:    ExitGeneral,
	}
}

// LauncherFailed returns an error when the launcher loop stops abnormally.
func LauncherFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Launcher stopped unexpectedly",
		Hint:    "Run with --log-level=debug and check the log file for details",
		Cause:   cause,
		Code:    ExitExecution,
	}
}
