package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kioskware/gridlaunch/internal/testutil"
)

func TestAllErrorsHaveHints(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
	}{
		{"ConfigFailed", ConfigFailed("save config", nil)},
		{"UnknownConfigKey", UnknownConfigKey("api.url", []string{"grid.columns"})},
		{"EntriesUnreadable", EntriesUnreadable("/etc/entries.yaml", nil)},
		{"EntriesInvalid", EntriesInvalid("/etc/entries.yaml", 2)},
		{"NoEntries", NoEntries("/etc/entries.yaml")},
		{"InvalidTrigger", InvalidTrigger("mouse:left", nil)},
		{"NotATerminal", NotATerminal()},
		{"DisplayFailed", DisplayFailed(nil)},
		{"DevicesUnavailable", DevicesUnavailable("/dev/input", nil)},
		{"LauncherFailed", LauncherFailed(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Hint == "" {
				t.Errorf("%s() should have a hint, got empty string", tt.name)
			}

			if tt.err.Message == "" {
				t.Errorf("%s() should have a message, got empty string", tt.name)
			}

			if tt.err.Code == ExitSuccess {
				t.Errorf("%s() code = 0, want non-zero", tt.name)
			}
		})
	}
}

func TestEntriesInvalidPlural(t *testing.T) {
	if got := EntriesInvalid("e.yaml", 1).Message; got != "1 invalid entry in e.yaml" {
		t.Errorf("Message = %q", got)
	}

	if got := EntriesInvalid("e.yaml", 3).Message; got != "3 invalid entries in e.yaml" {
		t.Errorf("Message = %q", got)
	}
}

func TestCLIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
		want string
	}{
		{
			name: "message only",
			err:  &CLIError{Message: "test error"},
			want: "test error",
		},
		{
			name: "message with cause",
			err:  &CLIError{Message: "test error", Cause: New(1, "underlying")},
			want: "test error: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root")
	err := DisplayFailed(cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(DisplayFailed(cause), cause) = false")
	}

	var cliErr *CLIError
	if !As(fmt.Errorf("outer: %w", err), &cliErr) || cliErr.Code != ExitDisplay {
		t.Errorf("As() = %v, want CLIError with ExitDisplay", cliErr)
	}
}

func TestWithHint(t *testing.T) {
	err := New(1, "test").WithHint("do this")

	if err.Hint != "do this" {
		t.Errorf("WithHint() hint = %q, want %q", err.Hint, "do this")
	}
}

func TestWrap(t *testing.T) {
	cause := New(1, "cause")
	err := Wrap(ExitConfig, "wrapped", cause)

	if err.Code != ExitConfig {
		t.Errorf("Wrap() code = %d, want %d", err.Code, ExitConfig)
	}

	if err.Cause != cause { //nolint:errorlint // testing struct field identity
		t.Errorf("Wrap() cause = %v, want %v", err.Cause, cause)
	}
}

// formatCLIError produces a deterministic string representation of a CLIError for golden file comparison.
func formatCLIError(err *CLIError) string {
	return fmt.Sprintf("Message: %s\nHint: %s\nCode: %d\n", err.Message, err.Hint, err.Code)
}

func TestErrorMessages_Golden(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
	}{
		{"ConfigFailed", ConfigFailed("save config", nil)},
		{"UnknownConfigKey", UnknownConfigKey("api.url", []string{"grid.columns", "ui.title"})},
		{"EntriesUnreadable", EntriesUnreadable("/etc/gridlaunch/entries.yaml", nil)},
		{"EntriesInvalid", EntriesInvalid("/etc/gridlaunch/entries.yaml", 2)},
		{"NoEntries", NoEntries("/etc/gridlaunch/entries.yaml")},
		{"InvalidTrigger", InvalidTrigger("mouse:left", nil)},
		{"NotATerminal", NotATerminal()},
		{"DisplayFailed", DisplayFailed(nil)},
		{"DevicesUnavailable", DevicesUnavailable("/dev/input", nil)},
		{"LauncherFailed", LauncherFailed(nil)},
	}

	var sb strings.Builder
	for _, tt := range tests {
		fmt.Fprintf(&sb, "--- %s ---\n", tt.name)
		sb.WriteString(formatCLIError(tt.err))
		sb.WriteString("\n")
	}

	testutil.AssertGolden(t, sb.String(), "error_messages.golden")
}
