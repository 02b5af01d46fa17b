package main

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	clierrors "github.com/kioskware/gridlaunch/internal/errors"
)

// collectAllCommands returns every command in the tree (including root).
func collectAllCommands(root *cobra.Command) []*cobra.Command {
	var all []*cobra.Command

	var walk func(cmd *cobra.Command)

	walk = func(cmd *cobra.Command) {
		all = append(all, cmd)
		for _, child := range cmd.Commands() {
			walk(child)
		}
	}

	walk(root)

	return all
}

// TestAllRunnableCommandsHaveArgsValidator fails if any runnable command is
// missing an Args validator.
func TestAllRunnableCommandsHaveArgsValidator(t *testing.T) {
	root := newRootCmd()

	var missing []string

	for _, cmd := range collectAllCommands(root) {
		if cmd.Runnable() && cmd.Args == nil {
			missing = append(missing, cmd.CommandPath())
		}
	}

	if len(missing) > 0 {
		t.Errorf("runnable commands missing Args validator:\n  %s\n\nAdd Args: noArgs (or another validator) to each command.",
			strings.Join(missing, "\n  "))
	}
}

// TestAllRunnableCommandsHaveExampleAndLong keeps help output useful for
// every command a user can run.
func TestAllRunnableCommandsHaveExampleAndLong(t *testing.T) {
	root := newRootCmd()

	var missing []string

	for _, cmd := range collectAllCommands(root) {
		if !cmd.Runnable() {
			continue
		}

		if strings.TrimSpace(cmd.Example) == "" {
			missing = append(missing, cmd.CommandPath()+": Example")
		}

		if strings.TrimSpace(cmd.Long) == "" {
			missing = append(missing, cmd.CommandPath()+": Long")
		}

		if strings.Contains(cmd.Long, "Example:") || strings.Contains(cmd.Long, "```") {
			missing = append(missing, cmd.CommandPath()+": example embedded in Long")
		}
	}

	if len(missing) > 0 {
		t.Errorf("help text problems:\n  %s", strings.Join(missing, "\n  "))
	}
}

// TestShortDescriptions checks length and style of every Short field.
func TestShortDescriptions(t *testing.T) {
	const maxLen = 60

	root := newRootCmd()

	var violations []string

	for _, cmd := range collectAllCommands(root) {
		short := cmd.Short
		if short == "" {
			continue
		}

		if len(short) > maxLen {
			violations = append(violations, fmt.Sprintf("%s (%d chars): %q", cmd.CommandPath(), len(short), short))
		}

		if !unicode.IsUpper([]rune(short)[0]) {
			violations = append(violations, fmt.Sprintf("%s: starts lowercase: %q", cmd.CommandPath(), short))
		}

		if strings.HasSuffix(short, ".") {
			violations = append(violations, fmt.Sprintf("%s: ends with period: %q", cmd.CommandPath(), short))
		}
	}

	if len(violations) > 0 {
		t.Errorf("Short description violations:\n  %s", strings.Join(violations, "\n  "))
	}
}

// TestDataCommandsSupportJSON forces a decision about --json for every
// data-producing command.
func TestDataCommandsSupportJSON(t *testing.T) {
	jsonSupported := map[string]bool{
		"gridlaunch list":        true,
		"gridlaunch devices":     true,
		"gridlaunch config list": true,
	}

	jsonDeferred := map[string]bool{
		"gridlaunch config get": true,
	}

	dataVerbs := map[string]bool{
		"list":    true,
		"get":     true,
		"devices": true,
	}

	root := newRootCmd()

	var unregistered []string

	for _, cmd := range collectAllCommands(root) {
		if !cmd.Runnable() {
			continue
		}

		parts := strings.Fields(cmd.CommandPath())
		if !dataVerbs[parts[len(parts)-1]] {
			continue
		}

		if path := cmd.CommandPath(); !jsonSupported[path] && !jsonDeferred[path] {
			unregistered = append(unregistered, path)
		}
	}

	if len(unregistered) > 0 {
		t.Errorf("data commands not registered for --json support:\n  %s",
			strings.Join(unregistered, "\n  "))
	}
}

// TestFlags checks shorthand collisions and kebab-case names.
func TestFlags(t *testing.T) {
	kebab := regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

	root := newRootCmd()

	var violations []string

	for _, cmd := range collectAllCommands(root) {
		seen := map[string]string{}

		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !kebab.MatchString(f.Name) {
				violations = append(violations, fmt.Sprintf("%s: --%s not kebab-case", cmd.CommandPath(), f.Name))
			}

			if f.Shorthand == "" {
				return
			}

			if existing, ok := seen[f.Shorthand]; ok {
				violations = append(violations, fmt.Sprintf("%s: -%s claimed by both --%s and --%s",
					cmd.CommandPath(), f.Shorthand, existing, f.Name))
			}

			seen[f.Shorthand] = f.Name
		})
	}

	if len(violations) > 0 {
		t.Errorf("flag violations:\n  %s", strings.Join(violations, "\n  "))
	}
}

// TestUnknownFlagReturnsCLIError verifies that flag errors become usage
// errors with a --help hint.
func TestUnknownFlagReturnsCLIError(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"version", "--bogus"})

	err := root.Execute()

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) {
		t.Fatalf("Execute() error = %T %v, want CLIError", err, err)
	}

	if cliErr.Code != clierrors.ExitUsage {
		t.Errorf("exit code = %d, want %d", cliErr.Code, clierrors.ExitUsage)
	}

	if !strings.Contains(cliErr.Hint, "--help") {
		t.Errorf("hint = %q, want --help", cliErr.Hint)
	}
}
