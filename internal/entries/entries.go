// Package entries loads the launcher's entry list from YAML, TOML or the
// legacy [game] .conf format and validates it.
package entries

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/kioskware/gridlaunch/internal/device"
	"github.com/kioskware/gridlaunch/internal/launch"
)

//go:embed defaults/entries.yaml
var defaultEntries []byte

// ErrNotExecutable marks an entry whose program cannot be run.
var ErrNotExecutable = errors.New("not executable")

// ErrUnsupportedFormat is returned for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported entries format")

// record is one entry as written in a file.
type record struct {
	Name          string   `yaml:"name" toml:"name"`
	Path          string   `yaml:"path" toml:"path"`
	Args          []string `yaml:"args" toml:"args"`
	Icon          string   `yaml:"icon" toml:"icon"`
	Killable      bool     `yaml:"killable" toml:"killable"`
	KillTrigger   string   `yaml:"kill_trigger" toml:"kill_trigger"`
	CaptureOutput bool     `yaml:"capture_output" toml:"capture_output"`

	// line locates legacy records in problem messages.
	line int
}

type document struct {
	Entries []record `yaml:"entries" toml:"entries"`
}

// Options controls validation.
type Options struct {
	// DefaultKillTrigger applies to killable entries without a trigger.
	DefaultKillTrigger launch.Trigger
	// SkipExecutableCheck disables the executable test; used by `check`
	// when validating a file for another machine.
	SkipExecutableCheck bool
}

// Loaded is the validated entry list.
type Loaded struct {
	Path    string
	Entries []launch.Entry
	// Problems aggregates every dropped entry's reason; nil when none.
	Problems error
}

// Load reads and validates path. Invalid entries are dropped and reported
// in Problems; only an unreadable or unparsable file is an error.
func Load(path string, opts Options) (*Loaded, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read entries file: %w", err)
	}

	records, err := parse(path, data)
	if err != nil {
		return nil, err
	}

	loaded := &Loaded{Path: path}

	var problems *multierror.Error

	for i, rec := range records {
		entry, verr := validate(rec, opts)
		if verr != nil {
			problems = multierror.Append(problems, fmt.Errorf("%s: %w", describe(i, rec), verr))
			continue
		}

		loaded.Entries = append(loaded.Entries, entry)
	}

	loaded.Problems = problems.ErrorOrNil()

	return loaded, nil
}

func parse(path string, data []byte) ([]record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".toml":
		return parseTOML(data)
	case ".conf", ".ini":
		return parseLegacy(data)
	default:
		return nil, fmt.Errorf("%w: %s (use .yaml, .toml or .conf)", ErrUnsupportedFormat, filepath.Base(path))
	}
}

func describe(i int, rec record) string {
	label := rec.Name
	if label == "" {
		label = rec.Path
	}

	if rec.line > 0 {
		return fmt.Sprintf("entry %d (%s, line %d)", i+1, label, rec.line)
	}

	return fmt.Sprintf("entry %d (%s)", i+1, label)
}

func validate(rec record, opts Options) (launch.Entry, error) {
	path := strings.TrimSpace(rec.Path)
	if path == "" {
		return launch.Entry{}, errors.New("missing path")
	}

	if !filepath.IsAbs(path) {
		return launch.Entry{}, fmt.Errorf("path %q must be absolute", path)
	}

	trigger, err := launch.ParseTrigger(rec.KillTrigger)
	if err != nil {
		return launch.Entry{}, err
	}

	if trigger.Symbol != "" && !device.KnownSymbol(trigger.Role == launch.RoleGamepad, trigger.Symbol) {
		return launch.Entry{}, fmt.Errorf("unknown %s button %q", trigger.Role, trigger.Symbol)
	}

	if rec.Killable && !trigger.IsSet() {
		trigger = opts.DefaultKillTrigger
	}

	if !opts.SkipExecutableCheck {
		if err := checkExecutable(path); err != nil {
			return launch.Entry{}, err
		}
	}

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = filepath.Base(path)
	}

	return launch.Entry{
		Name:          name,
		Path:          path,
		Args:          rec.Args,
		Icon:          rec.Icon,
		Killable:      rec.Killable,
		KillTrigger:   trigger,
		CaptureOutput: rec.CaptureOutput,
	}, nil
}

// EnsureDefault writes the default entries file when path does not exist.
// It reports whether a file was written.
func EnsureDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat entries file: %w", err)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		return false, fmt.Errorf("%w: default entries can only be written as YAML", ErrUnsupportedFormat)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // config directory is user-owned
		return false, fmt.Errorf("create entries directory: %w", err)
	}

	if err := os.WriteFile(path, defaultEntries, 0o644); err != nil { //nolint:gosec // entries file is not secret
		return false, fmt.Errorf("write default entries file: %w", err)
	}

	return true, nil
}

// Problems splits an aggregated Problems error into its parts.
func Problems(err error) []error {
	if err == nil {
		return nil
	}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}

	return []error{err}
}
