package entries

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func parseYAML(data []byte) ([]record, error) {
	var doc document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("parse entries yaml: %w", err)
	}

	return doc.Entries, nil
}

func parseTOML(data []byte) ([]record, error) {
	var doc document

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse entries toml: %w", err)
	}

	return doc.Entries, nil
}

// parseLegacy reads the [game] key=value format. Unknown keys and lines
// outside a section are ignored.
func parseLegacy(data []byte) ([]record, error) {
	var (
		records []record
		cur     *record
		lineNo  int
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if line == "[game]" || line == "[entry]" {
			records = append(records, record{line: lineNo})
			cur = &records[len(records)-1]

			continue
		}

		if cur == nil {
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		if err := applyLegacyKey(cur, key, val); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read entries conf: %w", err)
	}

	return records, nil
}

func applyLegacyKey(rec *record, key, val string) error {
	switch key {
	case "name":
		rec.Name = val
	case "binary", "path":
		rec.Path = val
	case "args":
		args, err := shlex.Split(val)
		if err != nil {
			return fmt.Errorf("args: %w", err)
		}

		rec.Args = args
	case "icon":
		rec.Icon = val
	case "killable":
		rec.Killable = legacyBool(val)
	case "capture_output":
		rec.CaptureOutput = legacyBool(val)
	case "kill_trigger":
		rec.KillTrigger = val
	case "kill_button":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("kill_button %q is not a number", val)
		}

		if n < 0 {
			rec.KillTrigger = "none"
		} else {
			rec.KillTrigger = "gamepad:" + strconv.Itoa(n)
		}
	}

	return nil
}

func legacyBool(val string) bool {
	switch strings.ToLower(val) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}
