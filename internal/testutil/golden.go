// Package testutil holds helpers shared by gridlaunch tests: golden files
// for CLI output and simulation screens for the launcher UI.
package testutil

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var update = flag.Bool("update", false, "rewrite testdata/*.golden with the current output")

// AssertGolden compares got against testdata/<name>. With -update the file
// is rewritten instead.
func AssertGolden(t testing.TB, got, name string) {
	t.Helper()

	path := GoldenPath(name)

	if *update {
		writeGolden(t, path, got)
		return
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing golden file %s (go test -update creates it)", path)
	}

	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	if diff := cmp.Diff(strings.Split(string(want), "\n"), strings.Split(got, "\n")); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", path, diff)
	}
}

func writeGolden(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write golden file %s: %v", path, err)
	}

	t.Logf("rewrote %s", path)
}

// GoldenPath returns the path of a golden file in testdata.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name)
}
