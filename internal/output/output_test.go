package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kioskware/gridlaunch/internal/terminal"
	"github.com/kioskware/gridlaunch/internal/testutil"
)

func plainWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer

	return NewWriter(&out, &errOut, &terminal.Info{IsTTY: false}), &out, &errOut
}

func TestWriter_Print(t *testing.T) {
	w, out, _ := plainWriter()
	w.Print("hello %s", "kiosk")

	if got := out.String(); got != "hello kiosk" {
		t.Errorf("Print() = %q, want %q", got, "hello kiosk")
	}

	out.Reset()
	w.Quiet = true
	w.Print("hidden")

	if out.Len() != 0 {
		t.Errorf("Print() in quiet mode wrote %q", out.String())
	}
}

func TestWriter_PrintJSON(t *testing.T) {
	w, out, _ := plainWriter()

	if err := w.PrintJSON(map[string]int{"columns": 3}); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	if got, want := out.String(), "{\n  \"columns\": 3\n}\n"; got != want {
		t.Errorf("PrintJSON() = %q, want %q", got, want)
	}
}

func TestWriter_FailureIgnoresQuiet(t *testing.T) {
	w, out, errOut := plainWriter()
	w.Quiet = true
	w.Failure("entry %d invalid", 2)

	if out.Len() != 0 {
		t.Errorf("Failure() wrote to stdout: %q", out.String())
	}

	if got, want := errOut.String(), XMark+" entry 2 invalid\n"; got != want {
		t.Errorf("Failure() = %q, want %q", got, want)
	}
}

func TestWriter_Context(t *testing.T) {
	w, _, _ := plainWriter()
	ctx := w.WithContext(context.Background())

	if got := FromContext(ctx); got != w {
		t.Error("FromContext() did not return stored writer")
	}
}

func TestSpinner_DisabledIsSilent(t *testing.T) {
	w, out, errOut := plainWriter()

	s := w.Spinner("Scanning input devices")
	s.Start()
	s.Stop()

	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("disabled spinner wrote %q / %q", out.String(), errOut.String())
	}
}

func TestStatusMessages_Golden(t *testing.T) {
	w, out, _ := plainWriter()
	w.Err = out

	w.Success("Loaded %d entries from %s", 4, "entries.yaml")
	w.Warning("Skipped %s: %s", "RetroArch", "not executable")
	w.Info("Kill trigger: %s", "gamepad:mode")
	w.Muted("%s", "(no devices)")
	w.Failure("No launchable entries")

	testutil.AssertGolden(t, out.String(), "status_messages.golden")
}

func TestTable_Plain(t *testing.T) {
	w, out, _ := plainWriter()

	w.Table([]string{"NAME", "PATH"}, [][]string{
		{"Shell", "/bin/sh"},
		{"RetroArch", "/usr/bin/retroarch"},
	})

	var lines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) != 3 {
		t.Fatalf("Table() rows = %d, want 3:\n%s", len(lines), out.String())
	}

	for i, want := range []string{"NAME", "Shell", "RetroArch"} {
		if got := strings.TrimSpace(lines[i]); !strings.HasPrefix(got, want) {
			t.Errorf("row %d = %q, want prefix %q", i, got, want)
		}
	}

	if strings.Index(lines[1], "/bin/sh") != strings.Index(lines[2], "/usr/bin/retroarch") {
		t.Errorf("columns not aligned:\n%s", out.String())
	}
}
