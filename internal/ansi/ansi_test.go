package ansi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text",
			in:   "hello world",
			want: "hello world",
		},
		{
			name: "single color sequence",
			in:   "\x1b[31mred\x1b[0m text",
			want: "red text",
		},
		{
			name: "multiple sequences",
			in:   "a\x1b[1mb\x1b[0mc\x1b[32md\x1b[0m",
			want: "abcd",
		},
		{
			name: "unicode around ansi",
			in:   "✓ \x1b[36mblue\x1b[0m 你好",
			want: "✓ blue 你好",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in); got != tt.want {
				t.Fatalf("Strip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty",
			in:   "",
			want: []string{},
		},
		{
			name: "trailing blank lines dropped",
			in:   "OK\n\n\n",
			want: []string{"OK"},
		},
		{
			name: "colored diagnostics",
			in:   "\x1b[32mPASS\x1b[0m cpu\n\x1b[31mFAIL\x1b[0m disk\n",
			want: []string{"PASS cpu", "FAIL disk"},
		},
		{
			name: "progress redraw keeps last state",
			in:   "copy 10%\rcopy 50%\rcopy 100%\ndone\n",
			want: []string{"copy 100%", "done"},
		},
		{
			name: "crlf line endings",
			in:   "one\r\ntwo\r\n",
			want: []string{"one", "two"},
		},
		{
			name: "tabs and bell",
			in:   "a\tb\a\n",
			want: []string{"a    b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
