package supervisor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultCaptureLimit is how many bytes of captured output are kept.
const DefaultCaptureLimit = 8192

// TruncatedMarker is appended when a child wrote more than the limit.
const TruncatedMarker = "\n[output truncated]\n"

// openCaptureSink creates or truncates the capture file. The supervisor
// keeps the handle until the child is reaped.
func openCaptureSink(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("capture file path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create capture directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}

	return f, nil
}

// drainCapture reads at most limit bytes from the start of the sink and
// closes it. Reading by offset keeps this independent of the file position
// the child left behind.
func drainCapture(f *os.File, limit int) (output string, truncated bool, err error) {
	defer f.Close()

	if limit <= 0 {
		limit = DefaultCaptureLimit
	}

	buf := make([]byte, limit+1)

	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return "", false, fmt.Errorf("read capture file: %w", err)
	}

	if n > limit {
		return string(buf[:limit]) + TruncatedMarker, true, nil
	}

	return string(buf[:n]), false, nil
}
