package launch

import (
	"fmt"
	"syscall"
	"time"
)

// State is the supervisor lifecycle state.
type State int

// State values.
const (
	StateIdle State = iota
	StateLaunching
	StateRunning
	StateTerminating
	StateReaping
	StateResuming
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateReaping:
		return "reaping"
	case StateResuming:
		return "resuming"
	default:
		return "unknown"
	}
}

// HasChild reports whether a child process exists in this state.
func (s State) HasChild() bool {
	return s == StateRunning || s == StateTerminating
}

// ExitStatus is how a reaped child ended.
type ExitStatus struct {
	Code   int
	Signal syscall.Signal
	// Signaled is true when the child was terminated by Signal.
	Signaled bool
	// Unknown is true when the wait call failed and the child was
	// assumed gone.
	Unknown bool
}

// String describes the exit for logs and the UI.
func (s ExitStatus) String() string {
	switch {
	case s.Unknown:
		return "exit status unknown"
	case s.Signaled:
		return fmt.Sprintf("killed by signal %d (%s)", int(s.Signal), s.Signal)
	default:
		return fmt.Sprintf("exited with code %d", s.Code)
	}
}

// Result is the outcome of one launch, delivered to the UI.
type Result struct {
	Entry    Entry
	Index    int
	Status   ExitStatus
	Output   string
	Captured bool
	// Truncated is set when the child wrote more than the capture limit.
	Truncated bool
	Killed    bool
	Duration  time.Duration
	// Err is set when the process could not be created.
	Err error
}

// Failed reports whether the launch never produced a running child.
func (r *Result) Failed() bool {
	return r.Err != nil
}
