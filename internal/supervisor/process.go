package supervisor

import (
	"os"
	"syscall"

	"github.com/kioskware/gridlaunch/internal/launch"
)

// Process is a spawned child as seen by the supervisor.
type Process interface {
	Pid() int
	// TryWait reaps the child if it has exited and returns immediately
	// otherwise. It never blocks.
	TryWait() (exited bool, status launch.ExitStatus, err error)
	Signal(sig syscall.Signal) error
	// Release frees the handle and hands the terminal back to the
	// launcher. TryWait keeps working by pid afterwards.
	Release() error
}

// SpawnSpec describes the process to create. Output redirection is decided
// here, at spawn time, never patched in afterwards.
type SpawnSpec struct {
	Path string
	Argv []string
	Env  []string
	Dir  string
	// Output receives the child's stdout and stderr when non-nil.
	Output *os.File
	// ProcessGroup starts the child as the leader of a new process group
	// and makes Signal target the whole group.
	ProcessGroup bool
}

// Spawner creates child processes.
type Spawner interface {
	Spawn(spec *SpawnSpec) (Process, error)
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(spec *SpawnSpec) (Process, error)

// Spawn calls f.
func (f SpawnerFunc) Spawn(spec *SpawnSpec) (Process, error) {
	return f(spec)
}
