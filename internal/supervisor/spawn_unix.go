//go:build unix

package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/kioskware/gridlaunch/internal/launch"
)

// OSSpawner creates real child processes. The child inherits the
// launcher's stdin and, unless a capture sink is given, its stdout and
// stderr.
type OSSpawner struct {
	// kill is injectable for tests; defaults to unix.Kill.
	kill func(pid int, sig syscall.Signal) error
}

// NewOSSpawner returns a spawner backed by fork/exec.
func NewOSSpawner() *OSSpawner {
	return &OSSpawner{kill: unix.Kill}
}

// Spawn starts the child described by spec.
func (s *OSSpawner) Spawn(spec *SpawnSpec) (Process, error) {
	if spec == nil || spec.Path == "" {
		return nil, fmt.Errorf("spawn: empty executable path")
	}

	cmd := exec.Command(spec.Path) //nolint:gosec // G204: path comes from the validated entry list
	if len(spec.Argv) > 0 {
		cmd.Args = spec.Argv
	}

	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if spec.Output != nil {
		cmd.Stdout = spec.Output
		cmd.Stderr = spec.Output
	}

	// A child in its own group must also own the terminal, or its first
	// read from the console stops it with SIGTTIN.
	foreground := spec.ProcessGroup && term.IsTerminal(int(os.Stdin.Fd()))

	if spec.ProcessGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Foreground: foreground, Ctty: 0}
	}

	if err := cmd.Start(); err != nil {
		if foreground {
			_ = reclaimTerminal(int(os.Stdin.Fd()))
		}

		return nil, annotateSpawnError(err, spec.Path)
	}

	proc := &osProcess{
		cmd:        cmd,
		pid:        cmd.Process.Pid,
		kill:       s.kill,
		foreground: foreground,
	}

	if spec.ProcessGroup {
		proc.pgid = proc.pid
	}

	if proc.kill == nil {
		proc.kill = unix.Kill
	}

	return proc, nil
}

func annotateSpawnError(err error, path string) error {
	if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
		return fmt.Errorf("start %s: %w (check executable permissions and noexec mounts)", path, err)
	}

	return fmt.Errorf("start %s: %w", path, err)
}

type osProcess struct {
	cmd  *exec.Cmd
	pid  int
	pgid int
	kill func(pid int, sig syscall.Signal) error
	// foreground is set when the child's group was handed the terminal.
	foreground bool
}

func (p *osProcess) Pid() int {
	return p.pid
}

func (p *osProcess) TryWait() (bool, launch.ExitStatus, error) {
	var ws unix.WaitStatus

	for {
		pid, err := unix.Wait4(p.pid, &ws, unix.WNOHANG, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if err != nil {
			return false, launch.ExitStatus{}, fmt.Errorf("wait4 pid %d: %w", p.pid, err)
		}

		if pid == 0 {
			return false, launch.ExitStatus{}, nil
		}

		break
	}

	if ws.Signaled() {
		return true, launch.ExitStatus{Code: -1, Signal: ws.Signal(), Signaled: true}, nil
	}

	return true, launch.ExitStatus{Code: ws.ExitStatus()}, nil
}

// Signal delivers sig to the process group when there is one, falling back
// to the single process.
func (p *osProcess) Signal(sig syscall.Signal) error {
	if p.pgid > 0 {
		if err := p.kill(-p.pgid, sig); err == nil {
			return nil
		}
	}

	if err := p.kill(p.pid, sig); err != nil {
		return fmt.Errorf("signal pid %d with %s: %w", p.pid, sig, err)
	}

	return nil
}

func (p *osProcess) Release() error {
	if p.foreground {
		p.foreground = false

		if err := reclaimTerminal(int(os.Stdin.Fd())); err != nil {
			return err
		}
	}

	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	if err := p.cmd.Process.Release(); err != nil {
		return fmt.Errorf("release pid %d: %w", p.pid, err)
	}

	return nil
}

// reclaimTerminal makes the launcher's process group the terminal's
// foreground group again. A background group calling tcsetpgrp gets
// SIGTTOU, so it is ignored for the duration.
func reclaimTerminal(fd int) error {
	signal.Ignore(syscall.SIGTTOU)
	defer signal.Reset(syscall.SIGTTOU)

	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, unix.Getpgrp()); err != nil {
		return fmt.Errorf("reclaim terminal foreground: %w", err)
	}

	return nil
}
