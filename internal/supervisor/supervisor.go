// Package supervisor owns the launcher's single child-process slot.
//
// All methods run on the main loop. The only asynchronous input is the
// SIGCHLD flag, which Poll consumes; nothing here ever blocks waiting for
// the child.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kioskware/gridlaunch/internal/launch"
	"github.com/kioskware/gridlaunch/internal/observability"
)

const (
	// DefaultGracePeriod is how long a SIGTERM gets before SIGKILL.
	DefaultGracePeriod = 2 * time.Second
	// DefaultReconcileInterval bounds how long a reap can be missed when a
	// SIGCHLD notification is lost.
	DefaultReconcileInterval = time.Second
)

// Policy rejections. Callers may ignore them; they are never user-facing.
var (
	ErrBusy         = errors.New("already running")
	ErrNoChild      = errors.New("no running child")
	ErrNotKillable  = errors.New("entry is not killable")
	ErrUnknownEntry = errors.New("unknown entry")
)

// Surface is the visibility coordinator.
type Surface interface {
	Hide()
	Restore()
}

// InputHooks lets the supervisor move exclusive input devices out of the
// child's way and arm post-resume input suppression.
type InputHooks interface {
	// ReleaseDevices closes every exclusively held device before a fork.
	ReleaseDevices()
	// ReacquireDevices reopens devices with fresh handles. exclusive is
	// false while a child owns the display.
	ReacquireDevices(exclusive bool)
	// ArmDebounce starts the pointer suppression window at now.
	ArmDebounce(now time.Time)
}

// Notifier receives the outcome of every launch.
type Notifier interface {
	ActivationResult(res *launch.Result)
}

// Flag is the SIGCHLD bridge.
type Flag interface {
	Consume() bool
}

// Options configures a Supervisor.
type Options struct {
	Entries  []launch.Entry
	Spawner  Spawner
	Surface  Surface
	Input    InputHooks
	Notifier Notifier
	Flag     Flag
	Logger   *slog.Logger
	Tracer   trace.Tracer

	// Env is the child environment; nil inherits the launcher's.
	Env               []string
	CapturePath       string
	CaptureLimit      int
	GracePeriod       time.Duration
	ReconcileInterval time.Duration
	// ProcessGroup starts every entry in its own process group. Killable
	// entries always get one so a stop reaches the programs they spawn.
	ProcessGroup bool

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Supervisor is the launch state machine.
type Supervisor struct {
	entries      []launch.Entry
	spawner      Spawner
	surface      Surface
	input        InputHooks
	notifier     Notifier
	flag         Flag
	logger       *slog.Logger
	tracer       trace.Tracer
	env          []string
	capturePath  string
	captureLimit int
	grace        time.Duration
	reconcile    time.Duration
	processGroup bool
	now          func() time.Time

	state       launch.State
	proc        Process
	active      launch.Entry
	activeIndex int
	sink        *os.File
	startedAt   time.Time
	lastWait    time.Time
	span        trace.Span

	killRequested bool
	killDeadline  time.Time
	escalated     bool

	// strays are children given up on without a reap.
	strays []Process
}

// New returns an idle supervisor.
func New(opts *Options) *Supervisor {
	s := &Supervisor{
		entries:      opts.Entries,
		spawner:      opts.Spawner,
		surface:      opts.Surface,
		input:        opts.Input,
		notifier:     opts.Notifier,
		flag:         opts.Flag,
		logger:       opts.Logger,
		tracer:       opts.Tracer,
		env:          opts.Env,
		capturePath:  opts.CapturePath,
		captureLimit: opts.CaptureLimit,
		grace:        opts.GracePeriod,
		reconcile:    opts.ReconcileInterval,
		processGroup: opts.ProcessGroup,
		now:          opts.Now,
		state:        launch.StateIdle,
		activeIndex:  -1,
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("")
	}

	if s.captureLimit <= 0 {
		s.captureLimit = DefaultCaptureLimit
	}

	if s.grace <= 0 {
		s.grace = DefaultGracePeriod
	}

	if s.reconcile <= 0 {
		s.reconcile = DefaultReconcileInterval
	}

	if s.now == nil {
		s.now = time.Now
	}

	if s.env == nil {
		s.env = os.Environ()
	}

	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() launch.State {
	return s.state
}

// Entries returns the entry list the supervisor launches from.
func (s *Supervisor) Entries() []launch.Entry {
	return s.entries
}

// Active returns the entry being run and its index. ok is false when idle.
func (s *Supervisor) Active() (entry launch.Entry, index int, ok bool) {
	if s.state == launch.StateIdle {
		return launch.Entry{}, -1, false
	}

	return s.active, s.activeIndex, true
}

// NextDeadline returns when Poll must next run to escalate a pending
// termination. ok is false when no escalation is scheduled.
func (s *Supervisor) NextDeadline() (deadline time.Time, ok bool) {
	if s.state != launch.StateTerminating || s.escalated {
		return time.Time{}, false
	}

	return s.killDeadline, true
}

func (s *Supervisor) transition(next launch.State) {
	if s.state == next {
		return
	}

	s.logger.Debug("supervisor transition",
		slog.String("from", s.state.String()),
		slog.String("to", next.String()),
		slog.String("entry", s.active.Name),
	)

	s.state = next
}

// Launch starts entry index. Any call while not idle is rejected with
// ErrBusy and leaves the running child untouched. A process creation failure
// restores the launcher before returning.
func (s *Supervisor) Launch(ctx context.Context, index int) error {
	if s.state != launch.StateIdle {
		s.logger.Info("launch ignored: already running",
			slog.String("active", s.active.Name),
			slog.String("state", s.state.String()),
		)

		return ErrBusy
	}

	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("%w: index %d", ErrUnknownEntry, index)
	}

	entry := s.entries[index]
	s.active = entry
	s.activeIndex = index
	s.killRequested = false
	s.escalated = false

	spanCtx, span := s.tracer.Start(ctx, "launch", trace.WithAttributes(
		observability.EntryAttributes(entry.Name, entry.Path, entry.Killable, entry.CaptureOutput)...,
	))
	s.span = span

	s.transition(launch.StateLaunching)
	s.logger.Info("launching entry", slog.String("entry", entry.Name), slog.String("path", entry.Path))

	s.surface.Hide()

	var sink *os.File

	if entry.CaptureOutput {
		f, err := openCaptureSink(s.capturePath)
		if err != nil {
			s.logger.Warn("output capture disabled for this run",
				slog.String("entry", entry.Name),
				slog.String("error", err.Error()),
			)
		} else {
			sink = f
		}
	}

	s.input.ReleaseDevices()

	proc, err := s.spawner.Spawn(&SpawnSpec{
		Path:         entry.Path,
		Argv:         entry.Argv(),
		Env:          observability.ChildEnv(spanCtx, s.env),
		Output:       sink,
		ProcessGroup: s.processGroup || entry.Killable,
	})
	if err != nil {
		if sink != nil {
			_ = sink.Close()
		}

		s.logger.Error("launch failed", slog.String("entry", entry.Name), slog.String("error", err.Error()))

		s.input.ReacquireDevices(true)
		s.transition(launch.StateIdle)
		s.surface.Restore()
		s.input.ArmDebounce(s.now())

		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, "spawn failed")
		s.span.End()

		res := &launch.Result{Entry: entry, Index: index, Err: err}
		s.active = launch.Entry{}
		s.activeIndex = -1
		s.notify(res)

		return fmt.Errorf("launch %s: %w", entry.Name, err)
	}

	s.input.ReacquireDevices(false)

	now := s.now()
	s.proc = proc
	s.sink = sink
	s.startedAt = now
	s.lastWait = now
	s.span.SetAttributes(observability.AttrPID.Int(proc.Pid()))

	s.transition(launch.StateRunning)
	s.logger.Info("entry running", slog.String("entry", entry.Name), slog.Int("pid", proc.Pid()))

	return nil
}

// Poll advances the state machine. It must be called on every main-loop
// tick. It reaps abandoned children, escalates an overdue termination,
// consumes the SIGCHLD flag and, when the flag was set or the reconcile
// interval elapsed, tries a non-blocking reap.
func (s *Supervisor) Poll() {
	flagged := s.flag != nil && s.flag.Consume()

	if len(s.strays) > 0 {
		s.reapStrays()
	}

	if !s.state.HasChild() {
		return
	}

	now := s.now()

	if s.escalateIfDue(now) {
		return
	}

	if !flagged && now.Sub(s.lastWait) < s.reconcile {
		return
	}

	s.lastWait = now

	exited, status, err := s.proc.TryWait()

	switch {
	case err != nil:
		s.logger.Error("wait on child failed; assuming it is gone",
			slog.String("entry", s.active.Name),
			slog.String("error", err.Error()),
		)
		s.finish(launch.ExitStatus{Unknown: true})
	case !exited:
		return
	default:
		s.finish(status)
	}
}

// reapStrays collects any abandoned child that has since exited.
func (s *Supervisor) reapStrays() {
	kept := s.strays[:0]

	for _, p := range s.strays {
		exited, _, err := p.TryWait()
		if err == nil && !exited {
			kept = append(kept, p)
			continue
		}

		s.logger.Debug("reaped abandoned child", slog.Int("pid", p.Pid()))
	}

	s.strays = kept
}

// escalateIfDue sends SIGKILL once the grace period has passed. It reports
// whether the run was finished because the kill itself failed.
func (s *Supervisor) escalateIfDue(now time.Time) bool {
	if s.state != launch.StateTerminating || s.escalated || now.Before(s.killDeadline) {
		return false
	}

	s.escalated = true
	s.logger.Warn("child ignored SIGTERM; sending SIGKILL",
		slog.String("entry", s.active.Name),
		slog.Int("pid", s.proc.Pid()),
	)

	if err := s.proc.Signal(syscall.SIGKILL); err != nil {
		s.logger.Error("forceful termination failed",
			slog.String("entry", s.active.Name),
			slog.String("error", err.Error()),
		)

		if exited, status, werr := s.proc.TryWait(); werr == nil && exited {
			s.finish(status)
			return true
		}

		// Keep the pid so a later exit is still reaped.
		s.strays = append(s.strays, s.proc)
		s.finish(launch.ExitStatus{Unknown: true})

		return true
	}

	// Reap on the next tick even if the SIGCHLD is lost.
	s.lastWait = time.Time{}

	return false
}

// TerminateActive asks the running child to exit and schedules SIGKILL
// after grace (the configured grace period when grace <= 0). Reaping still
// happens through Poll.
func (s *Supervisor) TerminateActive(grace time.Duration) error {
	if s.state != launch.StateRunning || s.proc == nil {
		return ErrNoChild
	}

	if !s.active.Killable {
		s.logger.Debug("terminate ignored: entry not killable", slog.String("entry", s.active.Name))
		return ErrNotKillable
	}

	if grace <= 0 {
		grace = s.grace
	}

	s.logger.Info("terminating entry",
		slog.String("entry", s.active.Name),
		slog.Int("pid", s.proc.Pid()),
		slog.Duration("grace", grace),
	)

	if err := s.proc.Signal(syscall.SIGTERM); err != nil {
		s.logger.Warn("graceful termination failed", slog.String("error", err.Error()))
	}

	s.killRequested = true
	s.escalated = false
	s.killDeadline = s.now().Add(grace)
	s.transition(launch.StateTerminating)

	return nil
}

// finish runs the REAPING and RESUMING edges and returns to idle.
func (s *Supervisor) finish(status launch.ExitStatus) {
	s.transition(launch.StateReaping)

	if err := s.proc.Release(); err != nil {
		s.logger.Debug("release child handle", slog.String("error", err.Error()))
	}

	s.proc = nil

	s.transition(launch.StateResuming)

	now := s.now()
	res := &launch.Result{
		Entry:    s.active,
		Index:    s.activeIndex,
		Status:   status,
		Killed:   s.killRequested,
		Duration: now.Sub(s.startedAt),
	}

	if s.sink != nil {
		out, truncated, err := drainCapture(s.sink, s.captureLimit)
		if err != nil {
			s.logger.Warn("captured output unavailable", slog.String("error", err.Error()))
		}

		res.Output = out
		res.Truncated = truncated
		res.Captured = true
		s.sink = nil
	}

	s.logger.Info("entry finished",
		slog.String("entry", s.active.Name),
		slog.String("status", status.String()),
		slog.Bool("killed", s.killRequested),
		slog.Duration("duration", res.Duration),
	)

	s.surface.Restore()
	s.input.ReacquireDevices(true)
	s.input.ArmDebounce(now)

	if s.span != nil {
		s.span.SetAttributes(observability.ExitAttributes(status.Code, status.Signaled, s.killRequested, res.Duration)...)
		s.span.End()
		s.span = nil
	}

	s.active = launch.Entry{}
	s.activeIndex = -1
	s.killRequested = false
	s.escalated = false
	s.transition(launch.StateIdle)

	s.notify(res)
}

func (s *Supervisor) notify(res *launch.Result) {
	if s.notifier != nil {
		s.notifier.ActivationResult(res)
	}
}
