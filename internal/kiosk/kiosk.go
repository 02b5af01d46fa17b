// Package kiosk runs the launcher: one loop goroutine owns the screen, the
// supervisor and the input arbitrator, and everything else (terminal input,
// device readers, hot-plug, OS signals) feeds it through channels.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/oklog/run"
	"go.opentelemetry.io/otel/trace"

	"github.com/kioskware/gridlaunch/internal/device"
	"github.com/kioskware/gridlaunch/internal/grid"
	"github.com/kioskware/gridlaunch/internal/input"
	"github.com/kioskware/gridlaunch/internal/launch"
	"github.com/kioskware/gridlaunch/internal/observability"
	"github.com/kioskware/gridlaunch/internal/sigchld"
	"github.com/kioskware/gridlaunch/internal/supervisor"
	"github.com/kioskware/gridlaunch/internal/ui"
	"github.com/kioskware/gridlaunch/internal/visibility"
)

// DefaultPollInterval is the loop's idle wake-up cadence.
const DefaultPollInterval = 100 * time.Millisecond

var (
	// ErrNoEntries is returned when there is nothing to launch.
	ErrNoEntries = errors.New("no entries to launch")
	// ErrDisplay marks a terminal that could not be taken over.
	ErrDisplay = errors.New("display unavailable")
)

// Options configures the launcher.
type Options struct {
	Entries []launch.Entry
	Title   string
	Columns int

	Debounce          time.Duration
	PollInterval      time.Duration
	ReconcileInterval time.Duration
	GracePeriod       time.Duration
	CapturePath       string
	CaptureLimit      int
	ProcessGroup      bool

	DevicesDir string
	// Roles lists the evdev device roles to open. Empty disables devices.
	Roles     []launch.DeviceRole
	Exclusive bool

	Logger *slog.Logger
	Tracer trace.Tracer

	// Screen and Spawner replace the terminal and the OS in tests.
	Screen  tcell.Screen
	Spawner supervisor.Spawner
}

// Kiosk is a configured launcher.
type Kiosk struct {
	logger       *slog.Logger
	pollInterval time.Duration
	roles        []launch.DeviceRole

	screen  *ui.Screen
	sup     *supervisor.Supervisor
	arb     *input.Arbitrator
	bridge  *sigchld.Bridge
	devices *device.Manager
	// deviceEvents is devices.Events(); tests substitute their own.
	deviceEvents <-chan device.Event

	terminal   chan tcell.Event
	interrupts chan os.Signal
}

// New wires the launcher without touching the terminal.
func New(opts *Options) (*Kiosk, error) {
	if len(opts.Entries) == 0 {
		return nil, ErrNoEntries
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	uiOpts := &ui.Options{
		Title:   opts.Title,
		Columns: opts.Columns,
		Logger:  observability.Component(logger, "ui"),
	}

	var screen *ui.Screen

	if opts.Screen != nil {
		screen = ui.New(opts.Screen, opts.Entries, uiOpts)
	} else {
		var err error

		screen, err = ui.NewTerminal(opts.Entries, uiOpts)
		if err != nil {
			return nil, err
		}
	}

	spawner := opts.Spawner
	if spawner == nil {
		spawner = supervisor.NewOSSpawner()
	}

	k := &Kiosk{
		logger:       observability.Component(logger, "kiosk"),
		pollInterval: opts.PollInterval,
		roles:        opts.Roles,
		screen:       screen,
		bridge:       sigchld.New(),
		devices:      device.NewManager(opts.DevicesDir, observability.Component(logger, "device")),
		terminal:     make(chan tcell.Event, 16),
		interrupts:   make(chan os.Signal, 1),
	}

	k.deviceEvents = k.devices.Events()

	if k.pollInterval <= 0 {
		k.pollInterval = DefaultPollInterval
	}

	k.arb = input.New(&input.Options{
		Cursor:    grid.NewCursor(opts.Columns, len(opts.Entries)),
		View:      screen,
		Backend:   input.ManagerBackend(k.devices),
		Logger:    observability.Component(logger, "input"),
		Roles:     opts.Roles,
		Exclusive: opts.Exclusive,
		Debounce:  opts.Debounce,
		Grace:     opts.GracePeriod,
	})

	k.sup = supervisor.New(&supervisor.Options{
		Entries:           opts.Entries,
		Spawner:           spawner,
		Surface:           visibility.New(screen, observability.Component(logger, "visibility")),
		Input:             k.arb,
		Notifier:          screen,
		Flag:              k.bridge,
		Logger:            observability.Component(logger, "supervisor"),
		Tracer:            opts.Tracer,
		CapturePath:       opts.CapturePath,
		CaptureLimit:      opts.CaptureLimit,
		GracePeriod:       opts.GracePeriod,
		ReconcileInterval: opts.ReconcileInterval,
		ProcessGroup:      opts.ProcessGroup,
	})

	k.arb.SetSupervisor(k.sup)

	return k, nil
}

// State returns the supervisor state.
func (k *Kiosk) State() launch.State {
	return k.sup.State()
}

// Run takes over the terminal and serves until the user quits, ctx is
// cancelled or SIGTERM/SIGHUP arrives.
func (k *Kiosk) Run(ctx context.Context) error {
	if err := k.screen.Init(); err != nil {
		return fmt.Errorf("%w: %w", ErrDisplay, err)
	}
	defer k.screen.Fini()

	k.bridge.Start()
	defer k.bridge.Stop()

	// Ctrl+C reaches the launcher as SIGINT only while a child owns the
	// terminal, so the loop decides what it means.
	signal.Notify(k.interrupts, os.Interrupt)
	defer signal.Stop(k.interrupts)

	defer k.devices.Close()
	defer k.arb.Close()

	k.acquireDevices()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group
	{
		g.Add(func() error {
			return k.loop(ctx)
		}, func(error) {
			cancel()
		})
	}
	{
		g.Add(run.SignalHandler(ctx, syscall.SIGTERM, syscall.SIGHUP))
	}
	{
		quit := make(chan struct{})
		g.Add(func() error {
			k.pumpTerminal(quit)
			return nil
		}, func(error) {
			close(quit)
			k.screen.Wake()
		})
	}

	if len(k.roles) > 0 {
		watchCtx, stopWatch := context.WithCancel(ctx)
		g.Add(func() error {
			k.watchDevices(watchCtx)
			return nil
		}, func(error) {
			stopWatch()
		})
	}

	err := g.Run()

	if state := k.sup.State(); state.HasChild() {
		entry, _, _ := k.sup.Active()
		k.logger.Warn("launcher exiting with a child still running",
			slog.String("entry", entry.Name),
			slog.String("state", state.String()),
		)
	}

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		k.logger.Info("launcher stopped by signal", slog.String("signal", sigErr.Signal.String()))
		return nil
	}

	if err != nil {
		return fmt.Errorf("launcher loop: %w", err)
	}

	return nil
}

// loop is the single owner of launcher state. It sleeps until input, a
// poll tick or a pending escalation deadline.
func (k *Kiosk) loop(ctx context.Context) error {
	ticker := time.NewTicker(k.pollInterval)
	defer ticker.Stop()

	escalation := time.NewTimer(time.Hour)
	escalation.Stop()

	defer escalation.Stop()

	for {
		k.tick()
		k.screen.Expire()

		if deadline, ok := k.sup.NextDeadline(); ok {
			escalation.Reset(time.Until(deadline))
		} else {
			escalation.Stop()
		}

		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-k.terminal:
			if !ok {
				return nil
			}

			if quit := k.handleTerminal(ctx, ev); quit {
				k.logger.Info("launcher quit requested")
				return nil
			}
		case ev := <-k.deviceEvents:
			k.handleDevice(ctx, ev)
		case h := <-k.devices.Hotplug():
			if h.Removed {
				k.arb.DeviceRemoved(h.Path)
			} else {
				k.arb.DeviceAdded(h.Path)
			}
		case <-k.interrupts:
			if k.sup.State() != launch.StateIdle {
				k.logger.Debug("interrupt ignored while a child runs")
				continue
			}

			return nil
		case <-ticker.C:
		case <-escalation.C:
		}
	}
}

// tick polls the supervisor. When a run has just ended, device presses
// queued while the child owned the display are dropped so they do not land
// on the grid as fresh input.
func (k *Kiosk) tick() {
	busy := k.sup.State().HasChild()

	k.sup.Poll()

	if !busy || k.sup.State().HasChild() {
		return
	}

	if n := drain(k.deviceEvents); n > 0 {
		k.logger.Debug("dropped device input queued during the run", slog.Int("events", n))
	}
}

func drain[T any](ch <-chan T) int {
	n := 0

	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}

func (k *Kiosk) handleTerminal(ctx context.Context, ev tcell.Event) (quit bool) {
	in, action := k.screen.Interpret(ev)

	switch action {
	case ui.ActionQuit:
		return true
	case ui.ActionInput:
		k.arb.HandleInput(ctx, in)
	case ui.ActionNone:
	}

	return false
}

// handleDevice forwards a device press. Keyboard presses only matter while
// a child runs; otherwise the terminal already delivered them.
func (k *Kiosk) handleDevice(ctx context.Context, ev device.Event) {
	if ev.Role == launch.RoleKeyboard && !k.sup.State().HasChild() {
		return
	}

	k.arb.HandleInput(ctx, input.FromDevice(ev))
}

func (k *Kiosk) acquireDevices() {
	if len(k.roles) == 0 {
		return
	}

	infos, err := k.devices.Enumerate()
	if err != nil {
		k.logger.Warn("some input devices could not be probed", slog.String("error", err.Error()))
	}

	for _, info := range infos {
		k.arb.Acquire(info)
	}
}

// pumpTerminal forwards terminal events to the loop until quit is closed.
func (k *Kiosk) pumpTerminal(quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		default:
		}

		ev := k.screen.PollEvent()
		if ev == nil {
			return
		}

		if _, wake := ev.(*tcell.EventInterrupt); wake {
			continue
		}

		select {
		case k.terminal <- ev:
		case <-quit:
			return
		}
	}
}

// watchDevices runs the hot-plug watcher. A missing device directory only
// disables hot-plug.
func (k *Kiosk) watchDevices(ctx context.Context) {
	if err := k.devices.Watch(ctx); err != nil {
		k.logger.Warn("input hot-plug disabled", slog.String("error", err.Error()))
		<-ctx.Done()
	}
}
