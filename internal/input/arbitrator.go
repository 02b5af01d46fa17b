package input

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kioskware/gridlaunch/internal/device"
	"github.com/kioskware/gridlaunch/internal/grid"
	"github.com/kioskware/gridlaunch/internal/launch"
)

// DefaultDebounce is how long pointer input is ignored after a resume.
const DefaultDebounce = 600 * time.Millisecond

// Supervisor is the part of the process supervisor the arbitrator drives.
type Supervisor interface {
	State() launch.State
	Active() (entry launch.Entry, index int, ok bool)
	Launch(ctx context.Context, index int) error
	TerminateActive(grace time.Duration) error
}

// View is the UI collaborator.
type View interface {
	// HitTest resolves a pointer position to an entry index.
	HitTest(x, y int) (index int, ok bool)
	SelectionChanged(index int)
	OverlayVisible() bool
	DismissOverlay()
}

// Handle is an open input device.
type Handle interface {
	Info() device.Info
	Close() error
}

// Backend opens input devices.
type Backend interface {
	Probe(path string) (device.Info, error)
	Open(info device.Info, exclusive bool) (Handle, error)
}

// Options configures an Arbitrator.
type Options struct {
	Cursor     *grid.Cursor
	Supervisor Supervisor
	View       View
	Backend    Backend
	Logger     *slog.Logger
	// Roles lists the device roles the arbitrator acquires.
	Roles     []launch.DeviceRole
	Exclusive bool
	Debounce  time.Duration
	// Grace is passed to TerminateActive.
	Grace time.Duration
	Now   func() time.Time
}

// Arbitrator routes input to the grid, the supervisor and the UI. It is
// not safe for concurrent use; the main loop owns it.
type Arbitrator struct {
	cursor    *grid.Cursor
	sup       Supervisor
	view      View
	backend   Backend
	logger    *slog.Logger
	roles     map[launch.DeviceRole]bool
	exclusive bool
	debounce  time.Duration
	grace     time.Duration
	now       func() time.Time

	debounceStart time.Time
	armed         bool

	held map[launch.DeviceRole]Handle
	// known remembers the device per role across release/reacquire.
	known map[launch.DeviceRole]device.Info
}

// New returns an arbitrator with no devices held.
func New(opts *Options) *Arbitrator {
	a := &Arbitrator{
		cursor:    opts.Cursor,
		sup:       opts.Supervisor,
		view:      opts.View,
		backend:   opts.Backend,
		logger:    opts.Logger,
		roles:     make(map[launch.DeviceRole]bool, len(opts.Roles)),
		exclusive: opts.Exclusive,
		debounce:  opts.Debounce,
		grace:     opts.Grace,
		now:       opts.Now,
		held:      make(map[launch.DeviceRole]Handle),
		known:     make(map[launch.DeviceRole]device.Info),
	}

	for _, r := range opts.Roles {
		a.roles[r] = true
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	if a.debounce <= 0 {
		a.debounce = DefaultDebounce
	}

	if a.now == nil {
		a.now = time.Now
	}

	return a
}

// SetSupervisor connects the supervisor after construction; the supervisor
// itself needs the arbitrator as its input hooks.
func (a *Arbitrator) SetSupervisor(sup Supervisor) {
	a.sup = sup
}

// SetView connects the UI.
func (a *Arbitrator) SetView(v View) {
	a.view = v
}

// Selection returns the current grid index.
func (a *Arbitrator) Selection() int {
	return a.cursor.Index()
}

// ArmDebounce starts the pointer suppression window.
func (a *Arbitrator) ArmDebounce(now time.Time) {
	a.debounceStart = now
	a.armed = true
}

// Debouncing reports whether pointer input at t is suppressed.
func (a *Arbitrator) Debouncing(t time.Time) bool {
	return a.armed && t.Sub(a.debounceStart) < a.debounce
}

// HandleInput applies one event.
func (a *Arbitrator) HandleInput(ctx context.Context, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = a.now()
	}

	if ev.Source != "" && !a.fromHeld(ev) {
		return
	}

	state := a.sup.State()

	if state != launch.StateIdle {
		if state == launch.StateRunning && ev.Kind == KindButton {
			a.killRequest(ev)
		}

		return
	}

	switch ev.Kind {
	case KindPointer:
		a.pointer(ctx, ev)
	case KindButton:
		a.button(ctx, ev)
	}
}

func (a *Arbitrator) fromHeld(ev Event) bool {
	h, ok := a.held[ev.Role]

	return ok && h.Info().Path == ev.Source
}

func (a *Arbitrator) pointer(ctx context.Context, ev Event) {
	if a.Debouncing(ev.Time) {
		a.logger.Debug("pointer input suppressed after resume",
			slog.Int("x", ev.X),
			slog.Int("y", ev.Y),
		)

		return
	}

	if a.view != nil && a.view.OverlayVisible() {
		a.view.DismissOverlay()
		return
	}

	if a.view == nil {
		return
	}

	index, ok := a.view.HitTest(ev.X, ev.Y)
	if !ok {
		return
	}

	a.selectIndex(index)
	a.activate(ctx)
}

func (a *Arbitrator) button(ctx context.Context, ev Event) {
	overlay := a.view != nil && a.view.OverlayVisible()

	if dRow, dCol, ok := direction(ev.Symbol); ok {
		if overlay {
			return
		}

		if a.cursor.Move(dRow, dCol) && a.view != nil {
			a.view.SelectionChanged(a.cursor.Index())
		}

		return
	}

	if !confirm(ev.Symbol) {
		return
	}

	if overlay {
		a.view.DismissOverlay()
		return
	}

	a.activate(ctx)
}

func (a *Arbitrator) selectIndex(index int) {
	if index == a.cursor.Index() {
		return
	}

	if a.cursor.Set(index) && a.view != nil {
		a.view.SelectionChanged(index)
	}
}

func (a *Arbitrator) activate(ctx context.Context) {
	if a.cursor.Count() == 0 {
		return
	}

	// Failures are reported to the UI through the supervisor's notifier.
	_ = a.sup.Launch(ctx, a.cursor.Index())
}

// killRequest honors a trigger press only for a running killable entry whose
// configured trigger matches.
func (a *Arbitrator) killRequest(ev Event) {
	entry, _, ok := a.sup.Active()
	if !ok || !entry.Killable || !matchesTrigger(entry.KillTrigger, ev) {
		return
	}

	a.logger.Info("kill trigger pressed",
		slog.String("entry", entry.Name),
		slog.String("trigger", entry.KillTrigger.String()),
	)

	if err := a.sup.TerminateActive(a.grace); err != nil {
		a.logger.Debug("kill request rejected", slog.String("error", err.Error()))
	}
}

// DeviceAdded acquires a new device when no device of its role is held.
func (a *Arbitrator) DeviceAdded(path string) {
	info, err := a.backend.Probe(path)
	if err != nil {
		if !errors.Is(err, device.ErrUnsupported) {
			a.logger.Warn("cannot probe input device", slog.String("device", path), slog.String("error", err.Error()))
		}

		return
	}

	a.Acquire(info)
}

// Acquire opens info if its role is wanted and not already held.
func (a *Arbitrator) Acquire(info device.Info) bool {
	if !a.roles[info.Role] {
		return false
	}

	if _, busy := a.held[info.Role]; busy {
		a.logger.Debug("input device ignored: role already held",
			slog.String("device", info.Path),
			slog.String("role", info.Role.String()),
		)

		return false
	}

	idle := a.sup == nil || a.sup.State() == launch.StateIdle

	h, err := a.backend.Open(info, a.exclusive && idle)
	if err != nil {
		a.logger.Warn("cannot open input device", slog.String("device", info.Path), slog.String("error", err.Error()))
		return false
	}

	a.held[info.Role] = h
	a.known[info.Role] = info

	a.logger.Info("input device acquired",
		slog.String("device", info.Path),
		slog.String("name", info.Name),
		slog.String("role", info.Role.String()),
	)

	return true
}

// DeviceRemoved releases the held device at path, leaving its role empty
// until another device is added.
func (a *Arbitrator) DeviceRemoved(path string) {
	for role, h := range a.held {
		if h.Info().Path != path {
			continue
		}

		if err := h.Close(); err != nil {
			a.logger.Debug("close removed device", slog.String("error", err.Error()))
		}

		delete(a.held, role)
		delete(a.known, role)

		a.logger.Info("input device removed", slog.String("device", path), slog.String("role", role.String()))
	}

	for role, info := range a.known {
		if info.Path == path {
			delete(a.known, role)
		}
	}
}

// Held returns the device held for role.
func (a *Arbitrator) Held(role launch.DeviceRole) (device.Info, bool) {
	h, ok := a.held[role]
	if !ok {
		return device.Info{}, false
	}

	return h.Info(), true
}

// ReleaseDevices closes every held device. The devices are remembered so
// ReacquireDevices can reopen them.
func (a *Arbitrator) ReleaseDevices() {
	for role, h := range a.held {
		if err := h.Close(); err != nil {
			a.logger.Debug("release input device", slog.String("device", h.Info().Path), slog.String("error", err.Error()))
		}

		delete(a.held, role)
	}
}

// ReacquireDevices reopens every remembered device with a fresh handle.
// Devices are only grabbed when exclusive is set and grabbing is enabled.
func (a *Arbitrator) ReacquireDevices(exclusive bool) {
	for role, h := range a.held {
		_ = h.Close()

		delete(a.held, role)
	}

	for role, info := range a.known {
		h, err := a.backend.Open(info, exclusive && a.exclusive)
		if err != nil {
			a.logger.Warn("cannot reopen input device",
				slog.String("device", info.Path),
				slog.String("error", err.Error()),
			)
			delete(a.known, role)

			continue
		}

		a.held[role] = h
	}
}

// Close releases all devices and forgets them.
func (a *Arbitrator) Close() {
	a.ReleaseDevices()
	clear(a.known)
}
