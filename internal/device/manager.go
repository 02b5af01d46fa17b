package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDir is where evdev nodes live.
const DefaultDir = "/dev/input"

// settleDelay gives udev time to set node permissions before a new device
// is reported.
const settleDelay = 250 * time.Millisecond

// Manager owns the event and hot-plug channels shared by every open device.
type Manager struct {
	dir     string
	logger  *slog.Logger
	events  chan Event
	hotplug chan Hotplug
	done    chan struct{}
	once    sync.Once
}

// NewManager returns a manager for the evdev directory dir.
func NewManager(dir string, logger *slog.Logger) *Manager {
	if dir == "" {
		dir = DefaultDir
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		dir:     dir,
		logger:  logger,
		events:  make(chan Event, 64),
		hotplug: make(chan Hotplug, 16),
		done:    make(chan struct{}),
	}
}

// Dir returns the watched directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Events delivers presses from every open device.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Hotplug delivers device additions and removals once Watch is running.
func (m *Manager) Hotplug() <-chan Hotplug {
	return m.hotplug
}

// Close stops every reader goroutine from delivering further events.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Manager) deliver(ev Event, closing <-chan struct{}) bool {
	select {
	case m.events <- ev:
		return true
	case <-closing:
		return false
	case <-m.done:
		return false
	}
}

// Watch reports event nodes created in or removed from the device
// directory until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create device watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.dir); err != nil {
		return fmt.Errorf("watch %s: %w", m.dir, err)
	}

	m.logger.Debug("watching input devices", slog.String("dir", m.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !IsEventNode(ev.Name) {
				continue
			}

			switch {
			case ev.Has(fsnotify.Create):
				m.reportLater(ctx, Hotplug{Path: ev.Name})
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				m.report(ctx, Hotplug{Path: ev.Name, Removed: true})
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			m.logger.Warn("device watcher error", slog.String("error", werr.Error()))
		}
	}
}

func (m *Manager) report(ctx context.Context, h Hotplug) {
	select {
	case m.hotplug <- h:
	case <-ctx.Done():
	case <-m.done:
	}
}

func (m *Manager) reportLater(ctx context.Context, h Hotplug) {
	time.AfterFunc(settleDelay, func() { m.report(ctx, h) })
}
