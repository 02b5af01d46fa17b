// Package visibility owns the launcher surface's shown/hidden transitions.
//
// Only the supervisor calls Hide and Restore. Both are idempotent so the
// supervisor's failure paths can restore unconditionally.
package visibility

import (
	"log/slog"
	"sync"
)

// Backend performs the windowing calls. For the terminal UI that is
// suspending and resuming the screen; other backends minimize, show, raise
// and re-apply full-screen mode.
type Backend interface {
	HideSurface() error
	RestoreSurface() error
}

// Coordinator tracks whether the launcher surface is hidden.
type Coordinator struct {
	mu       sync.Mutex
	backend  Backend
	logger   *slog.Logger
	hidden   bool
	hides    int
	restores int
}

// New returns a coordinator for a visible surface.
func New(backend Backend, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{backend: backend, logger: logger}
}

// Hide hides the launcher surface. A backend error is logged and the surface
// is still treated as hidden so that the matching Restore runs.
func (c *Coordinator) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hidden {
		return
	}

	c.hidden = true
	c.hides++

	if c.backend == nil {
		return
	}

	if err := c.backend.HideSurface(); err != nil {
		c.logger.Warn("hide launcher surface failed", slog.String("error", err.Error()))
	}
}

// Restore shows the launcher surface again.
func (c *Coordinator) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hidden {
		return
	}

	c.hidden = false
	c.restores++

	if c.backend == nil {
		return
	}

	if err := c.backend.RestoreSurface(); err != nil {
		c.logger.Error("restore launcher surface failed", slog.String("error", err.Error()))
	}
}

// Hidden reports whether the surface is hidden.
func (c *Coordinator) Hidden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hidden
}

// Counts returns how many hide and restore transitions took effect.
func (c *Coordinator) Counts() (hides, restores int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hides, c.restores
}
