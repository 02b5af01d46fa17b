// Package sigchld turns SIGCHLD deliveries into a flag the main loop polls.
//
// The handler side does exactly one thing: an atomic store to the pending
// flag. All reaping and UI work happens when ordinary code later calls
// Consume.
package sigchld

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Bridge carries "something may have changed for our child" from signal
// delivery to the main loop.
type Bridge struct {
	pending atomic.Bool

	mu      sync.Mutex
	ch      chan os.Signal
	stopped chan struct{}
}

// New returns an unstarted bridge.
func New() *Bridge {
	return &Bridge{}
}

// Start subscribes to SIGCHLD. Calling Start twice is a no-op.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch != nil {
		return
	}

	b.ch = make(chan os.Signal, 1)
	b.stopped = make(chan struct{})
	signal.Notify(b.ch, syscall.SIGCHLD)

	go b.handle(b.ch, b.stopped)
}

// Stop unsubscribes and waits for the handler goroutine to exit.
func (b *Bridge) Stop() {
	b.mu.Lock()
	ch, stopped := b.ch, b.stopped
	b.ch, b.stopped = nil, nil
	b.mu.Unlock()

	if ch == nil {
		return
	}

	signal.Stop(ch)
	close(ch)
	<-stopped
}

func (b *Bridge) handle(ch <-chan os.Signal, stopped chan<- struct{}) {
	defer close(stopped)

	for range ch {
		b.Notify()
	}
}

// Notify is the handler body. It must stay a single atomic store.
func (b *Bridge) Notify() {
	b.pending.Store(true)
}

// Pending reports whether a notification is waiting, without clearing it.
func (b *Bridge) Pending() bool {
	return b.pending.Load()
}

// Consume clears the flag and reports whether it was set.
func (b *Bridge) Consume() bool {
	return b.pending.Swap(false)
}
