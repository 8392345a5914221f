package engine

import (
	"sync"
	"sync/atomic"
)

// Control carries the run-wide cancellation and pause flags. Cancel is
// one-way: once set it is never cleared, and Done unblocks every cancelable
// wait. Pause may toggle freely.
type Control struct {
	cancelled atomic.Bool
	paused    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	onPause   func(paused bool)
}

// NewControl returns a Control in the running, unpaused state.
func NewControl() *Control {
	return &Control{done: make(chan struct{})}
}

// Cancel requests shutdown. Safe to call more than once and from any
// goroutine.
func (c *Control) Cancel() {
	c.cancelled.Store(true)
	c.closeOnce.Do(func() { close(c.done) })
}

// Cancelled reports whether Cancel has been called.
func (c *Control) Cancelled() bool {
	return c.cancelled.Load()
}

// Done returns a channel closed on Cancel.
func (c *Control) Done() <-chan struct{} {
	return c.done
}

// SetPaused updates the pause flag. While paused no new keystrokes are
// emitted but timers keep elapsing.
func (c *Control) SetPaused(paused bool) {
	if c.paused.Swap(paused) != paused && c.onPause != nil {
		c.onPause(paused)
	}
}

// TogglePause flips the pause flag and returns the new state.
func (c *Control) TogglePause() bool {
	paused := !c.paused.Load()
	c.SetPaused(paused)
	return paused
}

// Paused reports whether the run is paused.
func (c *Control) Paused() bool {
	return c.paused.Load()
}

// OnPauseChange installs a callback invoked whenever the pause flag flips.
// Must be set before the engine starts.
func (c *Control) OnPauseChange(fn func(paused bool)) {
	c.onPause = fn
}
