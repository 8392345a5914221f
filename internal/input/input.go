// Package input synthesizes keyboard events and locates target windows. The
// concrete backend is per-OS; the engine is written against the Backend
// interface so a fake can drive tests.
package input

import (
	"errors"
	"time"

	"keypulse/internal/keymap"
)

var (
	// ErrInjectionFailed is returned when the OS accepts none of the
	// synthetic events of a send.
	ErrInjectionFailed = errors.New("key injection failed")

	// ErrWindowNotFound is returned when a window handle has gone stale.
	ErrWindowNotFound = errors.New("window not found")
)

// Focus and press pacing. The settle delay lets the foreground switch take
// effect before events are emitted; the press delay mimics physical typing
// so applications that sample input on a timer observe the press.
const (
	focusSettleDelay = 50 * time.Millisecond
	pressDelay       = 30 * time.Millisecond
)

// Window identifies a top-level window together with the process that owns
// it. The handle is only valid while that process is alive.
type Window struct {
	Handle uintptr
	PID    uint32
}

// Backend delivers keystrokes to a window. Implementations must be safe for
// concurrent SendKey calls; each call uses only stack-local buffers.
type Backend interface {
	// FindWindow returns the first visible, titled top-level window owned
	// by pid. Enumeration order is OS-defined.
	FindWindow(pid uint32) (Window, bool)

	// SendKey delivers one press-release of a key or combination to the
	// window as if typed.
	SendKey(win Window, key string) error
}

// keyEvent is one synthetic key transition.
type keyEvent struct {
	vk keymap.VK
	up bool
}

// pressPhases returns the down and up event batches for a combination:
// modifiers down in order, primary down, then primary up and modifiers up in
// reverse order. Each batch is emitted atomically.
func pressPhases(combo keymap.Combo) (downs, ups []keyEvent) {
	downs = make([]keyEvent, 0, len(combo.Modifiers)+1)
	for _, mod := range combo.Modifiers {
		downs = append(downs, keyEvent{vk: mod})
	}
	downs = append(downs, keyEvent{vk: combo.Primary})

	ups = make([]keyEvent, 0, len(combo.Modifiers)+1)
	ups = append(ups, keyEvent{vk: combo.Primary, up: true})
	for i := len(combo.Modifiers) - 1; i >= 0; i-- {
		ups = append(ups, keyEvent{vk: combo.Modifiers[i], up: true})
	}
	return downs, ups
}

// deliver emits the press batch, waits, then emits the release batch. A
// failed release is retried once so modifiers are not left logically held;
// the first error is returned either way.
func deliver(combo keymap.Combo, emitFn func([]keyEvent) error, wait func()) error {
	downs, ups := pressPhases(combo)
	if err := emitFn(downs); err != nil {
		return err
	}
	wait()
	if err := emitFn(ups); err != nil {
		emitFn(ups)
		return err
	}
	return nil
}
