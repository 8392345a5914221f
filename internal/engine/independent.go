package engine

import (
	"fmt"
	"sync"
	"time"

	"keypulse/internal/config"
	"keypulse/internal/input"
)

// runIndependent starts one goroutine per configured timer and waits for
// all of them. Each timer fires immediately, then on its own period. A
// timer whose failure budget runs out takes only itself down; the first
// such error is returned once every timer has exited.
func (e *Engine) runIndependent(win input.Window) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(e.cfg.IndependentKeys))

	for i, timer := range e.cfg.IndependentKeys {
		wg.Add(1)
		go func(idx int, timer config.Timer) {
			defer wg.Done()
			if err := e.runTimer(idx, timer, win); err != nil {
				errs <- err
			}
		}(i, timer)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}
	if e.ctl.Cancelled() {
		e.report(Event{Type: EventCancelled})
	}
	return nil
}

// runTimer drives a single independent key. time.Ticker coalesces missed
// ticks, so a key that falls behind fires once and resynchronizes instead
// of bursting.
func (e *Engine) runTimer(idx int, timer config.Timer, win input.Window) error {
	watcher := e.newWatcher()
	ticker := time.NewTicker(timer.Interval.Std())
	defer ticker.Stop()

	failures := 0
	for first := true; ; first = false {
		if !first {
			select {
			case <-ticker.C:
			case <-e.ctl.Done():
				return nil
			}
		}
		if e.ctl.Cancelled() {
			return nil
		}
		if !watcher.IsAlive(e.cfg.ProcessName) {
			e.report(Event{Type: EventProcessExited, Process: e.cfg.ProcessName, Timer: idx + 1})
			return nil
		}
		if e.ctl.Paused() {
			continue
		}

		if err := e.backend.SendKey(win, timer.Key); err != nil {
			failures++
			e.report(Event{Type: EventSendFailed, Key: timer.Key, Timer: idx + 1, Error: err.Error()})
			if failures >= failureBudget {
				return fmt.Errorf("%w: timer %d key %q", ErrTooManyFailures, idx+1, timer.Key)
			}
		} else {
			failures = 0
			e.report(Event{Type: EventSent, Key: timer.Key, Timer: idx + 1})
		}
	}
}
