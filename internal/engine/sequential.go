package engine

import (
	"fmt"

	"keypulse/internal/input"
)

// runSequential walks the key sequence in order, sleeping each step's
// interval after sending it. The loop exits when the target process dies,
// the configured pass count is reached, the sequence completes without
// looping, the failure budget is exhausted, or the run is cancelled.
func (e *Engine) runSequential(win input.Window) error {
	watcher := e.newWatcher()
	steps := e.cfg.KeySequence

	step := 0
	passes := 0
	failures := 0
	for !e.ctl.Cancelled() {
		if !watcher.IsAlive(e.cfg.ProcessName) {
			e.report(Event{Type: EventProcessExited, Process: e.cfg.ProcessName})
			return nil
		}
		if e.cfg.RepeatCount > 0 && passes >= e.cfg.RepeatCount {
			e.report(Event{Type: EventCompleted, Pass: passes})
			return nil
		}
		if e.ctl.Paused() {
			e.sleep(e.pausePoll)
			continue
		}

		s := steps[step]
		if err := e.backend.SendKey(win, s.Key); err != nil {
			failures++
			e.report(Event{Type: EventSendFailed, Key: s.Key, Step: step + 1, Steps: len(steps), Error: err.Error()})
			if failures >= failureBudget {
				return fmt.Errorf("%w: key %q", ErrTooManyFailures, s.Key)
			}
		} else {
			failures = 0
			e.report(Event{Type: EventSent, Key: s.Key, Step: step + 1, Steps: len(steps)})
		}

		if !e.sleep(s.IntervalAfter.Std()) {
			break
		}

		step++
		if step == len(steps) {
			step = 0
			passes++
			e.report(Event{Type: EventPassDone, Pass: passes})
			if !e.cfg.LoopSequence {
				e.report(Event{Type: EventCompleted, Pass: passes})
				return nil
			}
		}
	}
	e.report(Event{Type: EventCancelled})
	return nil
}
