// Package engine drives keystroke delivery against a target process. It
// acquires the target window with retries, then runs either the sequential
// loop or one goroutine per independent timer until the target exits, the
// run completes, or the user cancels.
package engine

import (
	"errors"
	"time"

	"keypulse/internal/config"
	"keypulse/internal/input"
)

var (
	// ErrProcessNotFound is returned when the target process cannot be
	// located within the configured retry budget.
	ErrProcessNotFound = errors.New("target process not found")

	// ErrTooManyFailures is returned when consecutive key injections fail
	// past the failure budget.
	ErrTooManyFailures = errors.New("too many consecutive injection failures")

	errCancelled = errors.New("cancelled")
)

const (
	failureBudget = 5
	retryDelay    = time.Second
	pausePoll     = 100 * time.Millisecond
)

// Watcher answers process queries. Implementations are not required to be
// safe for concurrent use; the engine creates one per consumer.
type Watcher interface {
	FindFirst(name string) (pid uint32, ok bool)
	IsAlive(name string) bool
}

// Engine executes a validated Config against an input backend.
type Engine struct {
	cfg        *config.Config
	backend    input.Backend
	newWatcher func() Watcher
	reporter   Reporter
	ctl        *Control

	// overridable in tests
	retryDelay time.Duration
	pausePoll  time.Duration
}

// New wires an Engine. newWatcher is called once per consumer that needs
// process queries, so independent timers never share a Watcher.
func New(cfg *config.Config, backend input.Backend, newWatcher func() Watcher, reporter Reporter, ctl *Control) *Engine {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Engine{
		cfg:        cfg,
		backend:    backend,
		newWatcher: newWatcher,
		reporter:   reporter,
		ctl:        ctl,
		retryDelay: retryDelay,
		pausePoll:  pausePoll,
	}
}

// Run acquires the target window and executes the configured mode. It
// returns nil on clean completion or cancellation, ErrProcessNotFound when
// acquisition exhausts its retries, and ErrTooManyFailures when injection
// keeps failing.
func (e *Engine) Run() error {
	e.report(Event{Type: EventStarted, Process: e.cfg.ProcessName})

	win, err := e.acquire()
	if err != nil {
		if errors.Is(err, errCancelled) {
			e.report(Event{Type: EventCancelled})
			return nil
		}
		return err
	}
	e.report(Event{Type: EventAcquired, Process: e.cfg.ProcessName, PID: win.PID})

	if e.cfg.Mode() == config.ModeIndependent {
		return e.runIndependent(win)
	}
	return e.runSequential(win)
}

// acquire polls for the target process and its first visible window,
// sleeping between attempts. The sleep is cancelable.
func (e *Engine) acquire() (input.Window, error) {
	watcher := e.newWatcher()
	for attempt := 1; attempt <= e.cfg.MaxRetries; attempt++ {
		if e.ctl.Cancelled() {
			return input.Window{}, errCancelled
		}
		if pid, ok := watcher.FindFirst(e.cfg.ProcessName); ok {
			if win, ok := e.backend.FindWindow(pid); ok {
				return win, nil
			}
		}
		if attempt < e.cfg.MaxRetries {
			e.report(Event{Type: EventRetrying, Process: e.cfg.ProcessName, Attempt: attempt})
			if !e.sleep(e.retryDelay) {
				return input.Window{}, errCancelled
			}
		}
	}
	return input.Window{}, ErrProcessNotFound
}

// sleep waits for d or cancellation, whichever comes first, and reports
// whether the full duration elapsed.
func (e *Engine) sleep(d time.Duration) bool {
	if d <= 0 {
		return !e.ctl.Cancelled()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-e.ctl.Done():
		return false
	}
}

func (e *Engine) report(ev Event) {
	ev.Time = time.Now()
	e.reporter.Report(ev)
}
