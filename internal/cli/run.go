package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"keypulse/internal/api"
	"keypulse/internal/config"
	"keypulse/internal/engine"
	"keypulse/internal/input"
	"keypulse/internal/keymap"
	"keypulse/internal/osutils"
	"keypulse/internal/proc"
	"keypulse/internal/tray"
)

// runSession wires the engine to the OS backend and runs it to completion,
// optionally alongside the control API and the tray icon.
func runSession(cfg *config.Config, opts *options) error {
	log.Warn().Msg("keypulse injects keystrokes into another application; use only where you are permitted to")
	if !osutils.IsAdmin() {
		log.Warn().Msg("running without elevation; keystrokes to elevated windows will be rejected")
	}

	ctl := engine.NewControl()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Info().Msg("interrupt received, shutting down")
		ctl.Cancel()
	}()

	reporters := []engine.Reporter{newLogReporter(cfg.Verbose)}

	var srv *api.Server
	if opts.apiPort > 0 {
		srv = api.NewServer(cfg, ctl, opts.apiToken, log.Logger)
		reporters = append(reporters, srv)
		go func() {
			if err := srv.Start(opts.apiPort); err != nil {
				log.Warn().Err(err).Msg("continuing without the control API")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	var tr *tray.Tray
	if opts.tray {
		tr = tray.New(ctl, cfg.ProcessName, ctl.Cancel)
	}

	ctl.OnPauseChange(func(paused bool) {
		ev := engine.Event{Type: engine.EventResumed, Time: time.Now()}
		if paused {
			ev.Type = engine.EventPaused
		}
		for _, r := range reporters {
			r.Report(ev)
		}
		if tr != nil {
			tr.PauseChanged(paused)
		}
	})

	backend := input.NewSender(keymap.New())
	newWatcher := func() engine.Watcher { return proc.NewWatcher() }
	eng := engine.New(cfg, backend, newWatcher, multiReporter(reporters), ctl)

	if tr == nil {
		return eng.Run()
	}

	// systray wants the main goroutine, so the engine moves off it.
	errCh := make(chan error, 1)
	go func() {
		errCh <- eng.Run()
		tr.Stop()
	}()
	tr.Run()
	ctl.Cancel()
	return <-errCh
}

// multiReporter fans events out to every reporter in order.
type multiReporter []engine.Reporter

func (m multiReporter) Report(ev engine.Event) {
	for _, r := range m {
		r.Report(ev)
	}
}
