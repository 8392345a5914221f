package cli

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"keypulse/internal/engine"
)

// logReporter renders engine events through zerolog. Per-keystroke events
// log at debug level unless verbose mode promotes them.
type logReporter struct {
	verbose bool
}

func newLogReporter(verbose bool) *logReporter {
	return &logReporter{verbose: verbose}
}

func (r *logReporter) Report(ev engine.Event) {
	switch ev.Type {
	case engine.EventStarted:
		log.Info().Str("process", ev.Process).Msg("looking for target process")
	case engine.EventRetrying:
		log.Info().Str("process", ev.Process).Int("attempt", ev.Attempt).Msg("target not found yet, retrying")
	case engine.EventAcquired:
		log.Info().Str("process", ev.Process).Uint32("pid", ev.PID).Msg("target window acquired")
	case engine.EventSent:
		r.keystroke(ev).Msg("key sent")
	case engine.EventSendFailed:
		log.Warn().Str("key", ev.Key).Str("error", ev.Error).Msg("key injection failed")
	case engine.EventPassDone:
		r.keystroke(ev).Int("pass", ev.Pass).Msg("sequence pass complete")
	case engine.EventPaused:
		log.Info().Msg("paused")
	case engine.EventResumed:
		log.Info().Msg("resumed")
	case engine.EventProcessExited:
		log.Info().Str("process", ev.Process).Msg("target process exited")
	case engine.EventCompleted:
		log.Info().Int("passes", ev.Pass).Msg("run complete")
	case engine.EventCancelled:
		log.Info().Msg("cancelled")
	}
}

func (r *logReporter) keystroke(ev engine.Event) *zerolog.Event {
	e := log.Debug()
	if r.verbose {
		e = log.Info()
	}
	if ev.Key != "" {
		e = e.Str("key", ev.Key)
	}
	if ev.Steps > 0 {
		e = e.Int("step", ev.Step).Int("of", ev.Steps)
	}
	if ev.Timer > 0 {
		e = e.Int("timer", ev.Timer)
	}
	return e
}
