package engine

import "time"

// EventType identifies what an Event describes.
type EventType string

const (
	EventStarted       EventType = "started"
	EventRetrying      EventType = "retrying"
	EventAcquired      EventType = "acquired"
	EventSent          EventType = "sent"
	EventSendFailed    EventType = "send_failed"
	EventPassDone      EventType = "pass_done"
	EventPaused        EventType = "paused"
	EventResumed       EventType = "resumed"
	EventProcessExited EventType = "process_exited"
	EventCompleted     EventType = "completed"
	EventCancelled     EventType = "cancelled"
)

// Event is a single progress notification from the engine. Fields beyond
// Type and Time are populated only where they apply.
type Event struct {
	Type    EventType `json:"type"`
	Time    time.Time `json:"ts"`
	Process string    `json:"process,omitempty"`
	PID     uint32    `json:"pid,omitempty"`
	Key     string    `json:"key,omitempty"`
	Step    int       `json:"step,omitempty"`
	Steps   int       `json:"steps,omitempty"`
	Timer   int       `json:"timer,omitempty"`
	Pass    int       `json:"pass,omitempty"`
	Attempt int       `json:"attempt,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Reporter receives engine events. Implementations must be safe for
// concurrent use: independent-mode timers report from their own goroutines.
type Reporter interface {
	Report(ev Event)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Report(Event) {}
