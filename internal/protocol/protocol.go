package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeStatus is sent by the server with a status snapshot, either on
	// request or after a state change
	TypeStatus MessageType = "status"

	// TypeEvent carries a single engine event as it happens
	TypeEvent MessageType = "event"

	// TypeStatusRequest is sent by a client to request a status snapshot
	TypeStatusRequest MessageType = "status_req"

	// TypePause is sent by a client to pause keystroke delivery
	TypePause MessageType = "pause"

	// TypeResume is sent by a client to resume keystroke delivery
	TypeResume MessageType = "resume"

	// TypePing can be used for application-level heartbeats if needed
	TypePing MessageType = "ping"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// StatusPayload is the payload for TypeStatus
type StatusPayload struct {
	Process  string `json:"process"`
	Mode     string `json:"mode"`
	Paused   bool   `json:"paused"`
	Running  bool   `json:"running"`
	KeysSent uint64 `json:"keys_sent"`
}

// EventPayload is the payload for TypeEvent
type EventPayload struct {
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Step    int    `json:"step,omitempty"`
	Steps   int    `json:"steps,omitempty"`
	Timer   int    `json:"timer,omitempty"`
	Pass    int    `json:"pass,omitempty"`
	Attempt int    `json:"attempt,omitempty"`
	Error   string `json:"error,omitempty"`
}
