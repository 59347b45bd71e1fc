package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick      Event = "tick"
	EventSubmitted Event = "submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// TickResponse carries the live session clock, pushed once per second.
type TickResponse struct {
	Event            Event   `json:"event"`
	IsExam           bool    `json:"is_exam"`
	IsSubmitted      bool    `json:"is_submitted"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// SubmittedResponse is the terminal event once the session is finalized,
// whether by the user or the expiry worker.
type SubmittedResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
