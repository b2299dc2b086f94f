package entity

import "time"

const (
	HandoffStatusRequested    = "handoff_requested"
	HandoffStatusAcknowledged = "handoff_acknowledged"
)

// Exchange is one user/bot pair from the conversation history.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

type Handoff struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Channel     string     `json:"channel"`
	Status      string     `json:"status"`
	LastIntent  string     `json:"last_intent"`
	RequestedAt time.Time  `json:"requested_at"`
	History     []Exchange `json:"conversation_history"`
}
