package entity

import "time"

type CallLog struct {
	SessionID      string                 `json:"session_id"`
	Channel        string                 `json:"channel"`
	UserInput      string                 `json:"user_input"`
	DetectedIntent string                 `json:"detected_intent"`
	Confidence     float64                `json:"confidence"`
	BotResponse    string                 `json:"bot_response"`
	Language       string                 `json:"language"`
	Timestamp      time.Time              `json:"timestamp"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}
