package entity

import "time"

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusConfirmed = "confirmed"
)

type Lead struct {
	SessionID       string                 `json:"session_id"`
	Name            string                 `json:"name"`
	PhoneNumber     string                 `json:"phone_number"`
	Email           string                 `json:"email"`
	ServiceInterest string                 `json:"service_interest"`
	BookingDate     string                 `json:"booking_date,omitempty"`
	BookingTime     string                 `json:"booking_time,omitempty"`
	Status          string                 `json:"status"`
	SourceChannel   string                 `json:"source_channel"`
	CreatedAt       time.Time              `json:"created_at"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}
