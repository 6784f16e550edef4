package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a trip's chat log. Messages are append-only.
// TripID is a weak reference: messages outlive nothing and cascade nowhere.
type Message struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	SenderID    string    `json:"sender_id"` // member id or AssistantID
	SenderName  string    `json:"sender_name"`
	Content     string    `json:"content"`
	IsAIMention bool      `json:"is_ai_mention"`
	CreatedAt   time.Time `json:"created_at"`
}
