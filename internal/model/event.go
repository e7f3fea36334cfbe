package model

import (
	"encoding/json"
	"time"
)

// Event is a journaled mutation, mirroring what is published to NATS.
type Event struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Year      string          `json:"year"`
	Category  string          `json:"category"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
