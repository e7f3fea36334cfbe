package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/nobel/internal/model"
)

// Event topic constants
const (
	TopicPrizeCreated = "prizes.prize.created"
	TopicPrizeUpdated = "prizes.prize.updated"
	TopicPrizeDeleted = "prizes.prize.deleted"

	// TopicAll matches every prize topic (NATS wildcard).
	TopicAll = "prizes.>"
)

// Event types

type PrizeCreated struct {
	Prize *model.Prize `json:"prize"`
	Actor string       `json:"actor,omitempty"`
}

// PrizeUpdated carries the prize after the update. Year and Category name
// the prize as it was addressed, which differs from Prize when renamed.
type PrizeUpdated struct {
	Year     string         `json:"year"`
	Category string         `json:"category"`
	Prize    *model.Prize   `json:"prize"`
	Changes  map[string]any `json:"changes"` // field name -> new value
	Actor    string         `json:"actor,omitempty"`
}

type PrizeDeleted struct {
	Year     string `json:"year"`
	Category string `json:"category"`
	Removed  int    `json:"removed"`
	Actor    string `json:"actor,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Describe renders a one-line summary of a raw event payload for topic.
func Describe(topic string, data []byte) (string, error) {
	switch topic {
	case TopicPrizeCreated:
		var e PrizeCreated
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decoding %s: %w", topic, err)
		}
		if e.Prize == nil {
			return "", fmt.Errorf("decoding %s: missing prize", topic)
		}
		return fmt.Sprintf("created %s %s (%d laureates) by %s",
			e.Prize.Year, e.Prize.Category, len(e.Prize.Laureates), actorOrUnknown(e.Actor)), nil
	case TopicPrizeUpdated:
		var e PrizeUpdated
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decoding %s: %w", topic, err)
		}
		return fmt.Sprintf("updated %s %s (%d fields) by %s",
			e.Year, e.Category, len(e.Changes), actorOrUnknown(e.Actor)), nil
	case TopicPrizeDeleted:
		var e PrizeDeleted
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decoding %s: %w", topic, err)
		}
		return fmt.Sprintf("deleted %s %s by %s", e.Year, e.Category, actorOrUnknown(e.Actor)), nil
	default:
		return "", fmt.Errorf("unknown topic %q", topic)
	}
}

func actorOrUnknown(actor string) string {
	if actor == "" {
		return "unknown"
	}
	return actor
}
