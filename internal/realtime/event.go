package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAttemptGraded         EventType = "attempt.graded"
	EventRecommendationUpdated EventType = "recommendation.updated"
	EventProgressAcknowledged  EventType = "progress.acknowledged"
)

// Event is the envelope published for downstream consumers.
type Event struct {
	Type   EventType       `json:"type"`
	UserID uuid.UUID       `json:"userId"`
	At     time.Time       `json:"at"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes data into the envelope.
func NewEvent(typ EventType, userID uuid.UUID, at time.Time, data any) (Event, error) {
	ev := Event{Type: typ, UserID: userID, At: at.UTC()}
	if data == nil {
		return ev, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	ev.Data = raw
	return ev, nil
}
