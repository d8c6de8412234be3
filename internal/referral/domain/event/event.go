package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is the base interface for all referral domain events.
type Event interface {
	EventID() string
	EventName() string
	OccurredAt() time.Time
	// AggregateID is the referral code the event belongs to.
	AggregateID() string
}

// Base contains common fields for all events.
type Base struct {
	ID          string    `json:"event_id"`
	OccurredAtT time.Time `json:"occurred_at"`
	AggregateId string    `json:"aggregate_id"`
}

// NewBase creates a new base event keyed by a time-ordered UUID.
func NewBase(aggregateID string, occurredAt time.Time) Base {
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return Base{
		ID:          uuid.Must(uuid.NewV7()).String(),
		OccurredAtT: occurredAt.UTC(),
		AggregateId: aggregateID,
	}
}

func (e Base) EventID() string {
	return e.ID
}

func (e Base) OccurredAt() time.Time {
	return e.OccurredAtT
}

func (e Base) AggregateID() string {
	return e.AggregateId
}
