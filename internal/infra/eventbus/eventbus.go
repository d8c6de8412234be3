package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"go-referral/internal/referral/domain/event"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ReferralEventsTopic carries every referral domain event.
const ReferralEventsTopic = "referral.events"

const busBuffer = 100

// EventBus is the in-process channel between the outbox forwarder and the
// event router. Everything on it travels on ReferralEventsTopic.
type EventBus struct {
	pubsub *gochannel.GoChannel
}

func NewEventBus(logger watermill.LoggerAdapter) *EventBus {
	return &EventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: busBuffer}, logger),
	}
}

// Publish puts prepared messages on the referral topic. Each message carries
// ctx so handlers see the publisher's deadline and values.
func (b *EventBus) Publish(ctx context.Context, msgs ...*message.Message) error {
	for _, msg := range msgs {
		msg.SetContext(ctx)
	}
	return b.pubsub.Publish(ReferralEventsTopic, msgs...)
}

func (b *EventBus) Subscriber() message.Subscriber {
	return b.pubsub
}

func (b *EventBus) Close() error {
	return b.pubsub.Close()
}

// EventEnvelope is the JSON body of every message on the bus.
type EventEnvelope struct {
	EventID     string          `json:"event_id"`
	EventName   string          `json:"event_name"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Decode unmarshals the envelope payload into v.
func (e *EventEnvelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// EventToMessage wraps a domain event in an envelope. The message UUID is
// the event id, and event_name and aggregate_id are copied to metadata for
// routing.
func EventToMessage(e event.Event) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(EventEnvelope{
		EventID:     e.EventID(),
		EventName:   e.EventName(),
		AggregateID: e.AggregateID(),
		OccurredAt:  e.OccurredAt(),
		Payload:     payload,
	})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(e.EventID(), data)
	msg.Metadata.Set("event_name", e.EventName())
	msg.Metadata.Set("aggregate_id", e.AggregateID())
	return msg, nil
}

func MessageToEnvelope(msg *message.Message) (*EventEnvelope, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}
