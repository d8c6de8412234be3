package eventbus

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// EventHandler consumes one event name from the referral topic.
type EventHandler interface {
	HandlerName() string
	EventName() string
	Handle(ctx context.Context, envelope *EventEnvelope) error
}

// Router fans referral events out to registered handlers.
type Router struct {
	router   *message.Router
	eventBus *EventBus
	logger   watermill.LoggerAdapter
}

// NewRouter creates a router that recovers handler panics and retries
// failed handlers a few times before dropping the message.
func NewRouter(eventBus *EventBus, logger watermill.LoggerAdapter) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 50 * time.Millisecond,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
	)

	return &Router{
		router:   router,
		eventBus: eventBus,
		logger:   logger,
	}, nil
}

// AddHandler registers an event handler.
func (r *Router) AddHandler(handler EventHandler) {
	r.router.AddNoPublisherHandler(
		handler.HandlerName(),
		ReferralEventsTopic,
		r.eventBus.Subscriber(),
		r.createHandlerFunc(handler),
	)
}

func (r *Router) createHandlerFunc(handler EventHandler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		if name := msg.Metadata.Get("event_name"); name != "" && name != handler.EventName() {
			return nil
		}

		envelope, err := MessageToEnvelope(msg)
		if err != nil {
			// Unparseable messages are acked; retrying cannot fix them.
			r.logger.Error("failed to parse message", err, watermill.LogFields{"uuid": msg.UUID})
			return nil
		}
		if envelope.EventName != handler.EventName() {
			return nil
		}

		if err := handler.Handle(msg.Context(), envelope); err != nil {
			r.logger.Error("failed to handle event", err, watermill.LogFields{
				"handler":    handler.HandlerName(),
				"event_name": envelope.EventName,
				"event_id":   envelope.EventID,
			})
			return err
		}

		return nil
	}
}

func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once the router has started all handlers.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

func (r *Router) Close() error {
	return r.router.Close()
}
