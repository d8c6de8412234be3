package usecase

import (
	"context"

	"go-referral/internal/infra/eventbus"
	"go-referral/internal/referral/domain/event"

	"go.uber.org/zap"
)

var _ eventbus.EventHandler = (*LoggingEventHandler)(nil)

// LoggingEventHandler writes one structured log line per referral event.
type LoggingEventHandler struct {
	logger    *zap.Logger
	eventName string
}

func NewLoggingEventHandler(logger *zap.Logger, eventName string) *LoggingEventHandler {
	return &LoggingEventHandler{
		logger:    logger.Named("events"),
		eventName: eventName,
	}
}

func (h *LoggingEventHandler) HandlerName() string {
	return "logging_handler_" + h.eventName
}

func (h *LoggingEventHandler) EventName() string {
	return h.eventName
}

func (h *LoggingEventHandler) Handle(ctx context.Context, envelope *eventbus.EventEnvelope) error {
	fields := []zap.Field{
		zap.String("event_id", envelope.EventID),
		zap.String("code", envelope.AggregateID),
	}

	switch envelope.EventName {
	case event.CodeIssuedName:
		var evt event.CodeIssued
		if err := envelope.Decode(&evt); err != nil {
			return err
		}
		h.logger.Info("referral code issued", append(fields,
			zap.String("account_kind", evt.AccountKind),
			zap.String("account_id", evt.AccountID),
		)...)
	case event.ReferralClickedName:
		var evt event.ReferralClicked
		if err := envelope.Decode(&evt); err != nil {
			return err
		}
		h.logger.Info("referral clicked", append(fields,
			zap.Int64("ledger_id", evt.LedgerID),
			zap.String("referrer_kind", evt.ReferrerKind),
			zap.String("referrer_id", evt.ReferrerID),
		)...)
	case event.ReferralConvertedName:
		var evt event.ReferralConverted
		if err := envelope.Decode(&evt); err != nil {
			return err
		}
		h.logger.Info("referral converted", append(fields,
			zap.Int64("ledger_id", evt.LedgerID),
			zap.String("referrer_id", evt.ReferrerID),
			zap.Bool("upgraded", evt.Upgraded),
			zap.Duration("click_to_convert", evt.ClickToConvert),
		)...)
	default:
		h.logger.Info("referral event", append(fields, zap.String("event_name", envelope.EventName))...)
	}
	return nil
}

// RegisterEventHandlers subscribes the logging handler to every referral event.
func RegisterEventHandlers(router *eventbus.Router, logger *zap.Logger) {
	for _, name := range []string{
		event.CodeIssuedName,
		event.ReferralClickedName,
		event.ReferralConvertedName,
	} {
		router.AddHandler(NewLoggingEventHandler(logger, name))
	}
}
