package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-referral/internal/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-co-op/gocron/v2"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultBatchSize    = 100
)

// busPublisher is the side of EventBus the forwarder needs.
type busPublisher interface {
	Publish(ctx context.Context, msgs ...*message.Message) error
}

type outboxRow struct {
	id       int64
	uuid     string
	payload  []byte
	metadata map[string]string
}

// Forwarder drains the outbox table onto the event bus on a fixed schedule.
type Forwarder struct {
	db           *database.DB
	bus          busPublisher
	pollInterval time.Duration
	batchSize    int
	logger       watermill.LoggerAdapter

	scheduler gocron.Scheduler
}

// NewForwarder creates a new outbox forwarder. Zero values fall back to defaults.
func NewForwarder(
	db *database.DB,
	bus busPublisher,
	logger watermill.LoggerAdapter,
	pollInterval time.Duration,
	batchSize int,
) *Forwarder {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Forwarder{
		db:           db,
		bus:          bus,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start schedules the polling job. A run that overlaps the previous one is skipped.
func (f *Forwarder) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create outbox scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(f.pollInterval),
		gocron.NewTask(f.forwardBatch, ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule outbox job: %w", err)
	}

	f.scheduler = scheduler
	scheduler.Start()
	f.logger.Info("outbox forwarder started", watermill.LogFields{"interval": f.pollInterval.String()})
	return nil
}

// Stop waits for a running batch to finish and stops the schedule.
func (f *Forwarder) Stop() error {
	if f.scheduler == nil {
		return nil
	}
	err := f.scheduler.Shutdown()
	f.scheduler = nil
	f.logger.Info("outbox forwarder stopped", nil)
	return err
}

func (f *Forwarder) forwardBatch(ctx context.Context) {
	if _, err := f.ForwardBatch(ctx); err != nil {
		f.logger.Error("failed to forward outbox batch", err, nil)
	}
}

// ForwardBatch publishes up to batchSize outbox rows in insertion order and
// deletes each one after it is published. It returns how many were forwarded.
func (f *Forwarder) ForwardBatch(ctx context.Context) (int, error) {
	rows, err := f.loadBatch(ctx)
	if err != nil {
		return 0, err
	}

	forwarded := 0
	for _, om := range rows {
		if err := f.forwardMessage(ctx, om); err != nil {
			f.logger.Error("failed to forward message", err, watermill.LogFields{
				"uuid": om.uuid,
			})
			continue
		}

		if _, err := f.db.ExecContext(ctx, f.db.Rebind("DELETE FROM outbox_messages WHERE id = ?"), om.id); err != nil {
			f.logger.Error("failed to delete outbox message", err, watermill.LogFields{
				"uuid": om.uuid,
			})
			continue
		}
		forwarded++
	}

	return forwarded, nil
}

func (f *Forwarder) loadBatch(ctx context.Context) ([]outboxRow, error) {
	rows, err := f.db.QueryContext(ctx,
		f.db.Rebind("SELECT id, uuid, payload, metadata FROM outbox_messages ORDER BY id ASC LIMIT ?"),
		f.batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox messages: %w", err)
	}
	defer rows.Close()

	var batch []outboxRow
	for rows.Next() {
		var (
			om       outboxRow
			metadata string
		)
		if err := rows.Scan(&om.id, &om.uuid, &om.payload, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &om.metadata); err != nil {
			f.logger.Error("invalid outbox metadata", err, watermill.LogFields{"uuid": om.uuid})
		}
		batch = append(batch, om)
	}
	return batch, rows.Err()
}

func (f *Forwarder) forwardMessage(ctx context.Context, om outboxRow) error {
	msg := message.NewMessage(om.uuid, om.payload)
	for k, v := range om.metadata {
		msg.Metadata.Set(k, v)
	}

	if err := f.bus.Publish(ctx, msg); err != nil {
		return err
	}

	f.logger.Debug("forwarded message", watermill.LogFields{
		"uuid":       om.uuid,
		"event_name": om.metadata["event_name"],
	})

	return nil
}
