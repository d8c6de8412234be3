package eventbus

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-referral/internal/database"
	"go-referral/internal/referral/domain/event"

	"github.com/ThreeDotsLabs/watermill/message"
)

// OutboxPublisher writes events to the outbox table inside the caller's transaction.
type OutboxPublisher struct {
	db *database.DB
}

func NewOutboxPublisher(db *database.DB) *OutboxPublisher {
	return &OutboxPublisher{db: db}
}

// PublishInTx stores events in the outbox table using the provided transaction.
func (p *OutboxPublisher) PublishInTx(ctx context.Context, tx *sql.Tx, events []event.Event) error {
	for _, e := range events {
		msg, err := EventToMessage(e)
		if err != nil {
			return err
		}

		if err := p.storeMessage(ctx, tx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *OutboxPublisher) storeMessage(ctx context.Context, tx *sql.Tx, msg *message.Message) error {
	metadata, err := json.Marshal(map[string]string(msg.Metadata))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		p.db.Rebind("INSERT INTO outbox_messages (uuid, payload, metadata, created_at) VALUES (?, ?, ?, ?)"),
		msg.UUID, []byte(msg.Payload), string(metadata), time.Now().UnixMilli(),
	)
	return err
}
