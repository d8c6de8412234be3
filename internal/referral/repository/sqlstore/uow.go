package sqlstore

import (
	"context"

	"go-referral/internal/database"
	"go-referral/internal/infra/eventbus"
	"go-referral/internal/referral/domain/event"
	"go-referral/internal/referral/usecase"

	"go.uber.org/zap"
)

var _ usecase.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs ledger writes and their outbox rows in one transaction.
type UnitOfWork struct {
	db     *database.DB
	outbox *eventbus.OutboxPublisher
	logger *zap.Logger
}

func NewUnitOfWork(db *database.DB, outbox *eventbus.OutboxPublisher, logger *zap.Logger) usecase.UnitOfWork {
	return &UnitOfWork{
		db:     db,
		outbox: outbox,
		logger: logger,
	}
}

// Do executes fn within a transaction. Repositories called with the context
// passed to fn join that transaction.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) ([]event.Event, error)) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}

	txCtx := database.WithTx(ctx, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	events, err := fn(txCtx)
	if err != nil {
		u.rollback(tx)
		return err
	}

	if len(events) > 0 {
		if err := u.outbox.PublishInTx(txCtx, tx, events); err != nil {
			u.rollback(tx)
			return storeErr("store outbox events", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

func (u *UnitOfWork) rollback(tx interface{ Rollback() error }) {
	if err := tx.Rollback(); err != nil {
		u.logger.Error("rollback failed", zap.Error(err))
	}
}
