package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-referral/internal/database"
	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/usecase"
)

// CodeRegistry arbitrates the shared code namespace through the
// referral_codes table. Its two unique keys reject both a taken code and a
// second code for the same account.
type CodeRegistry struct {
	db *database.DB
}

var _ usecase.CodeRegistry = (*CodeRegistry)(nil)

func NewCodeRegistry(db *database.DB) usecase.CodeRegistry {
	return &CodeRegistry{db: db}
}

func (r *CodeRegistry) Claim(ctx context.Context, code string, owner domain.AccountRef, at time.Time) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		r.db.Rebind(`INSERT INTO referral_codes (code, account_kind, account_id, created_at)
			VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`),
		code, string(owner.Kind), owner.ID, at.UnixMilli(),
	)
	if err != nil {
		return false, storeErr("claim referral code", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("claim referral code", err)
	}
	return n == 1, nil
}

func (r *CodeRegistry) FindByAccount(ctx context.Context, owner domain.AccountRef) (string, error) {
	var code string
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Rebind("SELECT code FROM referral_codes WHERE account_kind = ? AND account_id = ?"),
		string(owner.Kind), owner.ID,
	).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", storeErr("find registered code", err)
	}
	return code, nil
}
