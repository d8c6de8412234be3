package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"go-referral/internal/database"
	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/usecase"
)

// accountTable describes where one account kind keeps its rows.
type accountTable struct {
	kind    domain.AccountKind
	name    string
	orderBy string
}

var (
	profilesTable   = accountTable{kind: domain.AccountKindProfile, name: "profiles", orderBy: "created_at, id"}
	newsletterTable = accountTable{kind: domain.AccountKindNewsletter, name: "newsletter_subscribers", orderBy: "subscribed_at, id"}
)

// AccountRepository reads one account kind and writes its referral_code column.
type AccountRepository struct {
	db    *database.DB
	table accountTable
}

var _ usecase.AccountStore = (*AccountRepository)(nil)

// NewProfileRepository returns the store for profile accounts.
func NewProfileRepository(db *database.DB) usecase.ProfileStore {
	return &AccountRepository{db: db, table: profilesTable}
}

// NewNewsletterRepository returns the store for newsletter subscribers.
func NewNewsletterRepository(db *database.DB) usecase.NewsletterStore {
	return &AccountRepository{db: db, table: newsletterTable}
}

func (r *AccountRepository) Kind() domain.AccountKind {
	return r.table.kind
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "find by id", "id = ?", id)
}

func (r *AccountRepository) FindByCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.findOne(ctx, "find by code", "referral_code = ?", code)
}

// FindByEmail matches case-insensitively; profiles may share an address, in
// which case the oldest row wins.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "find by email", "lower(email) = lower(?)", email)
}

func (r *AccountRepository) SetReferralCode(ctx context.Context, id, code string) (bool, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		r.db.Rebind("UPDATE "+r.table.name+" SET referral_code = ? WHERE id = ? AND referral_code IS NULL"),
		code, id,
	)
	if err != nil {
		return false, storeErr("set referral code on "+r.table.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("set referral code on "+r.table.name, err)
	}
	return n == 1, nil
}

func (r *AccountRepository) findOne(ctx context.Context, op, where string, arg any) (*domain.Account, error) {
	query := "SELECT id, email, referral_code FROM " + r.table.name +
		" WHERE " + where + " ORDER BY " + r.table.orderBy + " LIMIT 1"

	var (
		acc  = domain.Account{Ref: domain.AccountRef{Kind: r.table.kind}}
		code sql.NullString
	)
	err := r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(query), arg).
		Scan(&acc.Ref.ID, &acc.Ref.Email, &code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(r.table.name+" "+op, err)
	}
	acc.ReferralCode = code.String
	return &acc, nil
}
