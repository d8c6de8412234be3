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

const eventColumns = `id, code, referrer_kind, referrer_id, status, ip_hash,
	referred_email, referred_kind, referred_id, clicked_at, converted_at, created_at`

// EventRepository is the referral ledger. Rows are only ever inserted or
// moved from clicked to converted.
type EventRepository struct {
	db *database.DB
}

var _ usecase.EventLedger = (*EventRepository)(nil)

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) HasRecentClick(ctx context.Context, ipHash string, since time.Time) (bool, error) {
	var one int
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Rebind("SELECT 1 FROM referral_events WHERE ip_hash = ? AND clicked_at >= ? LIMIT 1"),
		ipHash, since.UnixMilli(),
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storeErr("check recent click", err)
	}
	return true, nil
}

// InsertClick relies on UNIQUE(ip_hash, dedup_bucket): a concurrent duplicate
// becomes a no-op insert instead of a second row.
func (r *EventRepository) InsertClick(ctx context.Context, ev *domain.ReferralEvent, bucket int64) (bool, error) {
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Rebind(`INSERT INTO referral_events
			(code, referrer_kind, referrer_id, status, ip_hash, dedup_bucket, clicked_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
			RETURNING id`),
		ev.Code, string(ev.ReferrerKind), ev.ReferrerID, string(domain.StatusClicked),
		ev.IPHash, bucket, nullMillis(ev.ClickedAt), ev.CreatedAt.UnixMilli(),
	).Scan(&ev.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storeErr("insert click", err)
	}
	return true, nil
}

// ConvertLatestClick performs the match and the transition in one statement.
// The outer predicate repeats the inner one so a row converted by a racing
// statement is never converted twice.
func (r *EventRepository) ConvertLatestClick(ctx context.Context, c domain.Conversion) (*domain.ReferralEvent, error) {
	var referredKind, referredID string
	if c.Referred != nil {
		referredKind, referredID = string(c.Referred.Kind), c.Referred.ID
	}

	row := r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Rebind(`UPDATE referral_events
			SET status = ?, referred_email = ?, referred_kind = ?, referred_id = ?, converted_at = ?
			WHERE id = (
				SELECT id FROM referral_events
				WHERE code = ? AND status = ? AND referred_email IS NULL
				ORDER BY clicked_at DESC, id DESC
				LIMIT 1
			)
			AND status = ? AND referred_email IS NULL
			RETURNING `+eventColumns),
		string(domain.StatusConverted), c.ReferredEmail, nullString(referredKind), nullString(referredID), c.ConvertedAt.UnixMilli(),
		c.Code, string(domain.StatusClicked),
		string(domain.StatusClicked),
	)

	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("convert latest click", err)
	}
	return ev, nil
}

func (r *EventRepository) InsertConversion(ctx context.Context, ev *domain.ReferralEvent) error {
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Rebind(`INSERT INTO referral_events
			(code, referrer_kind, referrer_id, status, referred_email, referred_kind, referred_id, clicked_at, converted_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
		ev.Code, string(ev.ReferrerKind), ev.ReferrerID, string(domain.StatusConverted),
		ev.ReferredEmail, nullString(string(ev.ReferredKind)), nullString(ev.ReferredID),
		nullMillis(ev.ClickedAt), nullMillis(ev.ConvertedAt), ev.CreatedAt.UnixMilli(),
	).Scan(&ev.ID)
	if err != nil {
		return storeErr("insert conversion", err)
	}
	return nil
}

func (r *EventRepository) CountByStatus(ctx context.Context, code string) (map[domain.Status]int64, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx,
		r.db.Rebind("SELECT status, COUNT(*) FROM referral_events WHERE code = ? GROUP BY status"),
		code,
	)
	if err != nil {
		return nil, storeErr("count events", err)
	}
	defer rows.Close()

	counts := map[domain.Status]int64{
		domain.StatusClicked:   0,
		domain.StatusConverted: 0,
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storeErr("count events", err)
		}
		counts[domain.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("count events", err)
	}
	return counts, nil
}

// ListByCode returns every ledger row for the code, oldest first.
func (r *EventRepository) ListByCode(ctx context.Context, code string) ([]*domain.ReferralEvent, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx,
		r.db.Rebind("SELECT "+eventColumns+" FROM referral_events WHERE code = ? ORDER BY id"),
		code,
	)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	defer rows.Close()

	var events []*domain.ReferralEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, storeErr("list events", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list events", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.ReferralEvent, error) {
	var (
		ev                       domain.ReferralEvent
		referrerKind, status     string
		ipHash, referredEmail    sql.NullString
		referredKind, referredID sql.NullString
		clickedAt, convertedAt   sql.NullInt64
		createdAt                int64
	)
	err := row.Scan(&ev.ID, &ev.Code, &referrerKind, &ev.ReferrerID, &status, &ipHash,
		&referredEmail, &referredKind, &referredID, &clickedAt, &convertedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	ev.ReferrerKind = domain.AccountKind(referrerKind)
	ev.Status = domain.Status(status)
	ev.IPHash = ipHash.String
	ev.ReferredEmail = referredEmail.String
	ev.ReferredKind = domain.AccountKind(referredKind.String)
	ev.ReferredID = referredID.String
	ev.ClickedAt = fromMillis(clickedAt)
	ev.ConvertedAt = fromMillis(convertedAt)
	ev.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &ev, nil
}
