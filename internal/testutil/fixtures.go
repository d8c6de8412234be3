package testutil

import (
	"testing"
	"time"

	"go-referral/internal/database"

	"github.com/stretchr/testify/require"
)

// OpenTestDB opens a migrated in-memory sqlite database closed at test end.
func OpenTestDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

// SeedProfile inserts a profile row. An empty code leaves referral_code NULL.
func SeedProfile(t testing.TB, db *database.DB, id, email, code string) {
	t.Helper()
	_, err := db.Exec(
		db.Rebind("INSERT INTO profiles (id, email, referral_code, created_at) VALUES (?, ?, ?, ?)"),
		id, email, nullable(code), time.Now().UnixMilli(),
	)
	require.NoError(t, err)
}

// SeedSubscriber inserts a newsletter subscriber row.
func SeedSubscriber(t testing.TB, db *database.DB, id, email, code string) {
	t.Helper()
	_, err := db.Exec(
		db.Rebind("INSERT INTO newsletter_subscribers (id, email, referral_code, subscribed_at) VALUES (?, ?, ?, ?)"),
		id, email, nullable(code), time.Now().UnixMilli(),
	)
	require.NoError(t, err)
}

// CountRows counts rows in a table.
func CountRows(t testing.TB, db *database.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
