package sqlstore

import (
	"context"
	"testing"
	"time"

	"go-referral/internal/referral/domain"
	"go-referral/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeRegistry_Claim(t *testing.T) {
	db := testutil.OpenTestDB(t)
	registry := NewCodeRegistry(db)
	ctx := context.Background()
	now := time.Now()

	alice := domain.AccountRef{Kind: domain.AccountKindProfile, ID: "a"}
	bob := domain.AccountRef{Kind: domain.AccountKindNewsletter, ID: "b"}

	ok, err := registry.Claim(ctx, "abc123", alice, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = registry.Claim(ctx, "abc123", bob, now)
	require.NoError(t, err)
	assert.False(t, ok, "code already taken across account kinds")

	ok, err = registry.Claim(ctx, "zzz999", alice, now)
	require.NoError(t, err)
	assert.False(t, ok, "account already holds a code")

	code, err := registry.FindByAccount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "abc123", code)

	_, err = registry.FindByAccount(ctx, bob)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCodeRegistry_SameIDDifferentKind(t *testing.T) {
	db := testutil.OpenTestDB(t)
	registry := NewCodeRegistry(db)
	ctx := context.Background()

	ok, err := registry.Claim(ctx, "code01", domain.AccountRef{Kind: domain.AccountKindProfile, ID: "1"}, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = registry.Claim(ctx, "code02", domain.AccountRef{Kind: domain.AccountKindNewsletter, ID: "1"}, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
}
