package usecase

import (
	"context"
	"errors"
	"testing"

	"go-referral/internal/referral/domain"
	"go-referral/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newResolverWithMocks() (*AccountResolver, *testutil.MockAccountStore, *testutil.MockAccountStore) {
	profiles := testutil.NewMockAccountStore(domain.AccountKindProfile)
	newsletters := testutil.NewMockAccountStore(domain.AccountKindNewsletter)
	return NewAccountResolver(profiles, newsletters), profiles, newsletters
}

func TestAccountResolver_ResolveByCode_ProfileFirst(t *testing.T) {
	sut, profiles, newsletters := newResolverWithMocks()
	owner := &domain.Account{Ref: domain.AccountRef{Kind: domain.AccountKindProfile, ID: "p1", Email: "p@example.com"}, ReferralCode: "abc123"}
	profiles.On("FindByCode", mock.Anything, "abc123").Return(owner, nil)

	ref, err := sut.ResolveByCode(context.Background(), "  ABC123 ")

	require.NoError(t, err)
	assert.Equal(t, owner.Ref, ref)
	newsletters.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestAccountResolver_ResolveByCode_FallsBackToNewsletter(t *testing.T) {
	sut, profiles, newsletters := newResolverWithMocks()
	sub := &domain.Account{Ref: domain.AccountRef{Kind: domain.AccountKindNewsletter, ID: "n1"}, ReferralCode: "news42"}
	profiles.On("FindByCode", mock.Anything, "news42").Return(nil, domain.ErrNotFound)
	newsletters.On("FindByCode", mock.Anything, "news42").Return(sub, nil)

	ref, err := sut.ResolveByCode(context.Background(), "news42")

	require.NoError(t, err)
	assert.Equal(t, domain.AccountKindNewsletter, ref.Kind)
	assert.Equal(t, "n1", ref.ID)
}

func TestAccountResolver_ResolveByCode_Errors(t *testing.T) {
	t.Run("invalid code is rejected before lookup", func(t *testing.T) {
		sut, profiles, _ := newResolverWithMocks()

		_, err := sut.ResolveByCode(context.Background(), "a!")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		profiles.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
	})

	t.Run("not found in either store", func(t *testing.T) {
		sut, profiles, newsletters := newResolverWithMocks()
		profiles.On("FindByCode", mock.Anything, "nobody").Return(nil, domain.ErrNotFound)
		newsletters.On("FindByCode", mock.Anything, "nobody").Return(nil, domain.ErrNotFound)

		_, err := sut.ResolveByCode(context.Background(), "nobody")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("store failure stops the search", func(t *testing.T) {
		sut, profiles, newsletters := newResolverWithMocks()
		storeErr := errors.Join(domain.ErrStoreUnavailable, errors.New("connection refused"))
		profiles.On("FindByCode", mock.Anything, "abc123").Return(nil, storeErr)

		_, err := sut.ResolveByCode(context.Background(), "abc123")

		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		newsletters.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
	})
}

func TestAccountResolver_Resolve_DispatchesOnAt(t *testing.T) {
	sut, profiles, newsletters := newResolverWithMocks()
	sub := &domain.Account{Ref: domain.AccountRef{Kind: domain.AccountKindNewsletter, ID: "n1", Email: "r@example.com"}}
	profiles.On("FindByEmail", mock.Anything, "r@example.com").Return(nil, domain.ErrNotFound)
	newsletters.On("FindByEmail", mock.Anything, "r@example.com").Return(sub, nil)

	ref, err := sut.Resolve(context.Background(), "R@Example.com")

	require.NoError(t, err)
	assert.Equal(t, sub.Ref, ref)
	profiles.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestAccountResolver_ResolveByID_DispatchesByKind(t *testing.T) {
	sut, profiles, newsletters := newResolverWithMocks()
	sub := &domain.Account{Ref: domain.AccountRef{Kind: domain.AccountKindNewsletter, ID: "n1"}}
	newsletters.On("FindByID", mock.Anything, "n1").Return(sub, nil)

	acc, err := sut.ResolveByID(context.Background(), domain.AccountKindNewsletter, "n1")

	require.NoError(t, err)
	assert.Equal(t, sub, acc)
	profiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)

	_, err = sut.ResolveByID(context.Background(), domain.AccountKind("admin"), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = sut.ResolveByID(context.Background(), domain.AccountKindProfile, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
