package usecase

import (
	"context"

	"go-referral/internal/referral/domain"

	"github.com/samber/lo"
)

// ReferralStats summarizes the ledger for one code.
type ReferralStats struct {
	Code     string            `json:"code"`
	Referrer domain.AccountRef `json:"referrer"`
	// Clicked counts clicks still waiting for a conversion.
	Clicked   int64 `json:"clicked"`
	Converted int64 `json:"converted"`
	Total     int64 `json:"total"`
}

// StatsReader reports ledger counts per code.
type StatsReader struct {
	resolver *AccountResolver
	ledger   EventLedger
}

func NewStatsReader(resolver *AccountResolver, ledger EventLedger) *StatsReader {
	return &StatsReader{resolver: resolver, ledger: ledger}
}

// Stats returns domain.ErrNotFound for a code no account holds.
func (s *StatsReader) Stats(ctx context.Context, code string) (*ReferralStats, error) {
	normalized, err := domain.NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	owner, err := s.resolver.accountByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	counts, err := s.ledger.CountByStatus(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &ReferralStats{
		Code:      normalized,
		Referrer:  owner.Ref,
		Clicked:   counts[domain.StatusClicked],
		Converted: counts[domain.StatusConverted],
		Total:     lo.Sum(lo.Values(counts)),
	}, nil
}
