package usecase

import (
	"context"

	"go-referral/internal/referral/domain"
)

// Engine is the single entry point used by the transports.
type Engine struct {
	resolver    *AccountResolver
	issuer      *CodeIssuer
	clicks      *ClickRecorder
	conversions *ConversionAttributor
	stats       *StatsReader
}

func NewEngine(resolver *AccountResolver, issuer *CodeIssuer, clicks *ClickRecorder, conversions *ConversionAttributor, stats *StatsReader) *Engine {
	return &Engine{
		resolver:    resolver,
		issuer:      issuer,
		clicks:      clicks,
		conversions: conversions,
		stats:       stats,
	}
}

// IssueCode is idempotent: it returns the existing code or a newly issued one.
func (e *Engine) IssueCode(ctx context.Context, ref domain.AccountRef) (string, error) {
	return e.issuer.EnsureCode(ctx, ref)
}

// TrackClick always acknowledges.
func (e *Engine) TrackClick(ctx context.Context, code, clientIP string) {
	e.clicks.TrackClick(ctx, code, clientIP)
}

// RecordConversion always acknowledges.
func (e *Engine) RecordConversion(ctx context.Context, code, referredEmail string) {
	e.conversions.RecordConversion(ctx, code, referredEmail)
}

func (e *Engine) Resolve(ctx context.Context, codeOrEmail string) (domain.AccountRef, error) {
	return e.resolver.Resolve(ctx, codeOrEmail)
}

func (e *Engine) Stats(ctx context.Context, code string) (*ReferralStats, error) {
	return e.stats.Stats(ctx, code)
}
