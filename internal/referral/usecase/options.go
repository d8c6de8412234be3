package usecase

import (
	"fmt"
	"time"

	"go-referral/internal/conf"
	"go-referral/internal/referral/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	defaultDedupWindow      = 24 * time.Hour
	defaultOperationTimeout = 2 * time.Second
	defaultCodeMaxAttempts  = 5
)

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	IPHashSalt       string
	DedupWindow      time.Duration
	OperationTimeout time.Duration
	CodeLength       int
	CodeMaxAttempts  int
	// Now is the engine clock; tests replace it.
	Now func() time.Time
}

// NewOptions reads the referral section of the config. Unset numbers take
// their defaults; out-of-range ones are rejected.
func NewOptions(c *conf.Referral) (Options, error) {
	err := validation.Errors{
		"code_length":       validation.Validate(c.CodeLength, domain.CodeLengthRules...),
		"code_max_attempts": validation.Validate(c.CodeMaxAttempts, validation.Min(0)),
	}.Filter()
	if err != nil {
		return Options{}, fmt.Errorf("invalid referral config: %w", err)
	}

	return Options{
		IPHashSalt:       c.IPHashSalt,
		DedupWindow:      c.DedupWindow.Std(defaultDedupWindow),
		OperationTimeout: c.OperationTimeout.Std(defaultOperationTimeout),
		CodeLength:       c.CodeLength,
		CodeMaxAttempts:  c.CodeMaxAttempts,
	}.withDefaults(), nil
}

func (o Options) withDefaults() Options {
	if o.DedupWindow <= 0 {
		o.DedupWindow = defaultDedupWindow
	}
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = defaultOperationTimeout
	}
	if o.CodeLength <= 0 {
		o.CodeLength = domain.DefaultCodeLength
	}
	if o.CodeMaxAttempts <= 0 {
		o.CodeMaxAttempts = defaultCodeMaxAttempts
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
