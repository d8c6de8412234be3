package event

import "time"

const ReferralConvertedName = "referral.converted"

// ReferralConverted is raised when a conversion reaches the ledger, either by
// upgrading a click or as a direct conversion.
type ReferralConverted struct {
	Base
	LedgerID      int64  `json:"ledger_id"`
	Code          string `json:"code"`
	ReferrerKind  string `json:"referrer_kind"`
	ReferrerID    string `json:"referrer_id"`
	ReferredEmail string `json:"referred_email"`
	ReferredKind  string `json:"referred_kind,omitempty"`
	ReferredID    string `json:"referred_id,omitempty"`
	// Upgraded is true when an existing click was converted in place.
	Upgraded bool `json:"upgraded"`
	// ClickToConvert is zero for direct conversions.
	ClickToConvert time.Duration `json:"click_to_convert"`
}

func NewReferralConverted(ledgerID int64, code, referrerKind, referrerID, referredEmail, referredKind, referredID string, upgraded bool, clickToConvert time.Duration, at time.Time) ReferralConverted {
	return ReferralConverted{
		Base:           NewBase(code, at),
		LedgerID:       ledgerID,
		Code:           code,
		ReferrerKind:   referrerKind,
		ReferrerID:     referrerID,
		ReferredEmail:  referredEmail,
		ReferredKind:   referredKind,
		ReferredID:     referredID,
		Upgraded:       upgraded,
		ClickToConvert: clickToConvert,
	}
}

func (e ReferralConverted) EventName() string {
	return ReferralConvertedName
}
