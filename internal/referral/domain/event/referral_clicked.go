package event

import "time"

const ReferralClickedName = "referral.clicked"

// ReferralClicked is raised when a click is written to the ledger.
type ReferralClicked struct {
	Base
	LedgerID     int64  `json:"ledger_id"`
	Code         string `json:"code"`
	ReferrerKind string `json:"referrer_kind"`
	ReferrerID   string `json:"referrer_id"`
}

func NewReferralClicked(ledgerID int64, code, referrerKind, referrerID string, at time.Time) ReferralClicked {
	return ReferralClicked{
		Base:         NewBase(code, at),
		LedgerID:     ledgerID,
		Code:         code,
		ReferrerKind: referrerKind,
		ReferrerID:   referrerID,
	}
}

func (e ReferralClicked) EventName() string {
	return ReferralClickedName
}
