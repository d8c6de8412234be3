package domain

import "time"

// Status is the lifecycle state of a referral event. Clicked may become
// converted; converted is terminal.
type Status string

const (
	StatusClicked   Status = "clicked"
	StatusConverted Status = "converted"
)

// ReferralEvent is one ledger row. Referred fields stay empty while the event
// is clicked. ClickedAt is nil for conversions that had no prior click.
type ReferralEvent struct {
	ID            int64       `json:"id"`
	Code          string      `json:"code"`
	ReferrerKind  AccountKind `json:"referrer_kind"`
	ReferrerID    string      `json:"referrer_id"`
	Status        Status      `json:"status"`
	IPHash        string      `json:"-"`
	ReferredEmail string      `json:"referred_email,omitempty"`
	ReferredKind  AccountKind `json:"referred_kind,omitempty"`
	ReferredID    string      `json:"referred_id,omitempty"`
	ClickedAt     *time.Time  `json:"clicked_at,omitempty"`
	ConvertedAt   *time.Time  `json:"converted_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Conversion carries what is known about the referred party at conversion time.
// Referred is nil when the email matches no account yet.
type Conversion struct {
	Code          string
	ReferredEmail string
	Referred      *AccountRef
	ConvertedAt   time.Time
}

// NewClick builds a clicked event for the given referrer.
func NewClick(code string, referrer AccountRef, ipHash string, at time.Time) *ReferralEvent {
	at = at.UTC()
	return &ReferralEvent{
		Code:         code,
		ReferrerKind: referrer.Kind,
		ReferrerID:   referrer.ID,
		Status:       StatusClicked,
		IPHash:       ipHash,
		ClickedAt:    &at,
		CreatedAt:    at,
	}
}

// NewDirectConversion builds a converted event with no preceding click.
func NewDirectConversion(referrer AccountRef, c Conversion) *ReferralEvent {
	at := c.ConvertedAt.UTC()
	ev := &ReferralEvent{
		Code:          c.Code,
		ReferrerKind:  referrer.Kind,
		ReferrerID:    referrer.ID,
		Status:        StatusConverted,
		ReferredEmail: c.ReferredEmail,
		ConvertedAt:   &at,
		CreatedAt:     at,
	}
	if c.Referred != nil {
		ev.ReferredKind = c.Referred.Kind
		ev.ReferredID = c.Referred.ID
	}
	return ev
}

// DedupBucket maps a click time onto its fixed-width window index.
func DedupBucket(at time.Time, window time.Duration) int64 {
	ms := window.Milliseconds()
	if ms <= 0 {
		return at.UnixMilli()
	}
	return at.UnixMilli() / ms
}
