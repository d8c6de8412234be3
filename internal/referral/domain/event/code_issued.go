package event

import "time"

const CodeIssuedName = "referral.code_issued"

// CodeIssued is raised when an account receives its first referral code.
type CodeIssued struct {
	Base
	Code        string `json:"code"`
	AccountKind string `json:"account_kind"`
	AccountID   string `json:"account_id"`
}

func NewCodeIssued(code, accountKind, accountID string, at time.Time) CodeIssued {
	return CodeIssued{
		Base:        NewBase(code, at),
		Code:        code,
		AccountKind: accountKind,
		AccountID:   accountID,
	}
}

func (e CodeIssued) EventName() string {
	return CodeIssuedName
}
