package models

import "time"

// CashoutToken is a short-lived, single-use credential mediating reward
// redemption through an admin. Tokens expire by timestamp comparison; there
// is no explicit write on expiry.
type CashoutToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
}

func (t *CashoutToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
