package core

import "github.com/google/uuid"

// Session identifies the user a request acts for. It is passed to every
// ledger call instead of living in process-wide state.
type Session struct {
	UserID    int64
	Username  string
	Currency  string
	IsAdmin   bool
	RequestID string
}

// NewSession builds a session for u with a fresh request id.
func NewSession(u User) Session {
	cur := u.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	return Session{
		UserID:    u.ID,
		Username:  u.Username,
		Currency:  cur,
		IsAdmin:   u.IsAdmin,
		RequestID: uuid.NewString(),
	}
}
