package models

import "time"

// Session is the decoded content of a session token.
type Session struct {
	IdentityID string    `json:"identity_id"`
	Role       Role      `json:"role"`
	TokenID    string    `json:"-"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ValidAt reports whether the session has not yet expired at now.
func (s Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
