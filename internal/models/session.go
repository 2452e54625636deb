package models

import "time"

// Session maps an opaque bearer token to a user. Many sessions may exist
// per user (multi-device). Expiry is evaluated lazily at read time.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
