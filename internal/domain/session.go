package domain

import "time"

// Session binds a bearer credential to a user identity and role for a
// bounded lifetime. TokenHash is the SHA-256 of the issued token; the raw
// token is never stored.
type Session struct {
	ID        string
	UserID    string
	Role      Role
	TokenHash []byte
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session lapsed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
