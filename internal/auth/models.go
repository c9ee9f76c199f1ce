// Package auth resolves authenticated principals: password login, session
// persistence, and signed session tokens for the API middleware.
package auth

import "time"

// User is a login identity. Couples and guests are both plain users; what
// they can do is decided by gift list ownership and invitations.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Session is a live login. The JWT handed to the client references the
// session by ID so a logout invalidates the token immediately.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
