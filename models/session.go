package models

import "time"

// Session is the server-side record behind a session cookie.
// SealedPassword is encrypted; see auth.Sealer.
type Session struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	SealedPassword []byte    `json:"-"`
	Flash          string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
