package domain

import "time"

// PasswordReset is a single-use token emailed to a user who forgot their
// password.
type PasswordReset struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still redeem a reset.
func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}
