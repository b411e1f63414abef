package domain

import "time"

// Invitation records an email invite issued by an existing user.
type Invitation struct {
	ID           string
	InviterID    string
	InviteeEmail string
	Token        string
	CreatedAt    time.Time
}
