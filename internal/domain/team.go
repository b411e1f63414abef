package domain

import "time"

const (
	TeamNameMaxLength = 100
	TeamDescMaxLength = 500
)

// Team is a named group of analysts that can collaborate on boards.
type Team struct {
	ID                 string
	Name               string
	Desc               string
	OwnerID            *string
	CreatorID          *string
	Public             bool
	InvitationRequired bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TeamRequest is a pending membership change. A request with no inviter is
// a user asking to join; one with an inviter is an invitation to the
// invitee.
type TeamRequest struct {
	ID        string
	TeamID    string
	InviterID *string
	InviteeID string
	CreatedAt time.Time
}

// IsInvitation reports whether the request was issued by the team side.
func (r *TeamRequest) IsInvitation() bool {
	return r.InviterID != nil
}
