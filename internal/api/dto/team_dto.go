package dto

import "time"

// TeamInput payload for create and update.
type TeamInput struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Public             bool   `json:"public"`
	InvitationRequired bool   `json:"invitation_required"`
}

// TeamResponse summarizes a team for listings.
type TeamResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	OwnerID            *string   `json:"owner_id"`
	Public             bool      `json:"public"`
	InvitationRequired bool      `json:"invitation_required"`
	MemberCount        int       `json:"member_count"`
	IsMember           bool      `json:"is_member"`
	IsOwner            bool      `json:"is_owner"`
	Pending            bool      `json:"pending,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// TeamDetailResponse extends TeamResponse with the roster.
type TeamDetailResponse struct {
	TeamResponse
	MemberIDs       []string              `json:"member_ids,omitempty"`
	PendingRequests []TeamRequestResponse `json:"pending_requests,omitempty"`
}

// TeamRequestResponse is a pending membership change.
type TeamRequestResponse struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	InviterID *string   `json:"inviter_id,omitempty"`
	InviteeID string    `json:"invitee_id"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteMemberRequest payload.
type InviteMemberRequest struct {
	Username string `json:"username"`
}

// RespondRequest payload for accepting or rejecting a team request.
type RespondRequest struct {
	Accept bool `json:"accept"`
}
