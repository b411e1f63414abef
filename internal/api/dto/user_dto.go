package dto

import "time"

// UserResponse is the public view of a user.
type UserResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	IsStaff          bool      `json:"is_staff,omitempty"`
	JoinedAt         time.Time `json:"joined_at"`
	InvitesRemaining *int      `json:"invites_remaining,omitempty"`
}

// SettingsResponse carries digest preferences.
type SettingsResponse struct {
	DigestFrequency string `json:"digest_frequency"`
}

// UpdateSettingsRequest payload.
type UpdateSettingsRequest struct {
	DigestFrequency string `json:"digest_frequency"`
}

// ProfileResponse is a user's public activity. Settings and notifications
// only appear on the caller's own profile.
type ProfileResponse struct {
	User              UserResponse           `json:"user"`
	BoardsCreated     []BoardSummary         `json:"boards_created"`
	BoardsContributed []BoardSummary         `json:"boards_contributed"`
	BoardsEvaluated   []BoardSummary         `json:"boards_evaluated"`
	Settings          *SettingsResponse      `json:"settings,omitempty"`
	Notifications     []NotificationResponse `json:"notifications,omitempty"`
}

// InviteRequest payload.
type InviteRequest struct {
	Email string `json:"email"`
}

// InvitationResponse describes a sent invitation.
type InvitationResponse struct {
	ID           string    `json:"id"`
	InviteeEmail string    `json:"invitee_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID          string    `json:"id"`
	ActorID     string    `json:"actor_id"`
	Verb        string    `json:"verb"`
	ObjectKind  string    `json:"object_kind"`
	ObjectID    string    `json:"object_id"`
	ObjectLabel string    `json:"object_label"`
	BoardID     *string   `json:"board_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
