package domain

import "time"

// NotificationVerb describes what the actor did.
type NotificationVerb string

const (
	VerbAdded   NotificationVerb = "added"
	VerbEdited  NotificationVerb = "edited"
	VerbInvited NotificationVerb = "sent an invitation"
)

// ObjectKind names the entity a notification is about.
type ObjectKind string

const (
	ObjectHypothesis ObjectKind = "hypothesis"
	ObjectEvidence   ObjectKind = "evidence"
	ObjectSource     ObjectKind = "source"
	ObjectBoard      ObjectKind = "board"
)

// Notification is delivered to board followers and digest subscribers.
type Notification struct {
	ID          string
	RecipientID string
	ActorID     string
	Verb        NotificationVerb
	ObjectKind  ObjectKind
	ObjectID    string
	ObjectLabel string
	TargetID    *string // board the action happened on, if any
	Read        bool
	CreatedAt   time.Time
}

// DigestStatus tracks digest email delivery per user.
type DigestStatus struct {
	UserID      string
	LastSuccess *time.Time
	LastAttempt *time.Time
}
