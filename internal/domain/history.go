package domain

import "time"

// EntityKind names the board element a field change belongs to.
type EntityKind string

const (
	EntityBoard      EntityKind = "board"
	EntityHypothesis EntityKind = "hypothesis"
	EntityEvidence   EntityKind = "evidence"
)

// FieldChange is an immutable audit entry for a tracked field edit.
type FieldChange struct {
	ID          string
	BoardID     string
	EntityKind  EntityKind
	EntityID    string
	Field       string
	OldValue    string
	NewValue    string
	ChangedByID *string
	CreatedAt   time.Time
}
