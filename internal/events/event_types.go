package events

import (
	"time"

	"github.com/openintel/achboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBoardCreated       EventType = "board_created"
	EventElementAdded       EventType = "element_added"
	EventElementEdited      EventType = "element_edited"
	EventSourceAdded        EventType = "source_added"
	EventEvaluationRecorded EventType = "evaluation_recorded"
	EventTeamInviteIssued   EventType = "team_invite_issued"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BoardID   string      `json:"board_id,omitempty"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BoardCreatedPayload payload.
type BoardCreatedPayload struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ElementPayload payload for element additions and edits.
type ElementPayload struct {
	Kind  domain.ObjectKind `json:"kind"`
	ID    string            `json:"id"`
	Label string            `json:"label"`
}

// SourceAddedPayload payload.
type SourceAddedPayload struct {
	SourceID   string `json:"source_id"`
	EvidenceID string `json:"evidence_id"`
	URL        string `json:"url"`
	NeedsFetch bool   `json:"needs_fetch"`
}

// EvaluationRecordedPayload payload.
type EvaluationRecordedPayload struct {
	HypothesisID string      `json:"hypothesis_id"`
	EvidenceID   string      `json:"evidence_id"`
	Value        domain.Vote `json:"value"`
}

// TeamInvitePayload payload.
type TeamInvitePayload struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	InviteeID string `json:"invitee_id"`
}
