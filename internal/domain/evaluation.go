package domain

import "time"

// Vote rates the consistency of one evidence/hypothesis pair.
type Vote int

const (
	VoteNA               Vote = 0
	VoteVeryInconsistent Vote = 1
	VoteInconsistent     Vote = 2
	VoteNeutral          Vote = 3
	VoteConsistent       Vote = 4
	VoteVeryConsistent   Vote = 5
)

// ValidVote reports whether v is on the rating scale.
func ValidVote(v Vote) bool {
	return v >= VoteNA && v <= VoteVeryConsistent
}

func (v Vote) String() string {
	switch v {
	case VoteNA:
		return "N/A"
	case VoteVeryInconsistent:
		return "Very Inconsistent"
	case VoteInconsistent:
		return "Inconsistent"
	case VoteNeutral:
		return "Neutral"
	case VoteConsistent:
		return "Consistent"
	case VoteVeryConsistent:
		return "Very Consistent"
	default:
		return "Unknown"
	}
}

// Evaluation is one user's vote on an evidence/hypothesis pair. There is at
// most one evaluation per (board, hypothesis, evidence, user) tuple.
type Evaluation struct {
	ID           string
	BoardID      string
	HypothesisID string
	EvidenceID   string
	UserID       string
	Value        Vote
	UpdatedAt    time.Time
}
