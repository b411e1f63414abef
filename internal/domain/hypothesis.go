package domain

import "time"

const HypothesisMaxLength = 200

// Hypothesis is a candidate answer to a board's topic question.
type Hypothesis struct {
	ID        string
	BoardID   string
	Text      string
	CreatorID *string
	Removed   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
