package domain

import "time"

const (
	EvidenceMaxLength          = 200
	SourceURLMaxLength         = 255
	SourceTitleMaxLength       = 255
	SourceDescriptionMaxLength = 1000
	TagNameMaxLength           = 64
	TagDescMaxLength           = 200
)

// Evidence is a piece of evidence scored against a board's hypotheses.
type Evidence struct {
	ID        string
	BoardID   string
	Desc      string
	EventDate *time.Time
	CreatorID *string
	Removed   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EvidenceSource corroborates or conflicts with a piece of evidence.
// Title and description are filled in asynchronously by the metadata
// fetcher when the uploader leaves them blank.
type EvidenceSource struct {
	ID            string
	EvidenceID    string
	URL           string
	Title         string
	Description   string
	SourceDate    time.Time
	UploaderID    string
	Corroborating bool
	Removed       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SourceTag is a catalog entry analysts can apply to evidence sources.
type SourceTag struct {
	ID   string
	Name string
	Desc string
}

// AnalystSourceTag records one analyst tagging one source.
type AnalystSourceTag struct {
	ID        string
	SourceID  string
	TaggerID  string
	TagID     string
	CreatedAt time.Time
}
