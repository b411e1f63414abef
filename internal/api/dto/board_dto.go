package dto

import "time"

// CreateBoardRequest payload.
type CreateBoardRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hypotheses  []string `json:"hypotheses"`
}

// UpdateBoardRequest payload.
type UpdateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Removed     *bool  `json:"removed,omitempty"`
}

// BoardSummary response.
type BoardSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	CreatorID        *string   `json:"creator_id"`
	PubDate          time.Time `json:"pub_date"`
	Removed          bool      `json:"removed,omitempty"`
	ContributorCount int       `json:"contributor_count,omitempty"`
	EvaluatorCount   int       `json:"evaluator_count,omitempty"`
}

// BoardListResponse wraps a page of boards.
type BoardListResponse struct {
	Boards []BoardSummary `json:"boards"`
	Total  int            `json:"total"`
}

// HypothesisResponse carries a hypothesis and its ordering metrics.
type HypothesisResponse struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	CreatorID     *string `json:"creator_id"`
	Inconsistency float64 `json:"inconsistency"`
	Consistency   float64 `json:"consistency"`
}

// SourceResponse describes an evidence source.
type SourceResponse struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	SourceDate    time.Time `json:"source_date"`
	UploaderID    string    `json:"uploader_id"`
	Corroborating bool      `json:"corroborating"`
	Tags          []string  `json:"tags,omitempty"`
}

// EvidenceResponse carries evidence with sources and ordering metrics.
type EvidenceResponse struct {
	ID            string           `json:"id"`
	Description   string           `json:"description"`
	EventDate     *string          `json:"event_date,omitempty"`
	CreatorID     *string          `json:"creator_id"`
	Diagnosticity float64          `json:"diagnosticity"`
	Sources       []SourceResponse `json:"sources"`
}

// CellResponse is the consensus for one hypothesis/evidence pair.
type CellResponse struct {
	HypothesisID string  `json:"hypothesis_id"`
	EvidenceID   string  `json:"evidence_id"`
	Consensus    *int    `json:"consensus,omitempty"`
	Disagreement float64 `json:"disagreement"`
	UserVote     *int    `json:"user_vote,omitempty"`
}

// BoardDetailResponse is the full board matrix.
type BoardDetailResponse struct {
	Board            BoardSummary         `json:"board"`
	Permissions      map[string]bool      `json:"permissions"`
	VoteType         string               `json:"vote_type"`
	Hypotheses       []HypothesisResponse `json:"hypotheses"`
	Evidence         []EvidenceResponse   `json:"evidence"`
	Cells            []CellResponse       `json:"cells"`
	ContributorCount int                  `json:"contributor_count"`
	EvaluatorCount   int                  `json:"evaluator_count"`
}

// PermissionsResponse mirrors the board permission scheme.
type PermissionsResponse struct {
	ReadBoard     int      `json:"read_board"`
	ReadComments  int      `json:"read_comments"`
	AddComments   int      `json:"add_comments"`
	AddElements   int      `json:"add_elements"`
	EditElements  int      `json:"edit_elements"`
	EditBoard     int      `json:"edit_board"`
	Collaborators []string `json:"collaborators"`
	Teams         []string `json:"teams"`
}

// UpdatePermissionsRequest payload.
type UpdatePermissionsRequest struct {
	ReadBoard     int      `json:"read_board"`
	ReadComments  int      `json:"read_comments"`
	AddComments   int      `json:"add_comments"`
	AddElements   int      `json:"add_elements"`
	EditElements  int      `json:"edit_elements"`
	EditBoard     int      `json:"edit_board"`
	Collaborators []string `json:"collaborators"`
	Teams         []string `json:"teams"`
}

// RatingInput is one hypothesis rating in an evaluate request. A null
// value clears the caller's vote.
type RatingInput struct {
	HypothesisID string `json:"hypothesis_id"`
	Value        *int   `json:"value"`
}

// EvaluateRequest payload.
type EvaluateRequest struct {
	Ratings []RatingInput `json:"ratings"`
}

// FieldChangeResponse is one audit trail entry.
type FieldChangeResponse struct {
	ID         string    `json:"id"`
	EntityKind string    `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	Field      string    `json:"field"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	ChangedBy  *string   `json:"changed_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddHypothesisRequest payload.
type AddHypothesisRequest struct {
	Text string `json:"text"`
}

// EditHypothesisRequest payload.
type EditHypothesisRequest struct {
	Text    string `json:"text"`
	Removed *bool  `json:"removed,omitempty"`
}

// AddEvidenceRequest payload. Dates use YYYY-MM-DD.
type AddEvidenceRequest struct {
	Description   string `json:"description"`
	EventDate     string `json:"event_date,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
	SourceDate    string `json:"source_date,omitempty"`
	Corroborating bool   `json:"corroborating"`
	NoSource      bool   `json:"no_source"`
}

// EditEvidenceRequest payload.
type EditEvidenceRequest struct {
	Description string `json:"description"`
	EventDate   string `json:"event_date,omitempty"`
	Removed     *bool  `json:"removed,omitempty"`
}

// AddSourceRequest payload.
type AddSourceRequest struct {
	URL           string `json:"url"`
	SourceDate    string `json:"source_date"`
	Corroborating bool   `json:"corroborating"`
}

// TagSourceRequest payload.
type TagSourceRequest struct {
	Tag string `json:"tag"`
}

// CreateTagRequest payload for the staff tag catalog endpoint.
type CreateTagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TagResponse is a catalog tag.
type TagResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
