package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/events"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// ElementService manages hypotheses, evidence, sources, and source tags.
type ElementService struct {
	hypotheses  repository.HypothesisRepository
	evidence    repository.EvidenceRepository
	tags        repository.TagRepository
	followers   repository.FollowerRepository
	history     repository.HistoryRepository
	permissions *PermissionService
	dispatcher  events.Dispatcher
}

// NewElementService constructs the service.
func NewElementService(
	hypotheses repository.HypothesisRepository,
	evidence repository.EvidenceRepository,
	tags repository.TagRepository,
	followers repository.FollowerRepository,
	history repository.HistoryRepository,
	permissions *PermissionService,
	dispatcher events.Dispatcher,
) *ElementService {
	return &ElementService{
		hypotheses:  hypotheses,
		evidence:    evidence,
		tags:        tags,
		followers:   followers,
		history:     history,
		permissions: permissions,
		dispatcher:  dispatcher,
	}
}

// AddHypothesis appends a hypothesis to the board.
func (s *ElementService) AddHypothesis(ctx context.Context, actor *domain.User, boardID, text string) (*domain.Hypothesis, error) {
	if _, _, _, err := s.permissions.Require(ctx, actor, boardID, domain.PermAddElements); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("hypothesis text is required", nil)
	}
	if len(text) > domain.HypothesisMaxLength {
		return nil, apperrors.NewValidationError("hypothesis text too long", nil)
	}

	hypothesis := &domain.Hypothesis{BoardID: boardID, Text: text, CreatorID: &actor.ID}
	if err := s.hypotheses.Create(ctx, hypothesis); err != nil {
		return nil, err
	}
	s.markContributor(ctx, boardID, actor.ID)
	s.publishElement(ctx, events.EventElementAdded, boardID, actor.ID, domain.ObjectHypothesis, hypothesis.ID, text)
	return hypothesis, nil
}

// requireElementEdit grants the edit when the caller holds edit_elements
// on the board, or created the element themselves.
func (s *ElementService) requireElementEdit(ctx context.Context, actor *domain.User, boardID string, creatorID *string) error {
	_, _, _, err := s.permissions.Require(ctx, actor, boardID, domain.PermEditElements)
	if err == nil {
		return nil
	}
	if apperrors.IsForbidden(err) && actor != nil && creatorID != nil && *creatorID == actor.ID {
		return nil
	}
	return err
}

// EditHypothesis updates or soft-removes a hypothesis.
func (s *ElementService) EditHypothesis(ctx context.Context, actor *domain.User, hypothesisID, text string, removed *bool) (*domain.Hypothesis, error) {
	hypothesis, err := s.hypotheses.GetByID(ctx, hypothesisID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.requireElementEdit(ctx, actor, hypothesis.BoardID, hypothesis.CreatorID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("hypothesis text is required", nil)
	}
	if len(text) > domain.HypothesisMaxLength {
		return nil, apperrors.NewValidationError("hypothesis text too long", nil)
	}

	if text != hypothesis.Text {
		s.recordChange(ctx, actor, hypothesis.BoardID, domain.EntityHypothesis, hypothesis.ID, "text", hypothesis.Text, text)
		hypothesis.Text = text
	}
	if removed != nil && *removed != hypothesis.Removed {
		s.recordChange(ctx, actor, hypothesis.BoardID, domain.EntityHypothesis, hypothesis.ID, "removed",
			boolValue(hypothesis.Removed), boolValue(*removed))
		hypothesis.Removed = *removed
	}
	if err := s.hypotheses.Update(ctx, hypothesis); err != nil {
		return nil, err
	}
	s.publishElement(ctx, events.EventElementEdited, hypothesis.BoardID, actor.ID, domain.ObjectHypothesis, hypothesis.ID, hypothesis.Text)
	return hypothesis, nil
}

// RemoveHypothesis soft-removes a hypothesis. Its votes drop out of the
// analysis but stay recorded.
func (s *ElementService) RemoveHypothesis(ctx context.Context, actor *domain.User, hypothesisID string) error {
	hypothesis, err := s.hypotheses.GetByID(ctx, hypothesisID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.requireElementEdit(ctx, actor, hypothesis.BoardID, hypothesis.CreatorID); err != nil {
		return err
	}
	if hypothesis.Removed {
		return nil
	}

	s.recordChange(ctx, actor, hypothesis.BoardID, domain.EntityHypothesis, hypothesis.ID, "removed", "false", "true")
	hypothesis.Removed = true
	if err := s.hypotheses.Update(ctx, hypothesis); err != nil {
		return err
	}
	s.publishElement(ctx, events.EventElementEdited, hypothesis.BoardID, actor.ID, domain.ObjectHypothesis, hypothesis.ID, hypothesis.Text)
	return nil
}

// EvidenceInput describes a new piece of evidence and its first source.
type EvidenceInput struct {
	Desc          string
	EventDate     *time.Time
	SourceURL     string
	SourceDate    *time.Time
	Corroborating bool
	NoSource      bool
}

// AddEvidence appends evidence, optionally with a corroborating source that
// gets queued for metadata fetching.
func (s *ElementService) AddEvidence(ctx context.Context, actor *domain.User, boardID string, input EvidenceInput) (*domain.Evidence, error) {
	if _, _, _, err := s.permissions.Require(ctx, actor, boardID, domain.PermAddElements); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(input.Desc)
	if desc == "" {
		return nil, apperrors.NewValidationError("evidence description is required", nil)
	}
	if len(desc) > domain.EvidenceMaxLength {
		return nil, apperrors.NewValidationError("evidence description too long", nil)
	}

	evidence := &domain.Evidence{
		BoardID:   boardID,
		Desc:      desc,
		EventDate: input.EventDate,
		CreatorID: &actor.ID,
	}
	if err := s.evidence.Create(ctx, evidence); err != nil {
		return nil, err
	}
	s.markContributor(ctx, boardID, actor.ID)
	s.publishElement(ctx, events.EventElementAdded, boardID, actor.ID, domain.ObjectEvidence, evidence.ID, desc)

	if !input.NoSource {
		if _, err := s.addSource(ctx, actor, boardID, evidence.ID, input.SourceURL, input.SourceDate, input.Corroborating); err != nil {
			return nil, err
		}
	}
	return evidence, nil
}

// EditEvidence updates or soft-removes evidence.
func (s *ElementService) EditEvidence(ctx context.Context, actor *domain.User, evidenceID string, desc string, eventDate *time.Time, removed *bool) (*domain.Evidence, error) {
	evidence, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.requireElementEdit(ctx, actor, evidence.BoardID, evidence.CreatorID); err != nil {
		return nil, err
	}

	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil, apperrors.NewValidationError("evidence description is required", nil)
	}
	if len(desc) > domain.EvidenceMaxLength {
		return nil, apperrors.NewValidationError("evidence description too long", nil)
	}

	if desc != evidence.Desc {
		s.recordChange(ctx, actor, evidence.BoardID, domain.EntityEvidence, evidence.ID, "description", evidence.Desc, desc)
		evidence.Desc = desc
	}
	evidence.EventDate = eventDate
	if removed != nil && *removed != evidence.Removed {
		s.recordChange(ctx, actor, evidence.BoardID, domain.EntityEvidence, evidence.ID, "removed",
			boolValue(evidence.Removed), boolValue(*removed))
		evidence.Removed = *removed
	}
	if err := s.evidence.Update(ctx, evidence); err != nil {
		return nil, err
	}
	s.publishElement(ctx, events.EventElementEdited, evidence.BoardID, actor.ID, domain.ObjectEvidence, evidence.ID, evidence.Desc)
	return evidence, nil
}

// RemoveEvidence soft-removes evidence along with its place in the matrix.
func (s *ElementService) RemoveEvidence(ctx context.Context, actor *domain.User, evidenceID string) error {
	evidence, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.requireElementEdit(ctx, actor, evidence.BoardID, evidence.CreatorID); err != nil {
		return err
	}
	if evidence.Removed {
		return nil
	}

	s.recordChange(ctx, actor, evidence.BoardID, domain.EntityEvidence, evidence.ID, "removed", "false", "true")
	evidence.Removed = true
	if err := s.evidence.Update(ctx, evidence); err != nil {
		return err
	}
	s.publishElement(ctx, events.EventElementEdited, evidence.BoardID, actor.ID, domain.ObjectEvidence, evidence.ID, evidence.Desc)
	return nil
}

// EvidenceDetail pairs evidence with its sources and their analyst tags.
type EvidenceDetail struct {
	Evidence *domain.Evidence
	Sources  []domain.EvidenceSource
	Taggings map[string][]domain.AnalystSourceTag
}

// GetEvidence loads one piece of evidence with its sources for a reader of
// its board. Removed evidence stays hidden.
func (s *ElementService) GetEvidence(ctx context.Context, actor *domain.User, evidenceID string) (*EvidenceDetail, error) {
	evidence, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if _, _, _, err := s.permissions.Resolve(ctx, actor, evidence.BoardID); err != nil {
		return nil, err
	}
	if evidence.Removed {
		return nil, apperrors.NewNotFound("evidence", nil)
	}

	sources, err := s.evidence.ListSourcesByEvidence(ctx, []string{evidence.ID})
	if err != nil {
		return nil, err
	}
	detail := &EvidenceDetail{Evidence: evidence, Sources: sources[evidence.ID]}

	sourceIDs := make([]string, 0, len(detail.Sources))
	for _, src := range detail.Sources {
		sourceIDs = append(sourceIDs, src.ID)
	}
	if detail.Taggings, err = s.tags.ListTaggingsBySources(ctx, sourceIDs); err != nil {
		return nil, err
	}
	return detail, nil
}

// AddSource attaches a corroborating or conflicting source to evidence.
func (s *ElementService) AddSource(ctx context.Context, actor *domain.User, evidenceID, sourceURL string, sourceDate *time.Time, corroborating bool) (*domain.EvidenceSource, error) {
	evidence, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if _, _, _, err := s.permissions.Require(ctx, actor, evidence.BoardID, domain.PermAddElements); err != nil {
		return nil, err
	}
	return s.addSource(ctx, actor, evidence.BoardID, evidenceID, sourceURL, sourceDate, corroborating)
}

func (s *ElementService) addSource(ctx context.Context, actor *domain.User, boardID, evidenceID, sourceURL string, sourceDate *time.Time, corroborating bool) (*domain.EvidenceSource, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" || len(sourceURL) > domain.SourceURLMaxLength {
		return nil, apperrors.NewValidationError("source url is required", nil)
	}
	parsed, err := url.Parse(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, apperrors.NewValidationError("source url must be absolute http(s)", nil)
	}
	if sourceDate == nil {
		return nil, apperrors.NewValidationError("source date is required", nil)
	}

	source := &domain.EvidenceSource{
		EvidenceID:    evidenceID,
		URL:           sourceURL,
		SourceDate:    *sourceDate,
		UploaderID:    actor.ID,
		Corroborating: corroborating,
	}
	if err := s.evidence.CreateSource(ctx, source); err != nil {
		return nil, err
	}
	s.markContributor(ctx, boardID, actor.ID)
	s.publish(ctx, events.Event{
		Type:    events.EventSourceAdded,
		BoardID: boardID,
		ActorID: actor.ID,
		Payload: events.SourceAddedPayload{
			SourceID:   source.ID,
			EvidenceID: evidenceID,
			URL:        sourceURL,
			NeedsFetch: true,
		},
	})
	return source, nil
}

// TagSource toggles the actor's tagging of a source: tagging twice with the
// same tag removes it.
func (s *ElementService) TagSource(ctx context.Context, actor *domain.User, sourceID, tagName string) (added bool, err error) {
	source, err := s.evidence.GetSourceByID(ctx, sourceID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	evidence, err := s.evidence.GetByID(ctx, source.EvidenceID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if _, _, _, err := s.permissions.Require(ctx, actor, evidence.BoardID, domain.PermAddElements); err != nil {
		return false, err
	}

	tag, err := s.tags.GetTagByName(ctx, strings.TrimSpace(tagName))
	if err != nil {
		return false, apperrors.NewNotFound("tag", nil)
	}

	removed, err := s.tags.RemoveTagging(ctx, sourceID, actor.ID, tag.ID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	tagging := &domain.AnalystSourceTag{SourceID: sourceID, TaggerID: actor.ID, TagID: tag.ID}
	if err := s.tags.AddTagging(ctx, tagging); err != nil {
		return false, err
	}
	return true, nil
}

// ListTags returns the tag catalog.
func (s *ElementService) ListTags(ctx context.Context) ([]domain.SourceTag, error) {
	return s.tags.ListTags(ctx)
}

// CreateTag adds a catalog tag. Staff access is enforced at the route.
func (s *ElementService) CreateTag(ctx context.Context, name, desc string) (*domain.SourceTag, error) {
	name = strings.TrimSpace(name)
	desc = strings.TrimSpace(desc)
	if name == "" {
		return nil, apperrors.NewValidationError("tag name is required", nil)
	}
	if len(name) > domain.TagNameMaxLength || len(desc) > domain.TagDescMaxLength {
		return nil, apperrors.NewValidationError("tag name or description too long", nil)
	}

	if _, err := s.tags.GetTagByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("tag already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	tag := &domain.SourceTag{Name: name, Desc: desc}
	if err := s.tags.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *ElementService) markContributor(ctx context.Context, boardID, userID string) {
	_ = s.followers.Upsert(ctx, &domain.BoardFollower{
		BoardID:       boardID,
		UserID:        userID,
		IsContributor: true,
	})
}

func (s *ElementService) recordChange(ctx context.Context, actor *domain.User, boardID string, kind domain.EntityKind, entityID, field, oldValue, newValue string) {
	change := &domain.FieldChange{
		BoardID:     boardID,
		EntityKind:  kind,
		EntityID:    entityID,
		Field:       field,
		OldValue:    oldValue,
		NewValue:    newValue,
		ChangedByID: &actor.ID,
	}
	_ = s.history.Record(ctx, change)
}

func (s *ElementService) publishElement(ctx context.Context, eventType events.EventType, boardID, actorID string, kind domain.ObjectKind, id, label string) {
	s.publish(ctx, events.Event{
		Type:    eventType,
		BoardID: boardID,
		ActorID: actorID,
		Payload: events.ElementPayload{Kind: kind, ID: id, Label: label},
	})
}

func (s *ElementService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
