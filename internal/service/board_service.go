package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openintel/achboard/internal/analysis"
	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/events"
	"github.com/openintel/achboard/internal/observability"
	"github.com/openintel/achboard/internal/persistence"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// BoardService coordinates board workflows and the analysis matrix.
type BoardService struct {
	boards      repository.BoardRepository
	permsRepo   repository.PermissionRepository
	hypotheses  repository.HypothesisRepository
	evidence    repository.EvidenceRepository
	tags        repository.TagRepository
	evaluations repository.EvaluationRepository
	followers   repository.FollowerRepository
	history     repository.HistoryRepository
	stats       repository.StatsRepository
	permissions *PermissionService
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	cache       *persistence.Redis
	site        config.SiteConfig
}

// BoardDependencies bundles collaborators for the board service.
type BoardDependencies struct {
	BoardRepo      repository.BoardRepository
	PermissionRepo repository.PermissionRepository
	HypothesisRepo repository.HypothesisRepository
	EvidenceRepo   repository.EvidenceRepository
	TagRepo        repository.TagRepository
	EvaluationRepo repository.EvaluationRepository
	FollowerRepo   repository.FollowerRepository
	HistoryRepo    repository.HistoryRepository
	StatsRepo      repository.StatsRepository
	Permissions    *PermissionService
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Cache          *persistence.Redis
	Site           config.SiteConfig
}

// NewBoardService constructs the service.
func NewBoardService(deps BoardDependencies) *BoardService {
	return &BoardService{
		boards:      deps.BoardRepo,
		permsRepo:   deps.PermissionRepo,
		hypotheses:  deps.HypothesisRepo,
		evidence:    deps.EvidenceRepo,
		tags:        deps.TagRepo,
		evaluations: deps.EvaluationRepo,
		followers:   deps.FollowerRepo,
		history:     deps.HistoryRepo,
		stats:       deps.StatsRepo,
		permissions: deps.Permissions,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		cache:       deps.Cache,
		site:        deps.Site,
	}
}

// BoardCreateInput describes a board creation payload. The first two
// hypotheses are required so the matrix starts with competing explanations.
type BoardCreateInput struct {
	Title      string
	Desc       string
	Hypotheses []string
}

// BoardUpdateInput describes editable board fields.
type BoardUpdateInput struct {
	Title   string
	Desc    string
	Removed *bool
}

// BoardSummary pairs a board with participation counts for listings.
type BoardSummary struct {
	Board            domain.Board
	ContributorCount int
	EvaluatorCount   int
}

// Create creates a board with its default permissions and seed hypotheses.
func (s *BoardService) Create(ctx context.Context, actor *domain.User, input BoardCreateInput) (*domain.Board, error) {
	title := strings.TrimSpace(input.Title)
	desc := strings.TrimSpace(input.Desc)
	if title == "" || desc == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}
	if len(title) > domain.BoardTitleMaxLength || len(desc) > domain.BoardDescMaxLength {
		return nil, apperrors.NewValidationError("title or description too long", nil)
	}
	if len(input.Hypotheses) < 2 {
		return nil, apperrors.NewValidationError("at least two hypotheses are required", nil)
	}
	for _, h := range input.Hypotheses {
		if strings.TrimSpace(h) == "" {
			return nil, apperrors.NewValidationError("hypotheses must not be blank", nil)
		}
	}

	board := &domain.Board{
		Title:     title,
		Slug:      domain.Slugify(title, domain.SlugMaxLength),
		Desc:      desc,
		CreatorID: &actor.ID,
		PubDate:   time.Now(),
	}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, err
	}

	if err := s.permsRepo.Save(ctx, domain.DefaultBoardPermissions(board.ID)); err != nil {
		return nil, err
	}

	for _, text := range input.Hypotheses {
		hypothesis := &domain.Hypothesis{
			BoardID:   board.ID,
			Text:      strings.TrimSpace(text),
			CreatorID: &actor.ID,
		}
		if err := s.hypotheses.Create(ctx, hypothesis); err != nil {
			return nil, err
		}
	}

	if err := s.followers.Upsert(ctx, &domain.BoardFollower{
		BoardID:   board.ID,
		UserID:    actor.ID,
		IsCreator: true,
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BoardsCreated.Inc()
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventBoardCreated,
		BoardID: board.ID,
		ActorID: actor.ID,
		Payload: events.BoardCreatedPayload{Title: board.Title, Slug: board.Slug},
	})
	return board, nil
}

// Update edits board fields, recording each change in the audit trail.
func (s *BoardService) Update(ctx context.Context, actor *domain.User, boardID string, input BoardUpdateInput) (*domain.Board, error) {
	board, _, permCtx, err := s.permissions.Require(ctx, actor, boardID, domain.PermEditBoard)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	desc := strings.TrimSpace(input.Desc)
	if title == "" || desc == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}
	if len(title) > domain.BoardTitleMaxLength || len(desc) > domain.BoardDescMaxLength {
		return nil, apperrors.NewValidationError("title or description too long", nil)
	}

	if input.Removed != nil && *input.Removed != board.Removed {
		if !s.site.EditRemove && !permCtx.IsStaff {
			return nil, apperrors.NewForbidden("board removal is disabled")
		}
		s.recordChange(ctx, actor, board.ID, domain.EntityBoard, board.ID, "removed",
			boolValue(board.Removed), boolValue(*input.Removed))
		board.Removed = *input.Removed
	}
	if title != board.Title {
		s.recordChange(ctx, actor, board.ID, domain.EntityBoard, board.ID, "title", board.Title, title)
		board.Title = title
		board.Slug = domain.Slugify(title, domain.SlugMaxLength)
	}
	if desc != board.Desc {
		s.recordChange(ctx, actor, board.ID, domain.EntityBoard, board.ID, "description", board.Desc, desc)
		board.Desc = desc
	}

	if err := s.boards.Update(ctx, board); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventElementEdited,
		BoardID: board.ID,
		ActorID: actor.ID,
		Payload: events.ElementPayload{Kind: domain.ObjectBoard, ID: board.ID, Label: board.Title},
	})
	return board, nil
}

// Remove soft-removes a board. Elements and votes stay in place so the
// board can be restored through an update.
func (s *BoardService) Remove(ctx context.Context, actor *domain.User, boardID string) error {
	board, _, permCtx, err := s.permissions.Require(ctx, actor, boardID, domain.PermEditBoard)
	if err != nil {
		return err
	}
	if !s.site.EditRemove && !permCtx.IsStaff {
		return apperrors.NewForbidden("board removal is disabled")
	}
	if board.Removed {
		return nil
	}

	s.recordChange(ctx, actor, board.ID, domain.EntityBoard, board.ID, "removed", "false", "true")
	board.Removed = true
	if err := s.boards.Update(ctx, board); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventElementEdited,
		BoardID: board.ID,
		ActorID: actor.ID,
		Payload: events.ElementPayload{Kind: domain.ObjectBoard, ID: board.ID, Label: board.Title},
	})
	return nil
}

// List returns readable boards, newest first, with participation counts.
func (s *BoardService) List(ctx context.Context, actor *domain.User, limit, offset int) ([]BoardSummary, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	viewer := viewerFor(actor)
	boards, err := s.boards.ListReadable(ctx, viewer, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.boards.CountReadable(ctx, viewer)
	if err != nil {
		return nil, 0, err
	}
	summaries, err := s.summarize(ctx, boards)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// Search returns boards matching the term in title or description.
func (s *BoardService) Search(ctx context.Context, actor *domain.User, term string) ([]domain.Board, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.NewValidationError("search term is required", nil)
	}
	return s.boards.Search(ctx, viewerFor(actor), term, s.site.SearchMax)
}

// History returns the audit trail for a readable board.
func (s *BoardService) History(ctx context.Context, actor *domain.User, boardID string, limit int) ([]domain.FieldChange, error) {
	if _, _, _, err := s.permissions.Resolve(ctx, actor, boardID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.history.ListByBoard(ctx, boardID, limit)
}

// GetPermissions returns the board's permission scheme to an editor.
func (s *BoardService) GetPermissions(ctx context.Context, actor *domain.User, boardID string) (*domain.BoardPermissions, error) {
	_, perms, _, err := s.permissions.Require(ctx, actor, boardID, domain.PermEditBoard)
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// UpdatePermissions replaces the board's permission scheme.
func (s *BoardService) UpdatePermissions(ctx context.Context, actor *domain.User, boardID string, updated *domain.BoardPermissions) (*domain.BoardPermissions, error) {
	if _, _, _, err := s.permissions.Require(ctx, actor, boardID, domain.PermEditBoard); err != nil {
		return nil, err
	}
	updated.BoardID = boardID
	if violations := updated.Validate(); violations != nil {
		details := make(map[string]any, len(violations))
		for perm, msg := range violations {
			details[string(perm)] = msg
		}
		return nil, apperrors.NewValidationError("permission levels are inconsistent", details)
	}
	if err := s.permsRepo.Save(ctx, updated); err != nil {
		return nil, err
	}
	return s.permsRepo.Get(ctx, boardID)
}

// EvaluationInput rates one hypothesis against the evidence being
// evaluated. A nil value clears the caller's vote for that pair.
type EvaluationInput struct {
	HypothesisID string
	Value        *domain.Vote
}

// Evaluate records the caller's votes for one piece of evidence across the
// board's hypotheses.
func (s *BoardService) Evaluate(ctx context.Context, actor *domain.User, boardID, evidenceID string, inputs []EvaluationInput) error {
	if _, _, _, err := s.permissions.Resolve(ctx, actor, boardID); err != nil {
		return err
	}

	ev, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if ev.BoardID != boardID || ev.Removed {
		return apperrors.NewNotFound("evidence", nil)
	}

	live, err := s.hypotheses.ListByBoard(ctx, boardID, false)
	if err != nil {
		return err
	}
	liveSet := make(map[string]bool, len(live))
	for _, h := range live {
		liveSet[h.ID] = true
	}

	for _, input := range inputs {
		if !liveSet[input.HypothesisID] {
			return apperrors.NewNotFound("hypothesis", nil)
		}
		if input.Value != nil && !domain.ValidVote(*input.Value) {
			return apperrors.NewValidationError("vote out of range", nil)
		}
	}

	for _, input := range inputs {
		if input.Value == nil {
			if err := s.evaluations.Delete(ctx, boardID, input.HypothesisID, evidenceID, actor.ID); err != nil {
				return err
			}
			continue
		}
		evaluation := &domain.Evaluation{
			BoardID:      boardID,
			HypothesisID: input.HypothesisID,
			EvidenceID:   evidenceID,
			UserID:       actor.ID,
			Value:        *input.Value,
		}
		if err := s.evaluations.Upsert(ctx, evaluation); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.EvaluationsRecorded.Inc()
		}
		s.publishEvent(ctx, events.Event{
			Type:    events.EventEvaluationRecorded,
			BoardID: boardID,
			ActorID: actor.ID,
			Payload: events.EvaluationRecordedPayload{
				HypothesisID: input.HypothesisID,
				EvidenceID:   evidenceID,
				Value:        *input.Value,
			},
		})
	}

	return s.followers.Upsert(ctx, &domain.BoardFollower{
		BoardID:     boardID,
		UserID:      actor.ID,
		IsEvaluator: true,
	})
}

// boardCounts is the cached participation tally for one board.
type boardCounts struct {
	Contributors int `json:"contributors"`
	Evaluators   int `json:"evaluators"`
}

func boardCountsKey(boardID string) string {
	return "boards:counts:" + boardID
}

// countsFor serves a board's participation counts from Redis, recomputing
// on a miss. A nil cache falls through to the repositories.
func (s *BoardService) countsFor(ctx context.Context, boardID string) (boardCounts, error) {
	return persistence.GetOrSetJSON(ctx, s.cache, boardCountsKey(boardID), s.site.StatsCacheTTL(),
		func(ctx context.Context) (boardCounts, error) {
			contributors, err := s.stats.ContributorCounts(ctx, []string{boardID})
			if err != nil {
				return boardCounts{}, err
			}
			evaluators, err := s.evaluations.EvaluatorCounts(ctx, []string{boardID})
			if err != nil {
				return boardCounts{}, err
			}
			return boardCounts{
				Contributors: contributors[boardID],
				Evaluators:   evaluators[boardID],
			}, nil
		})
}

func (s *BoardService) summarize(ctx context.Context, boards []domain.Board) ([]BoardSummary, error) {
	summaries := make([]BoardSummary, len(boards))
	for i, b := range boards {
		counts, err := s.countsFor(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		summaries[i] = BoardSummary{
			Board:            b,
			ContributorCount: counts.Contributors,
			EvaluatorCount:   counts.Evaluators,
		}
	}
	return summaries, nil
}

func (s *BoardService) recordChange(ctx context.Context, actor *domain.User, boardID string, kind domain.EntityKind, entityID, field, oldValue, newValue string) {
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

func (s *BoardService) publishEvent(ctx context.Context, event events.Event) {
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

func boolValue(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// sortHypotheses orders hypotheses by their analysis keys, keeping creation
// order for exact ties.
func sortHypotheses(items []HypothesisSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Key.Less(items[j].Key)
	})
}

func sortEvidence(items []EvidenceSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Key.Less(items[j].Key)
	})
}

// HypothesisSummary carries a hypothesis and its computed ordering key.
type HypothesisSummary struct {
	Hypothesis domain.Hypothesis
	Key        analysis.HypothesisKey
}

// EvidenceSummary carries evidence, its sources, and its ordering key.
type EvidenceSummary struct {
	Evidence domain.Evidence
	Sources  []domain.EvidenceSource
	Taggings map[string][]domain.AnalystSourceTag
	Key      analysis.EvidenceKey
}

// CellSummary is the crowd consensus for one hypothesis/evidence pair.
type CellSummary struct {
	HypothesisID string
	EvidenceID   string
	Consensus    domain.Vote
	HasConsensus bool
	Disagreement float64
	UserVote     *domain.Vote
}

// Vote filter modes for the board detail matrix.
const (
	VoteModeCollab = "collab"
	VoteModeAll    = "all"
)

// BoardDetail is the fully computed board matrix.
type BoardDetail struct {
	Board            *domain.Board
	Permissions      map[domain.Permission]bool
	VoteMode         string
	Hypotheses       []HypothesisSummary
	Evidence         []EvidenceSummary
	Cells            []CellSummary
	ContributorCount int
	EvaluatorCount   int
}

// Detail loads the board with its sorted hypotheses, evidence, and
// per-cell consensus figures. In collab mode the consensus counts only
// votes cast by the creator, collaborators, and collaborating team
// members; an empty mode defaults to collab for those same callers and
// to all votes for everyone else.
func (s *BoardService) Detail(ctx context.Context, actor *domain.User, boardID, voteMode string) (*BoardDetail, error) {
	board, perms, permCtx, err := s.permissions.Resolve(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}

	switch voteMode {
	case VoteModeCollab, VoteModeAll:
	case "":
		voteMode = VoteModeAll
		if permCtx.IsCreator || permCtx.IsCollaborator {
			voteMode = VoteModeCollab
		}
	default:
		return nil, apperrors.NewValidationError("vote_type must be collab or all",
			map[string]any{"vote_type": voteMode})
	}

	var collabSet map[string]bool
	if voteMode == VoteModeCollab {
		ids, err := s.permsRepo.CollaboratorUserIDs(ctx, boardID)
		if err != nil {
			return nil, err
		}
		collabSet = make(map[string]bool, len(ids))
		for _, id := range ids {
			collabSet[id] = true
		}
	}

	hypotheses, err := s.hypotheses.ListByBoard(ctx, boardID, false)
	if err != nil {
		return nil, err
	}
	evidence, err := s.evidence.ListByBoard(ctx, boardID, false)
	if err != nil {
		return nil, err
	}
	evaluations, err := s.evaluations.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	evidenceIDs := make([]string, len(evidence))
	for i, e := range evidence {
		evidenceIDs[i] = e.ID
	}
	sources, err := s.evidence.ListSourcesByEvidence(ctx, evidenceIDs)
	if err != nil {
		return nil, err
	}
	var sourceIDs []string
	for _, group := range sources {
		for _, src := range group {
			sourceIDs = append(sourceIDs, src.ID)
		}
	}
	taggings, err := s.tags.ListTaggingsBySources(ctx, sourceIDs)
	if err != nil {
		return nil, err
	}

	// votes grouped per (hypothesis, evidence) pair; removed elements drop
	// their votes from the analysis
	type pair struct{ h, e string }
	votesByPair := make(map[pair][]domain.Vote)
	userVotes := make(map[pair]domain.Vote)
	liveH := make(map[string]bool, len(hypotheses))
	for _, h := range hypotheses {
		liveH[h.ID] = true
	}
	liveE := make(map[string]bool, len(evidence))
	for _, e := range evidence {
		liveE[e.ID] = true
	}
	for _, ev := range evaluations {
		if !liveH[ev.HypothesisID] || !liveE[ev.EvidenceID] {
			continue
		}
		p := pair{ev.HypothesisID, ev.EvidenceID}
		if actor != nil && ev.UserID == actor.ID {
			userVotes[p] = ev.Value
		}
		if collabSet != nil && !collabSet[ev.UserID] {
			continue
		}
		votesByPair[p] = append(votesByPair[p], ev.Value)
	}

	detail := &BoardDetail{
		Board:       board,
		Permissions: perms.ForUser(permCtx),
		VoteMode:    voteMode,
	}

	for _, h := range hypotheses {
		perEvidence := make([][]domain.Vote, len(evidence))
		for i, e := range evidence {
			perEvidence[i] = votesByPair[pair{h.ID, e.ID}]
		}
		detail.Hypotheses = append(detail.Hypotheses, HypothesisSummary{
			Hypothesis: h,
			Key:        analysis.HypothesisSortKey(perEvidence),
		})
	}
	sortHypotheses(detail.Hypotheses)

	for _, e := range evidence {
		perHypothesis := make([][]domain.Vote, len(hypotheses))
		for i, h := range hypotheses {
			perHypothesis[i] = votesByPair[pair{h.ID, e.ID}]
		}
		summary := EvidenceSummary{
			Evidence: e,
			Sources:  sources[e.ID],
			Key:      analysis.EvidenceSortKey(perHypothesis),
		}
		if len(summary.Sources) > 0 {
			summary.Taggings = make(map[string][]domain.AnalystSourceTag)
			for _, src := range summary.Sources {
				if tagged := taggings[src.ID]; len(tagged) > 0 {
					summary.Taggings[src.ID] = tagged
				}
			}
		}
		detail.Evidence = append(detail.Evidence, summary)
	}
	sortEvidence(detail.Evidence)

	for _, h := range hypotheses {
		for _, e := range evidence {
			p := pair{h.ID, e.ID}
			votes := votesByPair[p]
			cell := CellSummary{HypothesisID: h.ID, EvidenceID: e.ID}
			cell.Consensus, cell.HasConsensus = analysis.AggregateVote(votes)
			cell.Disagreement, _ = analysis.Disagreement(votes)
			if v, ok := userVotes[p]; ok {
				vote := v
				cell.UserVote = &vote
			}
			detail.Cells = append(detail.Cells, cell)
		}
	}

	counts, err := s.summarize(ctx, []domain.Board{*board})
	if err != nil {
		return nil, err
	}
	if len(counts) == 1 {
		detail.ContributorCount = counts[0].ContributorCount
		detail.EvaluatorCount = counts[0].EvaluatorCount
	}
	return detail, nil
}
