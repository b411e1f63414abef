package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// ProfileService assembles public profiles and manages user settings.
type ProfileService struct {
	users       repository.UserRepository
	boards      repository.BoardRepository
	hypotheses  repository.HypothesisRepository
	evidence    repository.EvidenceRepository
	evaluations repository.EvaluationRepository
}

// NewProfileService constructs the service.
func NewProfileService(
	users repository.UserRepository,
	boards repository.BoardRepository,
	hypotheses repository.HypothesisRepository,
	evidence repository.EvidenceRepository,
	evaluations repository.EvaluationRepository,
) *ProfileService {
	return &ProfileService{
		users:       users,
		boards:      boards,
		hypotheses:  hypotheses,
		evidence:    evidence,
		evaluations: evaluations,
	}
}

// Profile is a user's public activity. Board lists honor the viewer's read
// permissions, so two viewers can see different profiles for the same user.
type Profile struct {
	User              *domain.User
	BoardsCreated     []domain.Board
	BoardsContributed []domain.Board
	BoardsEvaluated   []domain.Board
	IsSelf            bool
	Settings          *domain.UserSettings
}

const profileBoardsMax = 10

// Get assembles the profile of the named user as seen by the viewer.
func (s *ProfileService) Get(ctx context.Context, viewer *domain.User, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	v := viewerFor(viewer)
	created, err := s.boards.ListCreatedBy(ctx, v, user.ID, profileBoardsMax)
	if err != nil {
		return nil, err
	}

	contributedIDs, err := s.contributedBoardIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	contributed, err := s.boards.ListByIDs(ctx, v, contributedIDs)
	if err != nil {
		return nil, err
	}
	contributed = orderBoards(contributed, contributedIDs, profileBoardsMax)

	evaluatedIDs, err := s.evaluations.BoardIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	evaluated, err := s.boards.ListByIDs(ctx, v, evaluatedIDs)
	if err != nil {
		return nil, err
	}
	evaluated = orderBoards(evaluated, evaluatedIDs, profileBoardsMax)

	profile := &Profile{
		User:              user,
		BoardsCreated:     created,
		BoardsContributed: contributed,
		BoardsEvaluated:   evaluated,
		IsSelf:            viewer != nil && viewer.ID == user.ID,
	}
	if profile.IsSelf {
		profile.Settings, err = s.users.GetSettings(ctx, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// UpdateSettings saves the caller's digest preference.
func (s *ProfileService) UpdateSettings(ctx context.Context, actor *domain.User, freq domain.DigestFrequency) (*domain.UserSettings, error) {
	settings := &domain.UserSettings{UserID: actor.ID, DigestFrequency: freq}
	if err := s.users.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return s.users.GetSettings(ctx, actor.ID)
}

// contributedBoardIDs merges hypothesis and evidence contributions into one
// newest-first, de-duplicated board list.
func (s *ProfileService) contributedBoardIDs(ctx context.Context, userID string) ([]string, error) {
	fromHypotheses, err := s.hypotheses.ContributionsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	fromEvidence, err := s.evidence.ContributionsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mergeContributions(fromHypotheses, fromEvidence), nil
}

// mergeContributions flattens contribution lists into board IDs ordered by
// the latest activity across all lists, dropping duplicates.
func mergeContributions(groups ...[]repository.BoardContribution) []string {
	latest := make(map[string]time.Time)
	var ids []string
	for _, group := range groups {
		for _, c := range group {
			if at, ok := latest[c.BoardID]; !ok {
				latest[c.BoardID] = c.LastAt
				ids = append(ids, c.BoardID)
			} else if c.LastAt.After(at) {
				latest[c.BoardID] = c.LastAt
			}
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return latest[ids[i]].After(latest[ids[j]])
	})
	return ids
}

// orderBoards reorders a readability-filtered board list to match the given
// ID order, capping only after unreadable boards have dropped out.
func orderBoards(boards []domain.Board, ids []string, max int) []domain.Board {
	byID := make(map[string]domain.Board, len(boards))
	for _, b := range boards {
		byID[b.ID] = b
	}
	ordered := make([]domain.Board, 0, len(boards))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
			if len(ordered) == max {
				break
			}
		}
	}
	return ordered
}
