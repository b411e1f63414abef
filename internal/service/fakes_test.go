package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/repository"
)

// In-memory repositories backing the service tests.

type fakeBoardRepo struct {
	boards map[string]*domain.Board
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{boards: make(map[string]*domain.Board)}
}

func (f *fakeBoardRepo) Create(_ context.Context, board *domain.Board) error {
	if board.ID == "" {
		board.ID = fmt.Sprintf("board-%d", len(f.boards)+1)
	}
	copied := *board
	f.boards[board.ID] = &copied
	return nil
}

func (f *fakeBoardRepo) Update(_ context.Context, board *domain.Board) error {
	if _, ok := f.boards[board.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *board
	f.boards[board.ID] = &copied
	return nil
}

func (f *fakeBoardRepo) GetByID(_ context.Context, id string) (*domain.Board, error) {
	board, ok := f.boards[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *board
	return &copied, nil
}

func (f *fakeBoardRepo) ListReadable(context.Context, repository.Viewer, int, int) ([]domain.Board, error) {
	return nil, nil
}

func (f *fakeBoardRepo) CountReadable(context.Context, repository.Viewer) (int, error) {
	return 0, nil
}

func (f *fakeBoardRepo) Search(context.Context, repository.Viewer, string, int) ([]domain.Board, error) {
	return nil, nil
}

func (f *fakeBoardRepo) ListCreatedBy(context.Context, repository.Viewer, string, int) ([]domain.Board, error) {
	return nil, nil
}

func (f *fakeBoardRepo) ListByIDs(_ context.Context, _ repository.Viewer, ids []string) ([]domain.Board, error) {
	var result []domain.Board
	for _, id := range ids {
		if board, ok := f.boards[id]; ok {
			result = append(result, *board)
		}
	}
	return result, nil
}

func (f *fakeBoardRepo) ListPublishedSince(context.Context, repository.Viewer, time.Time) ([]domain.Board, error) {
	return nil, nil
}

type fakePermissionRepo struct {
	perms   map[string]*domain.BoardPermissions
	collabs map[string]map[string]bool
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{
		perms:   make(map[string]*domain.BoardPermissions),
		collabs: make(map[string]map[string]bool),
	}
}

func (f *fakePermissionRepo) Get(_ context.Context, boardID string) (*domain.BoardPermissions, error) {
	perms, ok := f.perms[boardID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *perms
	return &copied, nil
}

func (f *fakePermissionRepo) Save(_ context.Context, perms *domain.BoardPermissions) error {
	copied := *perms
	f.perms[perms.BoardID] = &copied
	return nil
}

func (f *fakePermissionRepo) IsCollaborator(_ context.Context, boardID, userID string) (bool, error) {
	return f.collabs[boardID][userID], nil
}

func (f *fakePermissionRepo) CollaboratorUserIDs(_ context.Context, boardID string) ([]string, error) {
	var ids []string
	for id := range f.collabs[boardID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakePermissionRepo) addCollaborator(boardID, userID string) {
	if f.collabs[boardID] == nil {
		f.collabs[boardID] = make(map[string]bool)
	}
	f.collabs[boardID][userID] = true
}

type fakeHypothesisRepo struct {
	items map[string]*domain.Hypothesis
	seq   int
}

func newFakeHypothesisRepo() *fakeHypothesisRepo {
	return &fakeHypothesisRepo{items: make(map[string]*domain.Hypothesis)}
}

func (f *fakeHypothesisRepo) Create(_ context.Context, hypothesis *domain.Hypothesis) error {
	f.seq++
	hypothesis.ID = fmt.Sprintf("hyp-%d", f.seq)
	copied := *hypothesis
	f.items[hypothesis.ID] = &copied
	return nil
}

func (f *fakeHypothesisRepo) Update(_ context.Context, hypothesis *domain.Hypothesis) error {
	if _, ok := f.items[hypothesis.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *hypothesis
	f.items[hypothesis.ID] = &copied
	return nil
}

func (f *fakeHypothesisRepo) GetByID(_ context.Context, id string) (*domain.Hypothesis, error) {
	hypothesis, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *hypothesis
	return &copied, nil
}

func (f *fakeHypothesisRepo) ListByBoard(_ context.Context, boardID string, includeRemoved bool) ([]domain.Hypothesis, error) {
	var result []domain.Hypothesis
	for _, h := range f.items {
		if h.BoardID == boardID && (includeRemoved || !h.Removed) {
			result = append(result, *h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeHypothesisRepo) ContributionsByCreator(context.Context, string) ([]repository.BoardContribution, error) {
	return nil, nil
}

type fakeEvidenceRepo struct {
	items   map[string]*domain.Evidence
	sources map[string]*domain.EvidenceSource
	seq     int
}

func newFakeEvidenceRepo() *fakeEvidenceRepo {
	return &fakeEvidenceRepo{
		items:   make(map[string]*domain.Evidence),
		sources: make(map[string]*domain.EvidenceSource),
	}
}

func (f *fakeEvidenceRepo) Create(_ context.Context, evidence *domain.Evidence) error {
	f.seq++
	evidence.ID = fmt.Sprintf("ev-%d", f.seq)
	copied := *evidence
	f.items[evidence.ID] = &copied
	return nil
}

func (f *fakeEvidenceRepo) Update(_ context.Context, evidence *domain.Evidence) error {
	if _, ok := f.items[evidence.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *evidence
	f.items[evidence.ID] = &copied
	return nil
}

func (f *fakeEvidenceRepo) GetByID(_ context.Context, id string) (*domain.Evidence, error) {
	evidence, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *evidence
	return &copied, nil
}

func (f *fakeEvidenceRepo) ListByBoard(_ context.Context, boardID string, includeRemoved bool) ([]domain.Evidence, error) {
	var result []domain.Evidence
	for _, e := range f.items {
		if e.BoardID == boardID && (includeRemoved || !e.Removed) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeEvidenceRepo) ContributionsByCreator(context.Context, string) ([]repository.BoardContribution, error) {
	return nil, nil
}

func (f *fakeEvidenceRepo) CreateSource(_ context.Context, source *domain.EvidenceSource) error {
	f.seq++
	source.ID = fmt.Sprintf("src-%d", f.seq)
	copied := *source
	f.sources[source.ID] = &copied
	return nil
}

func (f *fakeEvidenceRepo) UpdateSource(_ context.Context, source *domain.EvidenceSource) error {
	if _, ok := f.sources[source.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *source
	f.sources[source.ID] = &copied
	return nil
}

func (f *fakeEvidenceRepo) GetSourceByID(_ context.Context, id string) (*domain.EvidenceSource, error) {
	source, ok := f.sources[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *source
	return &copied, nil
}

func (f *fakeEvidenceRepo) ListSourcesByEvidence(_ context.Context, evidenceIDs []string) (map[string][]domain.EvidenceSource, error) {
	result := make(map[string][]domain.EvidenceSource)
	for _, id := range evidenceIDs {
		for _, src := range f.sources {
			if src.EvidenceID == id {
				result[id] = append(result[id], *src)
			}
		}
	}
	return result, nil
}

type fakeTagRepo struct {
	tags     map[string]*domain.SourceTag
	taggings []domain.AnalystSourceTag
	seq      int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*domain.SourceTag)}
}

func (f *fakeTagRepo) ListTags(context.Context) ([]domain.SourceTag, error) {
	var result []domain.SourceTag
	for _, tag := range f.tags {
		result = append(result, *tag)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeTagRepo) GetTagByName(_ context.Context, name string) (*domain.SourceTag, error) {
	tag, ok := f.tags[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeTagRepo) CreateTag(_ context.Context, tag *domain.SourceTag) error {
	f.seq++
	tag.ID = fmt.Sprintf("tag-%d", f.seq)
	copied := *tag
	f.tags[tag.Name] = &copied
	return nil
}

func (f *fakeTagRepo) AddTagging(_ context.Context, tagging *domain.AnalystSourceTag) error {
	f.taggings = append(f.taggings, *tagging)
	return nil
}

func (f *fakeTagRepo) RemoveTagging(_ context.Context, sourceID, taggerID, tagID string) (bool, error) {
	for i, t := range f.taggings {
		if t.SourceID == sourceID && t.TaggerID == taggerID && t.TagID == tagID {
			f.taggings = append(f.taggings[:i], f.taggings[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTagRepo) ListTaggingsBySources(_ context.Context, sourceIDs []string) (map[string][]domain.AnalystSourceTag, error) {
	result := make(map[string][]domain.AnalystSourceTag)
	for _, id := range sourceIDs {
		for _, t := range f.taggings {
			if t.SourceID == id {
				result[id] = append(result[id], t)
			}
		}
	}
	return result, nil
}

type fakeFollowerRepo struct {
	followers []domain.BoardFollower
}

func (f *fakeFollowerRepo) Upsert(_ context.Context, follower *domain.BoardFollower) error {
	for i, existing := range f.followers {
		if existing.BoardID == follower.BoardID && existing.UserID == follower.UserID {
			f.followers[i].IsCreator = existing.IsCreator || follower.IsCreator
			f.followers[i].IsContributor = existing.IsContributor || follower.IsContributor
			f.followers[i].IsEvaluator = existing.IsEvaluator || follower.IsEvaluator
			return nil
		}
	}
	f.followers = append(f.followers, *follower)
	return nil
}

func (f *fakeFollowerRepo) ListByBoard(_ context.Context, boardID string) ([]domain.BoardFollower, error) {
	var result []domain.BoardFollower
	for _, follower := range f.followers {
		if follower.BoardID == boardID {
			result = append(result, follower)
		}
	}
	return result, nil
}

type fakeHistoryRepo struct {
	changes []domain.FieldChange
}

func (f *fakeHistoryRepo) Record(_ context.Context, change *domain.FieldChange) error {
	f.changes = append(f.changes, *change)
	return nil
}

func (f *fakeHistoryRepo) ListByBoard(_ context.Context, boardID string, _ int) ([]domain.FieldChange, error) {
	var result []domain.FieldChange
	for _, change := range f.changes {
		if change.BoardID == boardID {
			result = append(result, change)
		}
	}
	return result, nil
}

type fakeNotificationRepo struct {
	created []domain.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListUnread(context.Context, string, int, int) ([]domain.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) ListUnreadSince(context.Context, string, time.Time) ([]domain.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkAllRead(context.Context, string) (int, error) {
	return 0, nil
}

func (f *fakeNotificationRepo) GetDigestStatus(context.Context, string) (*domain.DigestStatus, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeNotificationRepo) SaveDigestStatus(context.Context, *domain.DigestStatus) error {
	return nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) DecrementInvites(context.Context, string) error { return nil }

func (f *fakeUserRepo) GetSettings(context.Context, string) (*domain.UserSettings, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) SaveSettings(context.Context, *domain.UserSettings) error { return nil }

func (f *fakeUserRepo) ListByDigestFrequency(context.Context, domain.DigestFrequency) ([]domain.User, error) {
	return nil, nil
}

type fakeStatsRepo struct {
	contributors map[string]int
	calls        int
}

func (f *fakeStatsRepo) ContributorCounts(_ context.Context, boardIDs []string) (map[string]int, error) {
	f.calls++
	result := make(map[string]int, len(boardIDs))
	for _, id := range boardIDs {
		result[id] = f.contributors[id]
	}
	return result, nil
}

func (f *fakeStatsRepo) SiteCounts(context.Context) (repository.SiteCounts, error) {
	return repository.SiteCounts{}, nil
}

type fakeEvaluationRepo struct {
	evaluators map[string]int
}

func (f *fakeEvaluationRepo) Upsert(context.Context, *domain.Evaluation) error { return nil }

func (f *fakeEvaluationRepo) Delete(context.Context, string, string, string, string) error {
	return nil
}

func (f *fakeEvaluationRepo) ListByBoard(context.Context, string) ([]domain.Evaluation, error) {
	return nil, nil
}

func (f *fakeEvaluationRepo) ListByUserForEvidence(context.Context, string, string, string) ([]domain.Evaluation, error) {
	return nil, nil
}

func (f *fakeEvaluationRepo) BoardIDsByUser(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeEvaluationRepo) EvaluatorCounts(_ context.Context, boardIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(boardIDs))
	for _, id := range boardIDs {
		result[id] = f.evaluators[id]
	}
	return result, nil
}
