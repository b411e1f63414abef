package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openintel/achboard/internal/domain"
	apperrors "github.com/openintel/achboard/pkg/util"
)

type elementFixture struct {
	service    *ElementService
	hypotheses *fakeHypothesisRepo
	evidence   *fakeEvidenceRepo
	tags       *fakeTagRepo
	permsRepo  *fakePermissionRepo
}

// newElementFixture builds a board whose elements only the creator may edit
// through the permission scheme.
func newElementFixture(t *testing.T, creatorID string) *elementFixture {
	t.Helper()

	boards := newFakeBoardRepo()
	require.NoError(t, boards.Create(context.Background(), &domain.Board{
		ID:        "board-1",
		Title:     "Who leaked the memo?",
		CreatorID: &creatorID,
	}))

	permsRepo := newFakePermissionRepo()
	require.NoError(t, permsRepo.Save(context.Background(), &domain.BoardPermissions{
		BoardID:      "board-1",
		ReadBoard:    domain.LevelAnyone,
		ReadComments: domain.LevelAnyone,
		AddComments:  domain.LevelRegistered,
		AddElements:  domain.LevelRegistered,
		EditElements: domain.LevelCreator,
		EditBoard:    domain.LevelCreator,
	}))

	hypotheses := newFakeHypothesisRepo()
	evidence := newFakeEvidenceRepo()
	tags := newFakeTagRepo()
	permissions := NewPermissionService(boards, permsRepo)
	svc := NewElementService(hypotheses, evidence, tags, &fakeFollowerRepo{}, &fakeHistoryRepo{}, permissions, nil)

	return &elementFixture{
		service:    svc,
		hypotheses: hypotheses,
		evidence:   evidence,
		tags:       tags,
		permsRepo:  permsRepo,
	}
}

func TestEditHypothesisAllowsElementAuthor(t *testing.T) {
	fixture := newElementFixture(t, "creator-1")
	author := &domain.User{ID: "ana-1", Username: "ana"}

	hypothesis := &domain.Hypothesis{BoardID: "board-1", Text: "Insider leak", CreatorID: &author.ID}
	require.NoError(t, fixture.hypotheses.Create(context.Background(), hypothesis))

	updated, err := fixture.service.EditHypothesis(context.Background(), author, hypothesis.ID, "Deliberate insider leak", nil)
	require.NoError(t, err)
	assert.Equal(t, "Deliberate insider leak", updated.Text)
}

func TestEditHypothesisDeniesNonAuthor(t *testing.T) {
	fixture := newElementFixture(t, "creator-1")
	authorID := "ana-1"

	hypothesis := &domain.Hypothesis{BoardID: "board-1", Text: "Insider leak", CreatorID: &authorID}
	require.NoError(t, fixture.hypotheses.Create(context.Background(), hypothesis))

	other := &domain.User{ID: "bo-1", Username: "bo"}
	_, err := fixture.service.EditHypothesis(context.Background(), other, hypothesis.ID, "Rewritten", nil)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestRemoveHypothesisByAuthor(t *testing.T) {
	fixture := newElementFixture(t, "creator-1")
	author := &domain.User{ID: "ana-1", Username: "ana"}

	hypothesis := &domain.Hypothesis{BoardID: "board-1", Text: "Insider leak", CreatorID: &author.ID}
	require.NoError(t, fixture.hypotheses.Create(context.Background(), hypothesis))

	require.NoError(t, fixture.service.RemoveHypothesis(context.Background(), author, hypothesis.ID))

	stored, err := fixture.hypotheses.GetByID(context.Background(), hypothesis.ID)
	require.NoError(t, err)
	assert.True(t, stored.Removed)
}

func TestEditEvidenceAllowsElementAuthor(t *testing.T) {
	fixture := newElementFixture(t, "creator-1")
	author := &domain.User{ID: "ana-1", Username: "ana"}

	evidence := &domain.Evidence{BoardID: "board-1", Desc: "Court filing", CreatorID: &author.ID}
	require.NoError(t, fixture.evidence.Create(context.Background(), evidence))

	updated, err := fixture.service.EditEvidence(context.Background(), author, evidence.ID, "Amended court filing", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Amended court filing", updated.Desc)

	other := &domain.User{ID: "bo-1", Username: "bo"}
	_, err = fixture.service.EditEvidence(context.Background(), other, evidence.ID, "Hijacked", nil, nil)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCreateTag(t *testing.T) {
	fixture := newElementFixture(t, "creator-1")

	tag, err := fixture.service.CreateTag(context.Background(), " Reliable ", "Source has a strong track record")
	require.NoError(t, err)
	assert.NotEmpty(t, tag.ID)
	assert.Equal(t, "Reliable", tag.Name)

	stored, err := fixture.tags.GetTagByName(context.Background(), "Reliable")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, stored.ID)
}

func TestCreateTagRejectsDuplicates(t *testing.T) {
	fixture := newElementFixture(t, "creator-1")

	_, err := fixture.service.CreateTag(context.Background(), "Reliable", "")
	require.NoError(t, err)

	_, err = fixture.service.CreateTag(context.Background(), "Reliable", "again")
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestCreateTagRequiresName(t *testing.T) {
	fixture := newElementFixture(t, "creator-1")

	_, err := fixture.service.CreateTag(context.Background(), "   ", "blank")
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}
