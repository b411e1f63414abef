package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/events"
)

func TestFanOutSkipsFollowersWithoutReadAccess(t *testing.T) {
	creatorID := "creator-1"
	boards := newFakeBoardRepo()
	require.NoError(t, boards.Create(context.Background(), &domain.Board{
		ID:        "board-1",
		Title:     "Restricted board",
		CreatorID: &creatorID,
	}))

	permsRepo := newFakePermissionRepo()
	require.NoError(t, permsRepo.Save(context.Background(), &domain.BoardPermissions{
		BoardID:      "board-1",
		ReadBoard:    domain.LevelCollaborators,
		ReadComments: domain.LevelCollaborators,
		AddComments:  domain.LevelCollaborators,
		AddElements:  domain.LevelCollaborators,
		EditElements: domain.LevelCollaborators,
		EditBoard:    domain.LevelCreator,
	}))
	permsRepo.addCollaborator("board-1", "carla-1")

	followers := &fakeFollowerRepo{}
	for _, userID := range []string{creatorID, "carla-1", "oscar-1"} {
		require.NoError(t, followers.Upsert(context.Background(), &domain.BoardFollower{
			BoardID: "board-1",
			UserID:  userID,
		}))
	}

	users := newFakeUserRepo(
		&domain.User{ID: creatorID, Username: "creator"},
		&domain.User{ID: "carla-1", Username: "carla"},
		&domain.User{ID: "oscar-1", Username: "oscar"},
	)

	notifications := &fakeNotificationRepo{}
	svc := NewNotificationService(notifications, followers, users,
		NewPermissionService(boards, permsRepo), zap.NewNop())

	event := events.Event{
		Type:    events.EventElementAdded,
		BoardID: "board-1",
		ActorID: creatorID,
	}
	require.NoError(t, svc.fanOut(context.Background(), event, domain.VerbAdded,
		domain.ObjectHypothesis, "hyp-1", "Insider leak"))

	// carla is a collaborator; oscar follows but lost read access when the
	// board went collaborator-only
	require.Len(t, notifications.created, 1)
	assert.Equal(t, "carla-1", notifications.created[0].RecipientID)
}

func TestFanOutNotifiesAllReadersOnOpenBoards(t *testing.T) {
	creatorID := "creator-1"
	boards := newFakeBoardRepo()
	require.NoError(t, boards.Create(context.Background(), &domain.Board{
		ID:        "board-1",
		Title:     "Open board",
		CreatorID: &creatorID,
	}))

	permsRepo := newFakePermissionRepo()
	require.NoError(t, permsRepo.Save(context.Background(), domain.DefaultBoardPermissions("board-1")))

	followers := &fakeFollowerRepo{}
	for _, userID := range []string{creatorID, "oscar-1"} {
		require.NoError(t, followers.Upsert(context.Background(), &domain.BoardFollower{
			BoardID: "board-1",
			UserID:  userID,
		}))
	}

	users := newFakeUserRepo(
		&domain.User{ID: creatorID, Username: "creator"},
		&domain.User{ID: "oscar-1", Username: "oscar"},
	)

	notifications := &fakeNotificationRepo{}
	svc := NewNotificationService(notifications, followers, users,
		NewPermissionService(boards, permsRepo), zap.NewNop())

	event := events.Event{
		Type:    events.EventElementAdded,
		BoardID: "board-1",
		ActorID: creatorID,
	}
	require.NoError(t, svc.fanOut(context.Background(), event, domain.VerbAdded,
		domain.ObjectEvidence, "ev-1", "New filing"))

	// the actor never hears about their own change
	require.Len(t, notifications.created, 1)
	assert.Equal(t, "oscar-1", notifications.created[0].RecipientID)
}
