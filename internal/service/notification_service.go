package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/events"
	"github.com/openintel/achboard/internal/repository"
)

// NotificationService fans events out to board followers and serves the
// notification inbox.
type NotificationService struct {
	notifications repository.NotificationRepository
	followers     repository.FollowerRepository
	users         repository.UserRepository
	permissions   *PermissionService
	logger        *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(
	notifications repository.NotificationRepository,
	followers repository.FollowerRepository,
	users repository.UserRepository,
	permissions *PermissionService,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		followers:     followers,
		users:         users,
		permissions:   permissions,
		logger:        logger,
	}
}

// RegisterHandlers subscribes the service to the domain events that produce
// notifications.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventElementAdded, s.handleElement(domain.VerbAdded))
	dispatcher.Subscribe(events.EventElementEdited, s.handleElement(domain.VerbEdited))
	dispatcher.Subscribe(events.EventSourceAdded, s.handleSourceAdded)
	dispatcher.Subscribe(events.EventTeamInviteIssued, s.handleTeamInvite)
}

// handleElement notifies every board follower except the actor.
func (s *NotificationService) handleElement(verb domain.NotificationVerb) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.ElementPayload)
		if !ok {
			return nil
		}
		return s.fanOut(ctx, event, verb, payload.Kind, payload.ID, payload.Label)
	}
}

func (s *NotificationService) handleSourceAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SourceAddedPayload)
	if !ok {
		return nil
	}
	return s.fanOut(ctx, event, domain.VerbAdded, domain.ObjectSource, payload.SourceID, payload.URL)
}

func (s *NotificationService) handleTeamInvite(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TeamInvitePayload)
	if !ok {
		return nil
	}
	notification := &domain.Notification{
		RecipientID: payload.InviteeID,
		ActorID:     event.ActorID,
		Verb:        domain.VerbInvited,
		ObjectKind:  domain.ObjectBoard,
		ObjectID:    payload.TeamID,
		ObjectLabel: payload.TeamName,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to store invite notification", zap.Error(err))
	}
	return nil
}

func (s *NotificationService) fanOut(ctx context.Context, event events.Event, verb domain.NotificationVerb, kind domain.ObjectKind, objectID, label string) error {
	followers, err := s.followers.ListByBoard(ctx, event.BoardID)
	if err != nil {
		s.logger.Warn("failed to list board followers", zap.Error(err), zap.String("board_id", event.BoardID))
		return err
	}
	boardID := event.BoardID
	for _, follower := range followers {
		if follower.UserID == event.ActorID {
			continue
		}
		// followers whose board access was revoked must not keep
		// receiving element labels
		if !s.canRead(ctx, boardID, follower.UserID) {
			continue
		}
		notification := &domain.Notification{
			RecipientID: follower.UserID,
			ActorID:     event.ActorID,
			Verb:        verb,
			ObjectKind:  kind,
			ObjectID:    objectID,
			ObjectLabel: label,
			TargetID:    &boardID,
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to store notification",
				zap.Error(err),
				zap.String("recipient_id", follower.UserID))
		}
	}
	return nil
}

func (s *NotificationService) canRead(ctx context.Context, boardID, userID string) bool {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	_, _, _, err = s.permissions.Resolve(ctx, user, boardID)
	return err == nil
}

// ListUnread returns the caller's unread notifications.
func (s *NotificationService) ListUnread(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.notifications.ListUnread(ctx, actor.ID, limit, offset)
}

// ClearAll marks every unread notification read, returning the count.
func (s *NotificationService) ClearAll(ctx context.Context, actor *domain.User) (int, error) {
	return s.notifications.MarkAllRead(ctx, actor.ID)
}
