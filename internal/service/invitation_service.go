package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/mailer"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// InvitationService issues email invitations against each user's quota.
type InvitationService struct {
	invitations repository.InvitationRepository
	users       repository.UserRepository
	mail        mailer.Mailer
	site        config.SiteConfig
}

// NewInvitationService constructs the service.
func NewInvitationService(invitations repository.InvitationRepository, users repository.UserRepository, mail mailer.Mailer, site config.SiteConfig) *InvitationService {
	return &InvitationService{invitations: invitations, users: users, mail: mail, site: site}
}

// Invite emails an invitation, consuming one of the inviter's invites.
func (s *InvitationService) Invite(ctx context.Context, actor *domain.User, email string) (*domain.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email address is required", nil)
	}
	if actor.InvitesRemaining <= 0 {
		return nil, apperrors.NewConflict("no invitations remaining", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("that address already has an account", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	if err := s.users.DecrementInvites(ctx, actor.ID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewConflict("no invitations remaining", nil)
		}
		return nil, err
	}
	actor.InvitesRemaining--

	invitation := &domain.Invitation{InviterID: actor.ID, InviteeEmail: email}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}

	body := actor.Username + " invited you to join " + s.site.Name + ".\n\n" +
		"Sign up at https://" + s.site.Domain + "/register?invite=" + invitation.Token + "\n"
	if err := s.mail.Send(email, "Invitation to "+s.site.Name, body); err != nil {
		return nil, err
	}
	return invitation, nil
}

// ListSent returns the actor's previously issued invitations.
func (s *InvitationService) ListSent(ctx context.Context, actor *domain.User) ([]domain.Invitation, error) {
	return s.invitations.ListByInviter(ctx, actor.ID)
}
