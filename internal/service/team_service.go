package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/events"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// TeamService manages teams, membership, and join/invite requests.
type TeamService struct {
	teams      repository.TeamRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewTeamService constructs the service.
func NewTeamService(teams repository.TeamRepository, users repository.UserRepository, dispatcher events.Dispatcher) *TeamService {
	return &TeamService{teams: teams, users: users, dispatcher: dispatcher}
}

// TeamInput describes team creation and edit payloads.
type TeamInput struct {
	Name               string
	Desc               string
	Public             bool
	InvitationRequired bool
}

// TeamView pairs a team with membership details for the caller.
type TeamView struct {
	Team        domain.Team
	MemberCount int
	IsMember    bool
	IsOwner     bool
	Pending     bool
}

// TeamDetail extends TeamView with the member roster.
type TeamDetail struct {
	TeamView
	MemberIDs       []string
	PendingRequests []domain.TeamRequest
}

// Create creates a team owned by the actor, who joins immediately.
func (s *TeamService) Create(ctx context.Context, actor *domain.User, input TeamInput) (*domain.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name is required", nil)
	}
	if len(name) > domain.TeamNameMaxLength || len(input.Desc) > domain.TeamDescMaxLength {
		return nil, apperrors.NewValidationError("team name or description too long", nil)
	}

	team := &domain.Team{
		Name:               name,
		Desc:               strings.TrimSpace(input.Desc),
		OwnerID:            &actor.ID,
		CreatorID:          &actor.ID,
		Public:             input.Public,
		InvitationRequired: input.InvitationRequired,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	if err := s.teams.AddMember(ctx, team.ID, actor.ID); err != nil {
		return nil, err
	}
	return team, nil
}

// Update edits a team. Only the owner may edit.
func (s *TeamService) Update(ctx context.Context, actor *domain.User, teamID string, input TeamInput) (*domain.Team, error) {
	team, err := s.ownedTeam(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name is required", nil)
	}
	if len(name) > domain.TeamNameMaxLength || len(input.Desc) > domain.TeamDescMaxLength {
		return nil, apperrors.NewValidationError("team name or description too long", nil)
	}

	team.Name = name
	team.Desc = strings.TrimSpace(input.Desc)
	team.Public = input.Public
	team.InvitationRequired = input.InvitationRequired
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// List returns teams visible to the caller with membership context.
func (s *TeamService) List(ctx context.Context, actor *domain.User) ([]TeamView, error) {
	var userID *string
	if actor != nil {
		userID = &actor.ID
	}
	teams, err := s.teams.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	counts, err := s.teams.MemberCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	memberOf := make(map[string]bool)
	if actor != nil {
		teamIDs, err := s.teams.TeamIDsByMember(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range teamIDs {
			memberOf[id] = true
		}
	}

	views := make([]TeamView, len(teams))
	for i, t := range teams {
		views[i] = TeamView{
			Team:        t,
			MemberCount: counts[t.ID],
			IsMember:    memberOf[t.ID],
			IsOwner:     actor != nil && t.OwnerID != nil && *t.OwnerID == actor.ID,
		}
	}
	return views, nil
}

// Get returns a team with roster, enforcing visibility of private teams.
func (s *TeamService) Get(ctx context.Context, actor *domain.User, teamID string) (*TeamDetail, error) {
	team, err := s.visibleTeam(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	detail := &TeamDetail{TeamView: TeamView{Team: *team}}
	counts, err := s.teams.MemberCounts(ctx, []string{team.ID})
	if err != nil {
		return nil, err
	}
	detail.MemberCount = counts[team.ID]

	if actor != nil {
		detail.IsOwner = team.OwnerID != nil && *team.OwnerID == actor.ID
		detail.IsMember, err = s.teams.IsMember(ctx, team.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !detail.IsMember {
			if _, err := s.teams.FindRequest(ctx, team.ID, actor.ID); err == nil {
				detail.Pending = true
			} else if err != pgx.ErrNoRows {
				return nil, err
			}
		}
	}

	if detail.IsMember || detail.IsOwner {
		detail.MemberIDs, err = s.teams.ListMemberIDs(ctx, team.ID)
		if err != nil {
			return nil, err
		}
	}
	if detail.IsOwner {
		detail.PendingRequests, err = s.teams.ListRequestsByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// Join adds the actor to an open team, or files a join request when the
// team requires approval.
func (s *TeamService) Join(ctx context.Context, actor *domain.User, teamID string) (joined bool, err error) {
	team, err := s.visibleTeam(ctx, actor, teamID)
	if err != nil {
		return false, err
	}
	isMember, err := s.teams.IsMember(ctx, team.ID, actor.ID)
	if err != nil {
		return false, err
	}
	if isMember {
		return true, nil
	}

	if !team.InvitationRequired {
		return true, s.teams.AddMember(ctx, team.ID, actor.ID)
	}

	if _, err := s.teams.FindRequest(ctx, team.ID, actor.ID); err == nil {
		return false, nil
	} else if err != pgx.ErrNoRows {
		return false, err
	}
	request := &domain.TeamRequest{TeamID: team.ID, InviteeID: actor.ID}
	return false, s.teams.CreateRequest(ctx, request)
}

// Leave removes the actor from the team. Owners cannot leave their own
// team.
func (s *TeamService) Leave(ctx context.Context, actor *domain.User, teamID string) error {
	team, err := s.visibleTeam(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != nil && *team.OwnerID == actor.ID {
		return apperrors.NewConflict("owner cannot leave the team", nil)
	}
	return s.teams.RemoveMember(ctx, team.ID, actor.ID)
}

// RevokeMember removes a member from the team. Only the owner may revoke,
// and the owner's own membership cannot be revoked.
func (s *TeamService) RevokeMember(ctx context.Context, actor *domain.User, teamID, memberID string) error {
	team, err := s.ownedTeam(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != nil && *team.OwnerID == memberID {
		return apperrors.NewConflict("owner membership cannot be revoked", nil)
	}
	isMember, err := s.teams.IsMember(ctx, team.ID, memberID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.NewNotFound("team member", nil)
	}
	return s.teams.RemoveMember(ctx, team.ID, memberID)
}

// Invite issues an invitation from the owner to another user.
func (s *TeamService) Invite(ctx context.Context, actor *domain.User, teamID, inviteeUsername string) (*domain.TeamRequest, error) {
	team, err := s.ownedTeam(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	invitee, err := s.users.GetByUsername(ctx, strings.TrimSpace(inviteeUsername))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	isMember, err := s.teams.IsMember(ctx, team.ID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperrors.NewConflict("user is already a member", nil)
	}
	if _, err := s.teams.FindRequest(ctx, team.ID, invitee.ID); err == nil {
		return nil, apperrors.NewConflict("request already pending", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	request := &domain.TeamRequest{TeamID: team.ID, InviterID: &actor.ID, InviteeID: invitee.ID}
	if err := s.teams.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventTeamInviteIssued,
		ActorID: actor.ID,
		Payload: events.TeamInvitePayload{TeamID: team.ID, TeamName: team.Name, InviteeID: invitee.ID},
	})
	return request, nil
}

// RespondToRequest resolves a pending request. Invitations are accepted or
// declined by the invitee; join requests are approved or rejected by the
// owner.
func (s *TeamService) RespondToRequest(ctx context.Context, actor *domain.User, requestID string, accept bool) error {
	request, err := s.teams.GetRequestByID(ctx, requestID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("team request", nil)
		}
		return err
	}
	team, err := s.teams.GetByID(ctx, request.TeamID)
	if err != nil {
		return err
	}

	if request.IsInvitation() {
		if request.InviteeID != actor.ID {
			return apperrors.NewForbidden("only the invitee may respond")
		}
	} else {
		if team.OwnerID == nil || *team.OwnerID != actor.ID {
			return apperrors.NewForbidden("only the team owner may respond")
		}
	}

	if accept {
		if err := s.teams.AddMember(ctx, team.ID, request.InviteeID); err != nil {
			return err
		}
	}
	return s.teams.DeleteRequest(ctx, request.ID)
}

func (s *TeamService) visibleTeam(ctx context.Context, actor *domain.User, teamID string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("team", nil)
		}
		return nil, err
	}
	if team.Public {
		return team, nil
	}
	if actor != nil {
		if actor.IsStaff {
			return team, nil
		}
		if team.OwnerID != nil && *team.OwnerID == actor.ID {
			return team, nil
		}
		isMember, err := s.teams.IsMember(ctx, team.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if isMember {
			return team, nil
		}
	}
	return nil, apperrors.NewNotFound("team", nil)
}

func (s *TeamService) ownedTeam(ctx context.Context, actor *domain.User, teamID string) (*domain.Team, error) {
	team, err := s.visibleTeam(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && (team.OwnerID == nil || *team.OwnerID != actor.ID) {
		return nil, apperrors.NewForbidden("only the team owner may do that")
	}
	return team, nil
}

func (s *TeamService) publish(ctx context.Context, event events.Event) {
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
