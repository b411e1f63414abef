package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/openintel/achboard/internal/api/dto"
	"github.com/openintel/achboard/internal/auth"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/service"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// ProfilesHandler manages profiles, settings, notifications, and
// invitations.
type ProfilesHandler struct {
	profiles      *service.ProfileService
	notifications *service.NotificationService
	invitations   *service.InvitationService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profiles *service.ProfileService, notifications *service.NotificationService, invitations *service.InvitationService) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles, notifications: notifications, invitations: invitations}
}

// Get GET /users/:id.
func (h *ProfilesHandler) Get(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// Me GET /profile.
func (h *ProfilesHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	profile, err := h.profiles.Get(c.Context(), principal.User, principal.User.ID)
	if err != nil {
		return err
	}
	notifications, err := h.notifications.ListUnread(c.Context(), principal.User, 25, 0)
	if err != nil {
		return err
	}
	resp := profileResponse(profile)
	resp.Notifications = notificationResponses(notifications)
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateSettings PUT /settings.
func (h *ProfilesHandler) UpdateSettings(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	freq, ok := domain.ParseDigestFrequency(req.DigestFrequency)
	if !ok {
		return apperrors.NewValidationError("unknown digest frequency", map[string]any{
			"digest_frequency": "must be never, daily, or weekly",
		})
	}
	settings, err := h.profiles.UpdateSettings(c.Context(), principal.User, freq)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SettingsResponse{DigestFrequency: settings.DigestFrequency.String()}})
}

// ListNotifications GET /notifications.
func (h *ProfilesHandler) ListNotifications(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit := parseInt(c.Query("limit"), 25)
	offset := parseInt(c.Query("offset"), 0)
	notifications, err := h.notifications.ListUnread(c.Context(), principal.User, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": notificationResponses(notifications)})
}

// ClearNotifications POST /notifications/clear.
func (h *ProfilesHandler) ClearNotifications(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	cleared, err := h.notifications.ClearAll(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"cleared": cleared}})
}

// Invite POST /invitations.
func (h *ProfilesHandler) Invite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	invitation, err := h.invitations.Invite(c.Context(), principal.User, req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": invitationResponse(invitation)})
}

// ListInvitations GET /invitations.
func (h *ProfilesHandler) ListInvitations(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	invitations, err := h.invitations.ListSent(c.Context(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.InvitationResponse, 0, len(invitations))
	for i := range invitations {
		items = append(items, invitationResponse(&invitations[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func profileResponse(profile *service.Profile) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		User:              userResponse(profile.User, profile.IsSelf),
		BoardsCreated:     boardSummaries(profile.BoardsCreated),
		BoardsContributed: boardSummaries(profile.BoardsContributed),
		BoardsEvaluated:   boardSummaries(profile.BoardsEvaluated),
	}
	if profile.Settings != nil {
		resp.Settings = &dto.SettingsResponse{DigestFrequency: profile.Settings.DigestFrequency.String()}
	}
	return resp
}

func notificationResponses(notifications []domain.Notification) []dto.NotificationResponse {
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:          n.ID,
			ActorID:     n.ActorID,
			Verb:        string(n.Verb),
			ObjectKind:  string(n.ObjectKind),
			ObjectID:    n.ObjectID,
			ObjectLabel: n.ObjectLabel,
			BoardID:     n.TargetID,
			CreatedAt:   n.CreatedAt,
		})
	}
	return items
}

func invitationResponse(invitation *domain.Invitation) dto.InvitationResponse {
	return dto.InvitationResponse{
		ID:           invitation.ID,
		InviteeEmail: invitation.InviteeEmail,
		CreatedAt:    invitation.CreatedAt,
	}
}

func boardSummaries(boards []domain.Board) []dto.BoardSummary {
	items := make([]dto.BoardSummary, 0, len(boards))
	for i := range boards {
		items = append(items, boardSummary(&boards[i], 0, 0))
	}
	return items
}
