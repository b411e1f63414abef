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

// TeamsHandler manages team endpoints.
type TeamsHandler struct {
	service *service.TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teamService *service.TeamService) *TeamsHandler {
	return &TeamsHandler{service: teamService}
}

// Create POST /teams.
func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TeamInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.Create(c.Context(), principal.User, service.TeamInput{
		Name:               req.Name,
		Desc:               req.Description,
		Public:             req.Public,
		InvitationRequired: req.InvitationRequired,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(service.TeamView{Team: *team, MemberCount: 1, IsMember: true, IsOwner: true})})
}

// Update PUT /teams/:id.
func (h *TeamsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TeamInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.TeamInput{
		Name:               req.Name,
		Desc:               req.Description,
		Public:             req.Public,
		InvitationRequired: req.InvitationRequired,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(service.TeamView{Team: *team, IsOwner: true})})
}

// List GET /teams.
func (h *TeamsHandler) List(c *fiber.Ctx) error {
	views, err := h.service.List(c.Context(), actorFromContext(c))
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(views))
	for _, view := range views {
		items = append(items, teamResponse(view))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /teams/:id.
func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.Context(), actorFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.TeamDetailResponse{
		TeamResponse: teamResponse(detail.TeamView),
		MemberIDs:    detail.MemberIDs,
	}
	for _, request := range detail.PendingRequests {
		resp.PendingRequests = append(resp.PendingRequests, teamRequestResponse(&request))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Join POST /teams/:id/join.
func (h *TeamsHandler) Join(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	joined, err := h.service.Join(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"joined": joined, "pending": !joined}})
}

// Leave POST /teams/:id/leave.
func (h *TeamsHandler) Leave(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Leave(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"left": true}})
}

// RevokeMember DELETE /teams/:id/members/:userID.
func (h *TeamsHandler) RevokeMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.RevokeMember(c.Context(), principal.User, c.Params("id"), c.Params("userID")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"revoked": true}})
}

// Invite POST /teams/:id/invitations.
func (h *TeamsHandler) Invite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.InviteMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.service.Invite(c.Context(), principal.User, c.Params("id"), req.Username)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamRequestResponse(request)})
}

// Respond POST /team-requests/:id/respond.
func (h *TeamsHandler) Respond(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.RespondToRequest(c.Context(), principal.User, c.Params("id"), req.Accept); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"accepted": req.Accept}})
}

func teamResponse(view service.TeamView) dto.TeamResponse {
	return dto.TeamResponse{
		ID:                 view.Team.ID,
		Name:               view.Team.Name,
		Description:        view.Team.Desc,
		OwnerID:            view.Team.OwnerID,
		Public:             view.Team.Public,
		InvitationRequired: view.Team.InvitationRequired,
		MemberCount:        view.MemberCount,
		IsMember:           view.IsMember,
		IsOwner:            view.IsOwner,
		Pending:            view.Pending,
		CreatedAt:          view.Team.CreatedAt,
	}
}

func teamRequestResponse(request *domain.TeamRequest) dto.TeamRequestResponse {
	return dto.TeamRequestResponse{
		ID:        request.ID,
		TeamID:    request.TeamID,
		InviterID: request.InviterID,
		InviteeID: request.InviteeID,
		CreatedAt: request.CreatedAt,
	}
}
