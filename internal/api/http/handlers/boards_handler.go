package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openintel/achboard/internal/api/dto"
	"github.com/openintel/achboard/internal/auth"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/service"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// BoardsHandler manages board endpoints.
type BoardsHandler struct {
	service *service.BoardService
}

// NewBoardsHandler constructs handler.
func NewBoardsHandler(boardService *service.BoardService) *BoardsHandler {
	return &BoardsHandler{service: boardService}
}

// Create POST /boards.
func (h *BoardsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	board, err := h.service.Create(c.Context(), principal.User, service.BoardCreateInput{
		Title:      req.Title,
		Desc:       req.Description,
		Hypotheses: req.Hypotheses,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": boardSummary(board, 0, 0)})
}

// List GET /boards.
func (h *BoardsHandler) List(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	summaries, total, err := h.service.List(c.Context(), actor, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.BoardSummary, 0, len(summaries))
	for i := range summaries {
		items = append(items, boardSummary(&summaries[i].Board, summaries[i].ContributorCount, summaries[i].EvaluatorCount))
	}
	return c.JSON(fiber.Map{"data": dto.BoardListResponse{Boards: items, Total: total}})
}

// Search GET /boards/search.
func (h *BoardsHandler) Search(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	boards, err := h.service.Search(c.Context(), actor, c.Query("query"))
	if err != nil {
		return err
	}
	items := make([]dto.BoardSummary, 0, len(boards))
	for i := range boards {
		items = append(items, boardSummary(&boards[i], 0, 0))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /boards/:id.
func (h *BoardsHandler) Get(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	detail, err := h.service.Detail(c.Context(), actor, c.Params("id"), c.Query("vote_type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": boardDetailResponse(detail)})
}

// Update PUT /boards/:id.
func (h *BoardsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	board, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.BoardUpdateInput{
		Title:   req.Title,
		Desc:    req.Description,
		Removed: req.Removed,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": boardSummary(board, 0, 0)})
}

// Delete DELETE /boards/:id.
func (h *BoardsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Remove(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": true}})
}

// History GET /boards/:id/history.
func (h *BoardsHandler) History(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	changes, err := h.service.History(c.Context(), actor, c.Params("id"), parseInt(c.Query("limit"), 100))
	if err != nil {
		return err
	}
	items := make([]dto.FieldChangeResponse, 0, len(changes))
	for _, change := range changes {
		items = append(items, dto.FieldChangeResponse{
			ID:         change.ID,
			EntityKind: string(change.EntityKind),
			EntityID:   change.EntityID,
			Field:      change.Field,
			OldValue:   change.OldValue,
			NewValue:   change.NewValue,
			ChangedBy:  change.ChangedByID,
			CreatedAt:  change.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetPermissions GET /boards/:id/permissions.
func (h *BoardsHandler) GetPermissions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	perms, err := h.service.GetPermissions(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permissionsResponse(perms)})
}

// UpdatePermissions PUT /boards/:id/permissions.
func (h *BoardsHandler) UpdatePermissions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdatePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated := &domain.BoardPermissions{
		ReadBoard:       domain.AuthLevel(req.ReadBoard),
		ReadComments:    domain.AuthLevel(req.ReadComments),
		AddComments:     domain.AuthLevel(req.AddComments),
		AddElements:     domain.AuthLevel(req.AddElements),
		EditElements:    domain.AuthLevel(req.EditElements),
		EditBoard:       domain.AuthLevel(req.EditBoard),
		CollaboratorIDs: req.Collaborators,
		TeamIDs:         req.Teams,
	}
	perms, err := h.service.UpdatePermissions(c.Context(), principal.User, c.Params("id"), updated)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permissionsResponse(perms)})
}

// Evaluate POST /boards/:id/evidence/:evidenceID/evaluate.
func (h *BoardsHandler) Evaluate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Ratings) == 0 {
		return apperrors.NewValidationError("ratings required", nil)
	}
	inputs := make([]service.EvaluationInput, 0, len(req.Ratings))
	for _, rating := range req.Ratings {
		input := service.EvaluationInput{HypothesisID: rating.HypothesisID}
		if rating.Value != nil {
			vote := domain.Vote(*rating.Value)
			input.Value = &vote
		}
		inputs = append(inputs, input)
	}
	if err := h.service.Evaluate(c.Context(), principal.User, c.Params("id"), c.Params("evidenceID"), inputs); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"recorded": true}})
}

func actorFromContext(c *fiber.Ctx) *domain.User {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.User
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil
	}
	return &t
}

func boardSummary(board *domain.Board, contributors, evaluators int) dto.BoardSummary {
	return dto.BoardSummary{
		ID:               board.ID,
		Title:            board.Title,
		Slug:             board.Slug,
		Description:      board.Desc,
		CreatorID:        board.CreatorID,
		PubDate:          board.PubDate,
		Removed:          board.Removed,
		ContributorCount: contributors,
		EvaluatorCount:   evaluators,
	}
}

func boardDetailResponse(detail *service.BoardDetail) dto.BoardDetailResponse {
	resp := dto.BoardDetailResponse{
		Board:            boardSummary(detail.Board, detail.ContributorCount, detail.EvaluatorCount),
		Permissions:      make(map[string]bool, len(detail.Permissions)),
		VoteType:         detail.VoteMode,
		Hypotheses:       make([]dto.HypothesisResponse, 0, len(detail.Hypotheses)),
		Evidence:         make([]dto.EvidenceResponse, 0, len(detail.Evidence)),
		Cells:            make([]dto.CellResponse, 0, len(detail.Cells)),
		ContributorCount: detail.ContributorCount,
		EvaluatorCount:   detail.EvaluatorCount,
	}
	for perm, granted := range detail.Permissions {
		resp.Permissions[string(perm)] = granted
	}
	for _, h := range detail.Hypotheses {
		resp.Hypotheses = append(resp.Hypotheses, dto.HypothesisResponse{
			ID:            h.Hypothesis.ID,
			Text:          h.Hypothesis.Text,
			CreatorID:     h.Hypothesis.CreatorID,
			Inconsistency: h.Key.Inconsistency,
			Consistency:   h.Key.Consistency,
		})
	}
	for _, e := range detail.Evidence {
		evidence := dto.EvidenceResponse{
			ID:            e.Evidence.ID,
			Description:   e.Evidence.Desc,
			CreatorID:     e.Evidence.CreatorID,
			Diagnosticity: e.Key.Diagnosticity,
			Sources:       make([]dto.SourceResponse, 0, len(e.Sources)),
		}
		if e.Evidence.EventDate != nil {
			formatted := e.Evidence.EventDate.Format("2006-01-02")
			evidence.EventDate = &formatted
		}
		for _, src := range e.Sources {
			source := dto.SourceResponse{
				ID:            src.ID,
				URL:           src.URL,
				Title:         src.Title,
				Description:   src.Description,
				SourceDate:    src.SourceDate,
				UploaderID:    src.UploaderID,
				Corroborating: src.Corroborating,
			}
			for _, tagging := range e.Taggings[src.ID] {
				source.Tags = append(source.Tags, tagging.TagID)
			}
			evidence.Sources = append(evidence.Sources, source)
		}
		resp.Evidence = append(resp.Evidence, evidence)
	}
	for _, cell := range detail.Cells {
		item := dto.CellResponse{
			HypothesisID: cell.HypothesisID,
			EvidenceID:   cell.EvidenceID,
			Disagreement: cell.Disagreement,
		}
		if cell.HasConsensus {
			consensus := int(cell.Consensus)
			item.Consensus = &consensus
		}
		if cell.UserVote != nil {
			vote := int(*cell.UserVote)
			item.UserVote = &vote
		}
		resp.Cells = append(resp.Cells, item)
	}
	return resp
}

func permissionsResponse(perms *domain.BoardPermissions) dto.PermissionsResponse {
	collaborators := perms.CollaboratorIDs
	if collaborators == nil {
		collaborators = []string{}
	}
	teams := perms.TeamIDs
	if teams == nil {
		teams = []string{}
	}
	return dto.PermissionsResponse{
		ReadBoard:     int(perms.ReadBoard),
		ReadComments:  int(perms.ReadComments),
		AddComments:   int(perms.AddComments),
		AddElements:   int(perms.AddElements),
		EditElements:  int(perms.EditElements),
		EditBoard:     int(perms.EditBoard),
		Collaborators: collaborators,
		Teams:         teams,
	}
}
