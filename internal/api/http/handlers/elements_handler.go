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

// ElementsHandler manages hypothesis, evidence, source, and tag endpoints.
type ElementsHandler struct {
	service *service.ElementService
}

// NewElementsHandler constructs handler.
func NewElementsHandler(elementService *service.ElementService) *ElementsHandler {
	return &ElementsHandler{service: elementService}
}

// AddHypothesis POST /boards/:id/hypotheses.
func (h *ElementsHandler) AddHypothesis(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddHypothesisRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hypothesis, err := h.service.AddHypothesis(c.Context(), principal.User, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": hypothesisResponse(hypothesis)})
}

// EditHypothesis PUT /hypotheses/:id.
func (h *ElementsHandler) EditHypothesis(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EditHypothesisRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hypothesis, err := h.service.EditHypothesis(c.Context(), principal.User, c.Params("id"), req.Text, req.Removed)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": hypothesisResponse(hypothesis)})
}

// RemoveHypothesis DELETE /hypotheses/:id.
func (h *ElementsHandler) RemoveHypothesis(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.RemoveHypothesis(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": true}})
}

// AddEvidence POST /boards/:id/evidence.
func (h *ElementsHandler) AddEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddEvidenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	evidence, err := h.service.AddEvidence(c.Context(), principal.User, c.Params("id"), service.EvidenceInput{
		Desc:          req.Description,
		EventDate:     parseDate(req.EventDate),
		SourceURL:     req.SourceURL,
		SourceDate:    parseDate(req.SourceDate),
		Corroborating: req.Corroborating,
		NoSource:      req.NoSource,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": evidenceResponse(evidence)})
}

// EditEvidence PUT /evidence/:id.
func (h *ElementsHandler) EditEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EditEvidenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	evidence, err := h.service.EditEvidence(c.Context(), principal.User, c.Params("id"), req.Description, parseDate(req.EventDate), req.Removed)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": evidenceResponse(evidence)})
}

// RemoveEvidence DELETE /evidence/:id.
func (h *ElementsHandler) RemoveEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.RemoveEvidence(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": true}})
}

// GetEvidence GET /evidence/:id.
func (h *ElementsHandler) GetEvidence(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	detail, err := h.service.GetEvidence(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := evidenceResponse(detail.Evidence)
	for _, src := range detail.Sources {
		source := dto.SourceResponse{
			ID:            src.ID,
			URL:           src.URL,
			Title:         src.Title,
			Description:   src.Description,
			SourceDate:    src.SourceDate,
			UploaderID:    src.UploaderID,
			Corroborating: src.Corroborating,
		}
		for _, tagging := range detail.Taggings[src.ID] {
			source.Tags = append(source.Tags, tagging.TagID)
		}
		resp.Sources = append(resp.Sources, source)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// AddSource POST /evidence/:id/sources.
func (h *ElementsHandler) AddSource(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	source, err := h.service.AddSource(c.Context(), principal.User, c.Params("id"), req.URL, parseDate(req.SourceDate), req.Corroborating)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SourceResponse{
		ID:            source.ID,
		URL:           source.URL,
		Title:         source.Title,
		Description:   source.Description,
		SourceDate:    source.SourceDate,
		UploaderID:    source.UploaderID,
		Corroborating: source.Corroborating,
	}})
}

// TagSource POST /sources/:id/tags/toggle.
func (h *ElementsHandler) TagSource(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TagSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	added, err := h.service.TagSource(c.Context(), principal.User, c.Params("id"), req.Tag)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"tagged": added}})
}

// CreateTag POST /tags.
func (h *ElementsHandler) CreateTag(c *fiber.Ctx) error {
	var req dto.CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tag, err := h.service.CreateTag(c.Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TagResponse{Name: tag.Name, Description: tag.Desc}})
}

// ListTags GET /tags.
func (h *ElementsHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TagResponse, 0, len(tags))
	for _, tag := range tags {
		items = append(items, dto.TagResponse{Name: tag.Name, Description: tag.Desc})
	}
	return c.JSON(fiber.Map{"data": items})
}

func hypothesisResponse(hypothesis *domain.Hypothesis) dto.HypothesisResponse {
	return dto.HypothesisResponse{
		ID:        hypothesis.ID,
		Text:      hypothesis.Text,
		CreatorID: hypothesis.CreatorID,
	}
}

func evidenceResponse(evidence *domain.Evidence) dto.EvidenceResponse {
	resp := dto.EvidenceResponse{
		ID:          evidence.ID,
		Description: evidence.Desc,
		CreatorID:   evidence.CreatorID,
		Sources:     []dto.SourceResponse{},
	}
	if evidence.EventDate != nil {
		formatted := evidence.EventDate.Format("2006-01-02")
		resp.EventDate = &formatted
	}
	return resp
}
