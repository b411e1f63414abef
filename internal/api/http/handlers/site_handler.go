package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openintel/achboard/internal/api/dto"
	"github.com/openintel/achboard/internal/auth"
	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/service"
	apperrors "github.com/openintel/achboard/pkg/util"
)

const sitemapBoardsMax = 500

// SiteHandler serves the front page, news, and crawler endpoints.
type SiteHandler struct {
	service *service.SiteService
	site    config.SiteConfig
}

// NewSiteHandler constructs handler.
func NewSiteHandler(siteService *service.SiteService, site config.SiteConfig) *SiteHandler {
	return &SiteHandler{service: siteService, site: site}
}

// Overview GET /overview.
func (h *SiteHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.Context(), actorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

// PublishNews POST /news.
func (h *SiteHandler) PublishNews(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.PublishNewsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content is required", nil)
	}
	pubDate := time.Now()
	if parsed := parseDate(req.PubDate); parsed != nil {
		pubDate = *parsed
	}
	news, err := h.service.PublishNews(c.Context(), principal.User, strings.TrimSpace(req.Content), pubDate)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewsResponse{
		ID:       news.ID,
		Content:  news.Content,
		PubDate:  news.PubDate,
		AuthorID: news.AuthorID,
	}})
}

// Robots GET /robots.txt. Private instances opt out of crawling entirely.
func (h *SiteHandler) Robots(c *fiber.Ctx) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if h.site.AccountRequired {
		b.WriteString("Disallow: /\n")
	} else {
		b.WriteString("Disallow:\n")
		b.WriteString("Sitemap: https://" + h.site.Domain + "/sitemap.xml\n")
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(b.String())
}

// Sitemap GET /sitemap.xml.
func (h *SiteHandler) Sitemap(c *fiber.Ctx) error {
	boards, err := h.service.ReadableBoards(c.Context(), sitemapBoardsMax)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	b.WriteString("  <url><loc>https://" + h.site.Domain + "/</loc></url>\n")
	for _, board := range boards {
		b.WriteString("  <url><loc>https://" + h.site.Domain + "/boards/" + board.Slug + "</loc></url>\n")
	}
	b.WriteString("</urlset>\n")
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.SendString(b.String())
}
