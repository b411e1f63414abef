package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openintel/achboard/internal/api/http/handlers"
	"github.com/openintel/achboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Boards         *handlers.BoardsHandler
	Elements       *handlers.ElementsHandler
	Teams          *handlers.TeamsHandler
	Profiles       *handlers.ProfilesHandler
	Site           *handlers.SiteHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Auth.ChangePassword)

	// Public reads load the principal when a token is present so board
	// permissions can distinguish registered callers from anonymous ones.
	app.Get("/", cfg.AuthMiddleware.Optional, cfg.Site.Overview)
	app.Get("/robots.txt", cfg.Site.Robots)
	app.Get("/sitemap.xml", cfg.Site.Sitemap)
	app.Post("/news", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Site.PublishNews)

	boards := app.Group("/boards")
	boards.Get("/", cfg.AuthMiddleware.Optional, cfg.Boards.List)
	boards.Get("/search", cfg.AuthMiddleware.Optional, cfg.Boards.Search)
	boards.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Boards.Create)
	boards.Get("/:id", cfg.AuthMiddleware.Optional, cfg.Boards.Get)
	boards.Put("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Boards.Update)
	boards.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Boards.Delete)
	boards.Get("/:id/history", cfg.AuthMiddleware.Optional, cfg.Boards.History)
	boards.Get("/:id/permissions", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Boards.GetPermissions)
	boards.Put("/:id/permissions", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Boards.UpdatePermissions)
	boards.Post("/:id/hypotheses", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.AddHypothesis)
	boards.Post("/:id/evidence", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.AddEvidence)
	boards.Post("/:id/evidence/:evidenceID/evaluate", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Boards.Evaluate)

	app.Put("/hypotheses/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.EditHypothesis)
	app.Delete("/hypotheses/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.RemoveHypothesis)
	app.Get("/evidence/:id", cfg.AuthMiddleware.Optional, cfg.Elements.GetEvidence)
	app.Put("/evidence/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.EditEvidence)
	app.Delete("/evidence/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.RemoveEvidence)
	app.Post("/evidence/:id/sources", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.AddSource)
	app.Post("/sources/:id/tags/toggle", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Elements.TagSource)
	app.Get("/tags", cfg.Elements.ListTags)
	app.Post("/tags", cfg.AuthMiddleware.Handle, auth.RequireStaff(), cfg.Elements.CreateTag)

	teams := app.Group("/teams")
	teams.Get("/", cfg.AuthMiddleware.Optional, cfg.Teams.List)
	teams.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Teams.Create)
	teams.Get("/:id", cfg.AuthMiddleware.Optional, cfg.Teams.Get)
	teams.Put("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Teams.Update)
	teams.Post("/:id/join", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Teams.Join)
	teams.Post("/:id/leave", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Teams.Leave)
	teams.Post("/:id/invitations", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Teams.Invite)
	teams.Delete("/:id/members/:userID", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Teams.RevokeMember)
	app.Post("/team-requests/:id/respond", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Teams.Respond)

	app.Get("/users/:id", cfg.AuthMiddleware.Optional, cfg.Profiles.Get)
	app.Get("/profile", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Profiles.Me)
	app.Put("/settings", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Profiles.UpdateSettings)
	app.Get("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Profiles.ListNotifications)
	app.Post("/notifications/clear", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Profiles.ClearNotifications)
	app.Post("/invitations", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Profiles.Invite)
	app.Get("/invitations", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Profiles.ListInvitations)
}
