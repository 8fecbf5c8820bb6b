package routes

import (
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/config"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/handlers"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles every route handler the server wires up. Migration is
// nil in local mode and its routes are skipped.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Projects   *handlers.ProjectHandler
	Activities *handlers.ActivityHandler
	Resources  *handlers.ResourceHandler
	Badges     *handlers.BadgeHandler
	Settings   *handlers.SettingsHandler
	Migration  *handlers.MigrationHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)

	// Everything below requires a bearer token in remote mode. Local mode
	// has no tokens; the storage facade enforces the signed-in-user rule.
	protected := api.Group("/")
	if cfg.Remote() {
		protected.Use(middleware.JWTProtected(cfg))
	}

	protected.Post("/auth/logout", h.Auth.Logout)
	protected.Get("/auth/me", h.Auth.Me)

	protected.Post("/projects", h.Projects.Save)
	protected.Get("/projects", h.Projects.List)
	protected.Delete("/projects/:id", h.Projects.Delete)

	protected.Post("/activities", h.Activities.Save)
	protected.Get("/activities", h.Activities.List)

	protected.Post("/resources", h.Resources.Save)
	protected.Get("/resources", h.Resources.List)

	protected.Post("/badges", h.Badges.Save)
	protected.Get("/badges", h.Badges.List)
	protected.Post("/xp", h.Badges.AddXP)

	protected.Get("/settings", h.Settings.Get)
	protected.Put("/settings", h.Settings.Save)

	if h.Migration != nil {
		protected.Get("/migration/status", h.Migration.Status)
		protected.Post("/migration/run", h.Migration.Run)
		protected.Post("/migration/clear-local", h.Migration.ClearLocal)
	}
}
