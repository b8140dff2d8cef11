package http

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
)

//go:embed static/index.html
var indexPage []byte

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Dashboard *handlers.DashboardHandler
	// AuthMiddleware is nil when the dashboard runs unauthenticated.
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(indexPage)
	})

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/stats", cfg.Dashboard.Stats)

	if cfg.AuthMiddleware != nil {
		api.Post("/login", cfg.Dashboard.Login)
		protected := api.Group("", cfg.AuthMiddleware.Handle)
		protected.Post("/save", cfg.Dashboard.Save)
		protected.Post("/save-config", cfg.Dashboard.SaveConfig)
		return
	}
	api.Post("/save", cfg.Dashboard.Save)
	api.Post("/save-config", cfg.Dashboard.SaveConfig)
}
