package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-progress-api/internal/config"
	"github.com/noah-isme/gema-progress-api/internal/handler"
	"github.com/noah-isme/gema-progress-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	WatchHandler    *handler.WatchHandler
	ProgressHandler *handler.ProgressHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	progress := app.Group("/api/v2/progress", jwtMiddleware)

	if deps.WatchHandler != nil {
		deps.WatchHandler.Register(progress)
	}

	if deps.ProgressHandler != nil {
		deps.ProgressHandler.Register(progress)
	}
}
