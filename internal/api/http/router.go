package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/parking-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Lots           *handlers.LotsHandler
	Reservations   *handlers.ReservationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	// Metrics is optional; /metrics is only mounted when set.
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	authenticated := app.Group("", cfg.AuthMiddleware.Handle)

	lots := authenticated.Group("/lots")
	lots.Get("/", cfg.Lots.List)
	lots.Get("/:id", cfg.Lots.Get)
	lots.Post("/:id/reservations", auth.RequireUser(), cfg.Lots.Reserve)

	authenticated.Post("/reservations/:id/release", auth.RequireUser(), cfg.Reservations.Release)

	me := authenticated.Group("/me")
	me.Get("/dashboard", cfg.Reservations.Dashboard)
	me.Get("/reservations", cfg.Reservations.Mine)

	admin := authenticated.Group("/admin", auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Post("/lots", cfg.Admin.CreateLot)
	admin.Put("/lots/:id", cfg.Admin.UpdateLot)
	admin.Patch("/lots/:id/capacity", cfg.Admin.ResizeLot)
	admin.Delete("/lots/:id", cfg.Admin.DeleteLot)
	admin.Get("/lots/:id/details", cfg.Admin.LotDetails)
}
