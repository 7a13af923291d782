package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/quote-service/internal/api/http/handlers"
	"github.com/spec-kit/quote-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Staff          *handlers.StaffHandler
	Quotes         *handlers.QuotesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/staff/login", cfg.Staff.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireStaff())

	tickets := api.Group("/tickets/:ticketId")
	tickets.Post("/quotes/generate", cfg.Quotes.Generate)
	tickets.Post("/quotes", cfg.Quotes.CreateManual)
	tickets.Patch("/quotes", cfg.Quotes.Update)
	tickets.Get("/quotes", cfg.Quotes.List)
	tickets.Get("/quotes/current", cfg.Quotes.GetCurrent)

	quotes := api.Group("/quotes/:quoteId")
	quotes.Post("/approval", cfg.Quotes.SubmitForApproval)
	quotes.Get("/revisions", cfg.Quotes.ListRevisions)
}
