package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cassianoaxe/endurancy-support/internal/api/http/handlers"
	"github.com/cassianoaxe/endurancy-support/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Suggestions    *handlers.SuggestionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/history", auth.RequireStaffLevel(), cfg.Tickets.ListHistory)

	tickets.Get("/:id/suggestions", auth.RequireStaffLevel(), cfg.Suggestions.GetSuggestions)
	tickets.Post("/:id/suggestions/apply", auth.RequireStaffLevel(), cfg.Suggestions.ApplySuggestion)
}
