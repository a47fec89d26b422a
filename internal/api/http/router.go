package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exchange-service/internal/api/http/handlers"
	"github.com/spec-kit/exchange-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Services       *handlers.ServicesHandler
	Exchanges      *handlers.ExchangesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	users := protected.Group("/users")
	users.Get("/me", cfg.Users.Me)
	users.Get("/:id/reputation", cfg.Users.Reputation)
	users.Get("/:id/ratings", cfg.Users.Ratings)

	services := protected.Group("/services")
	services.Get("/", cfg.Services.List)
	services.Post("/", cfg.Services.Create)
	services.Get("/:id", cfg.Services.Get)
	services.Put("/:id", cfg.Services.Update)
	services.Delete("/:id", cfg.Services.Delete)

	exchanges := protected.Group("/exchanges")
	exchanges.Post("/", cfg.Exchanges.Propose)
	exchanges.Get("/", cfg.Exchanges.List)
	exchanges.Get("/:id", cfg.Exchanges.Get)
	exchanges.Post("/:id/confirm", cfg.Exchanges.Confirm)
	exchanges.Post("/:id/start", cfg.Exchanges.Start)
	exchanges.Post("/:id/complete", cfg.Exchanges.Complete)
	exchanges.Post("/:id/cancel", cfg.Exchanges.Cancel)
	exchanges.Post("/:id/messages", cfg.Exchanges.AddMessage)
	exchanges.Get("/:id/messages", cfg.Exchanges.ListMessages)
	exchanges.Post("/:id/ratings", cfg.Exchanges.SubmitRating)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Get("/users", cfg.Users.ListUsers)
}
