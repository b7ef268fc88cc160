package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soko-market/soko_pay/internal/auth"
)

// RegisterAuthRoutes wires registration and token endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", rateLimiter, h.Login)
	r.Post("/auth/refresh", h.Refresh)
}
