package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soko-market/soko_pay/internal/currency"
)

// RegisterCurrencyRoutes wires the currency registry endpoint.
func RegisterCurrencyRoutes(r fiber.Router, h *currency.Handler) {
	r.Get("/currencies", h.List)
}
