package currency

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes currency registry endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a currency HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type currencyResponse struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	DecimalPlaces int32  `json:"decimal_places"`
	Active        bool   `json:"active"`
	IsDefault     bool   `json:"is_default"`
}

// List returns the registered currencies.
func (h *Handler) List(c *fiber.Ctx) error {
	currencies, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]currencyResponse, 0, len(currencies))
	for _, cur := range currencies {
		out = append(out, currencyResponse{
			Code:          cur.Code,
			Name:          cur.Name,
			DecimalPlaces: cur.DecimalPlaces,
			Active:        cur.Active,
			IsDefault:     cur.IsDefault,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"currencies": out})
}
