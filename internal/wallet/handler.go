package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soko-market/soko_pay/internal/currency"
	"github.com/soko-market/soko_pay/internal/identity"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type snapshotResponse struct {
	WalletID string    `json:"wallet_id"`
	UserID   string    `json:"user_id"`
	Currency string    `json:"currency"`
	Balance  string    `json:"balance"`
	AsOf     time.Time `json:"as_of"`
}

// Get returns the user's wallet snapshot, provisioning the wallet on first
// access.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID := c.Params("userId")
	callerID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	if callerID != userID && role != identity.RoleAdmin {
		return fiber.NewError(http.StatusForbidden, "not wallet owner")
	}

	w, err := h.service.GetOrCreate(c.UserContext(), userID, c.Query("currency_code"))
	if err != nil {
		if errors.Is(err, currency.ErrUnavailable) {
			return fiber.NewError(http.StatusUnprocessableEntity, "currency unavailable")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	snap, err := h.service.Snapshot(c.UserContext(), w)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(snapshotResponse{
		WalletID: snap.WalletID,
		UserID:   snap.UserID,
		Currency: snap.Currency,
		Balance:  snap.Balance.String(),
		AsOf:     snap.AsOf,
	})
}
