package ledger

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/soko-market/soko_pay/internal/currency"
	"github.com/soko-market/soko_pay/internal/identity"
	"github.com/soko-market/soko_pay/internal/keylock"
	"github.com/soko-market/soko_pay/internal/wallet"
)

// Handler exposes the ledger HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type entryRequest struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	Reference    string `json:"reference"`
	Description  string `json:"description"`
}

type transferRequest struct {
	TargetUserID string `json:"target_user_id"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	Reference    string `json:"reference"`
	Description  string `json:"description"`
}

type snapshotResponse struct {
	WalletID string    `json:"wallet_id"`
	UserID   string    `json:"user_id"`
	Currency string    `json:"currency"`
	Balance  string    `json:"balance"`
	AsOf     time.Time `json:"as_of"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	Reference     string    `json:"reference,omitempty"`
	Description   string    `json:"description,omitempty"`
	TransferID    string    `json:"transfer_id,omitempty"`
	Counterparty  string    `json:"counterparty,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Deposit credits external funds into the user's wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.postEntry(c, h.service.Deposit)
}

// CreditSale credits sale proceeds into the user's wallet.
func (h *Handler) CreditSale(c *fiber.Ctx) error {
	return h.postEntry(c, h.service.CreditSale)
}

func (h *Handler) postEntry(c *fiber.Ctx, post func(ctx context.Context, in EntryInput) (Receipt, error)) error {
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}

	receipt, err := post(c.UserContext(), EntryInput{
		UserID:      c.Params("userId"),
		Amount:      amount,
		Currency:    req.CurrencyCode,
		Reference:   req.Reference,
		Description: req.Description,
	})
	if err != nil {
		return httpError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"wallet":      snapshotJSON(receipt.Wallet),
		"transaction": transactionJSON(receipt.Entry),
	})
}

// Transfer moves funds from the path user to the target user. The caller must
// be the source wallet's owner or an admin.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	sourceUserID := c.Params("userId")
	callerID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	if callerID != sourceUserID && role != identity.RoleAdmin {
		return fiber.NewError(http.StatusForbidden, "not owner of source wallet")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}

	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		SourceUserID: sourceUserID,
		TargetUserID: req.TargetUserID,
		Amount:       amount,
		Currency:     req.CurrencyCode,
		Reference:    req.Reference,
		Description:  req.Description,
	})
	if err != nil {
		return httpError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transfer_reference": res.TransferID,
		"amount":             res.Amount.String(),
		"currency_code":      res.Currency,
		"source_wallet":      snapshotJSON(res.Source),
		"target_wallet":      snapshotJSON(res.Target),
		"completed_at":       res.CompletedAt,
	})
}

// History returns the paginated transaction history for the user's wallet.
func (h *Handler) History(c *fiber.Ctx) error {
	userID := c.Params("userId")
	callerID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	if callerID != userID && role != identity.RoleAdmin {
		return fiber.NewError(http.StatusForbidden, "not wallet owner")
	}

	page, err := h.service.History(c.UserContext(), userID,
		c.Query("currency_code"), c.QueryInt("page", 1), c.QueryInt("size", defaultPageSize))
	if err != nil {
		return httpError(err)
	}

	items := make([]transactionResponse, 0, len(page.Items))
	for _, tx := range page.Items {
		items = append(items, transactionJSON(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transactions": items,
		"page":         page.Page,
		"size":         page.Size,
		"total":        page.Total,
	})
}

func snapshotJSON(s wallet.Snapshot) snapshotResponse {
	return snapshotResponse{
		WalletID: s.WalletID,
		UserID:   s.UserID,
		Currency: s.Currency,
		Balance:  s.Balance.String(),
		AsOf:     s.AsOf,
	}
}

func transactionJSON(tx Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Type:          tx.Type.String(),
		Amount:        tx.Amount.String(),
		Currency:      tx.Currency,
		BalanceBefore: tx.BalanceBefore.String(),
		BalanceAfter:  tx.BalanceAfter.String(),
		Reference:     tx.Reference,
		Description:   tx.Description,
		TransferID:    tx.TransferGroup,
		Counterparty:  tx.Counterparty,
		CreatedAt:     tx.CreatedAt,
	}
}

func httpError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, ErrCurrencyMismatch):
		return fiber.NewError(http.StatusConflict, "currency mismatch")
	case errors.Is(err, ErrSameWalletTransfer):
		return fiber.NewError(http.StatusUnprocessableEntity, "source and target wallets are the same")
	case errors.Is(err, currency.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	case errors.Is(err, currency.ErrUnavailable):
		return fiber.NewError(http.StatusUnprocessableEntity, "currency unavailable")
	case errors.Is(err, keylock.ErrTimeout):
		return fiber.NewError(http.StatusServiceUnavailable, "wallet busy, retry")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
