package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/soko-market/soko_pay/internal/identity"
)

// Handler exposes registration and token endpoints.
type Handler struct {
	identity *identity.Service
	tokens   *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(identitySvc *identity.Service, tokens *Service) *Handler {
	return &Handler{identity: identitySvc, tokens: tokens}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new customer account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.identity.Register(c.UserContext(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id":    user.ID,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	})
}

// Login authenticates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.identity.Authenticate(c.UserContext(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}

	pair, err := h.tokens.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(pair)
}

// Refresh exchanges a refresh token for a new access token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	access, expiresIn, err := h.tokens.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"access_token": access,
		"expires_in":   expiresIn,
	})
}
