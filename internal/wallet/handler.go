package wallet

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/middleware"
)

var validate = validator.New()

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance returns the caller's balance, served from cache when fresh.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	result, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.New(http.StatusNotFound, httperr.CodeWalletNotFound, "Wallet not found for this user")
		}
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":  result.Balance,
		"currency": result.Currency,
		"cached":   result.Cached,
	})
}

type addFundsRequest struct {
	Amount float64 `json:"amount" validate:"required,gte=1,lte=10000"`
}

// AddFunds credits the caller's wallet directly. Demo path; it is the one
// place the gateway itself mutates a balance, so the cache entry is dropped
// in the same operation.
func (h *Handler) AddFunds(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	var req addFundsRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Validation("Invalid amount")
	}
	if err := validate.Struct(req); err != nil {
		return httperr.Validation("Invalid amount")
	}

	w, err := h.service.AddFunds(c.UserContext(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.New(http.StatusNotFound, httperr.CodeWalletNotFound, "Wallet not found")
		}
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":     "Funds added successfully",
		"new_balance": w.Balance,
	})
}
