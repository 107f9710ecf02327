package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/middleware"
	"github.com/payflow/gateway/internal/wallet"
)

// Handler exposes profile and recipient-search endpoints.
type Handler struct {
	service *Service
	wallets *wallet.Service
}

// NewHandler builds the identity HTTP handler.
func NewHandler(service *Service, wallets *wallet.Service) *Handler {
	return &Handler{service: service, wallets: wallets}
}

// Profile returns the caller's account and wallet details. The wallet read is
// authoritative, not cached.
func (h *Handler) Profile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	user, err := h.service.Profile(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.New(http.StatusNotFound, httperr.CodeUserNotFound, "User not found")
		}
		return err
	}

	resp := fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"phone":      user.Phone,
		"created_at": user.CreatedAt,
	}

	if w, err := h.wallets.Get(c.UserContext(), userID); err == nil {
		resp["wallet"] = fiber.Map{
			"balance":  w.Balance,
			"currency": w.Currency,
		}
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// Search lists active users matching the email query, for recipient selection.
// Unlike the transfer path, this endpoint does reveal which accounts exist.
func (h *Handler) Search(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	query := c.Query("email")
	if len(query) < 3 {
		return httperr.New(http.StatusBadRequest, "INVALID_QUERY", "Email query must be at least 3 characters")
	}

	users, err := h.service.Search(c.UserContext(), query, userID)
	if err != nil {
		return err
	}

	results := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		results = append(results, fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"users": results})
}
