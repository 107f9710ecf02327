package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/identity"
)

// RegisterUserRoutes wires profile and recipient-search endpoints.
func RegisterUserRoutes(r fiber.Router, h *identity.Handler, authn fiber.Handler) {
	group := r.Group("/user", authn)
	group.Get("/profile", h.Profile)
	group.Get("/search", h.Search)
}
