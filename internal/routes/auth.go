package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. Login and register sit
// behind the strict auth admission policy; refresh and logout do not.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, authLimit fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", authLimit, h.Register)
	group.Post("/login", authLimit, h.Login)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", h.Logout)
}
