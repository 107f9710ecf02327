package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/transactions"
)

// RegisterTransactionRoutes wires transaction history endpoints. The stats
// route must register before the parameterized one.
func RegisterTransactionRoutes(r fiber.Router, h *transactions.Handler, authn fiber.Handler) {
	group := r.Group("/transactions", authn)
	group.Get("/history", h.History)
	group.Get("/stats/summary", h.Stats)
	group.Get("/:transactionId", h.Get)
}
