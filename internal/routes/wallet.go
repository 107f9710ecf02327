package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/transfer"
	"github.com/payflow/gateway/internal/wallet"
)

// RegisterWalletRoutes wires wallet reads, direct credits and transfers.
// Transfers are additionally gated by the transfer admission policy.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, t *transfer.Handler, authn, transferLimit fiber.Handler) {
	group := r.Group("/wallet", authn)
	group.Get("/balance", h.Balance)
	group.Post("/transfer", transferLimit, t.Transfer)
	group.Post("/add-funds", h.AddFunds)
}
