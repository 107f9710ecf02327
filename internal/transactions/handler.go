package transactions

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/middleware"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Handler exposes transaction history endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds a transaction history handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type counterparty struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type historyItem struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Amount       float64      `json:"amount"`
	Currency     string       `json:"currency"`
	Status       string       `json:"status"`
	Description  string       `json:"description"`
	CreatedAt    time.Time    `json:"created_at"`
	Counterparty counterparty `json:"counterparty"`
}

// History lists the caller's transactions, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	filter := Filter{
		Limit:  c.QueryInt("limit", defaultLimit),
		Offset: c.QueryInt("offset", 0),
		Type:   c.Query("type"),
	}
	if filter.Limit <= 0 || filter.Limit > maxLimit {
		filter.Limit = defaultLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	list, total, err := h.repo.ListByUser(c.UserContext(), userID, filter)
	if err != nil {
		return err
	}

	items := make([]historyItem, 0, len(list))
	for _, tx := range list {
		item := historyItem{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Currency:    tx.Currency,
			Status:      tx.Status,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt,
		}
		if tx.SenderID == userID {
			item.Type = "sent"
			item.Counterparty = counterparty{Email: tx.ReceiverEmail, Name: tx.ReceiverName}
		} else {
			item.Type = "received"
			item.Counterparty = counterparty{Email: tx.SenderEmail, Name: tx.SenderName}
		}
		items = append(items, item)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transactions": items,
		"pagination": fiber.Map{
			"total":  total,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		},
	})
}

// Get returns one transaction the caller participated in.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	tx, err := h.repo.Get(c.UserContext(), c.Params("transactionId"), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.New(http.StatusNotFound, httperr.CodeTxNotFound, "Transaction not found or you do not have access")
		}
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"id": tx.ID,
		"sender": fiber.Map{
			"id":    tx.SenderID,
			"email": tx.SenderEmail,
			"name":  tx.SenderName,
		},
		"receiver": fiber.Map{
			"id":    tx.ReceiverID,
			"email": tx.ReceiverEmail,
			"name":  tx.ReceiverName,
		},
		"amount":       tx.Amount,
		"currency":     tx.Currency,
		"status":       tx.Status,
		"description":  tx.Description,
		"created_at":   tx.CreatedAt,
		"completed_at": tx.CompletedAt,
	})
}

// Stats summarizes the caller's completed transfers.
func (h *Handler) Stats(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	stats, err := h.repo.Stats(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"sent": fiber.Map{
			"count":        stats.SentCount,
			"total_amount": stats.SentAmount,
		},
		"received": fiber.Map{
			"count":        stats.ReceivedCount,
			"total_amount": stats.ReceivedAmount,
		},
	})
}
