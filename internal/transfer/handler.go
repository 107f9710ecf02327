package transfer

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/ledger"
	"github.com/payflow/gateway/internal/middleware"
)

var validate = validator.New()

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a transfer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	ReceiverEmail string  `json:"receiver_email" validate:"required,email"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Description   string  `json:"description" validate:"omitempty,max=255"`
}

type transactionResponse struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	SenderBalance float64 `json:"sender_balance"`
}

// Transfer executes a peer-to-peer transfer for the authenticated sender.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	senderID, ok := middleware.UserID(c)
	if !ok {
		return httperr.Unauthorized("Access token is required")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Validation("Invalid input data")
	}
	if err := validate.Struct(req); err != nil {
		return httperr.Validation("Invalid input data")
	}

	result, err := h.service.Transfer(c.UserContext(), Input{
		SenderID:      senderID,
		ReceiverEmail: req.ReceiverEmail,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		var apiErr *ledger.APIError
		switch {
		case errors.Is(err, ErrInvalidAmount):
			return httperr.Validation("Invalid input data")
		case errors.Is(err, ErrReceiverNotFound):
			return httperr.New(http.StatusNotFound, httperr.CodeReceiverNotFound, "Receiver not found or account is inactive")
		case errors.Is(err, ErrSelfTransfer):
			return httperr.New(http.StatusBadRequest, httperr.CodeInvalidTransfer, "Cannot transfer to your own account")
		case errors.As(err, &apiErr):
			// Outcome known: the ledger rejected it. Forward code and status.
			return httperr.New(apiErr.StatusCode, apiErr.Code, apiErr.Message)
		case errors.Is(err, ledger.ErrUnavailable):
			// Outcome unknown: the transfer may or may not have applied.
			return httperr.Unavailable("Payment service is temporarily unavailable")
		default:
			return err
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Transfer completed successfully",
		"transaction": transactionResponse{
			ID:            result.TransactionID,
			Amount:        result.Amount,
			Status:        result.Status,
			SenderBalance: result.SenderBalance,
		},
	})
}
