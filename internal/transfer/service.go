// Package transfer orchestrates peer-to-peer money movement. The gateway
// validates intent and hands execution to the ledger service; it never moves
// money itself and never retries, because a retry without an end-to-end
// idempotency contract could double-spend.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/payflow/gateway/internal/identity"
	"github.com/payflow/gateway/internal/ledger"
	"github.com/payflow/gateway/internal/notification"
)

var (
	// ErrInvalidAmount rejects non-positive transfer amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrSelfTransfer rejects transfers where sender and receiver coincide.
	ErrSelfTransfer = errors.New("cannot transfer to own account")
	// ErrReceiverNotFound covers both unknown and inactive receiver emails,
	// so the transfer path cannot be used to probe account existence.
	ErrReceiverNotFound = errors.New("receiver not found")
)

// Executor runs a transfer on the ledger service.
type Executor interface {
	Transfer(ctx context.Context, req ledger.TransferRequest) (ledger.TransferResponse, error)
}

// Service validates transfer intents and delegates execution to the ledger.
type Service struct {
	users    identity.Repository
	ledger   Executor
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a transfer orchestrator.
func NewService(users identity.Repository, executor Executor, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{users: users, ledger: executor, notifier: notifier, logger: logger}
}

// Input captures a transfer intent from an authenticated sender.
type Input struct {
	SenderID      int64
	ReceiverEmail string
	Amount        float64
	Description   string
}

// Result describes the ledger outcome of a completed transfer.
type Result struct {
	TransactionID string
	Amount        float64
	Status        string
	SenderBalance float64
}

// Transfer resolves the receiver, stamps the attempt with a fresh idempotency
// key and executes it on the ledger. Precondition failures produce no side
// effects; ledger failures pass through untouched so the handler can tell a
// rejection (outcome known) from an unreachable ledger (outcome unknown).
func (s *Service) Transfer(ctx context.Context, input Input) (Result, error) {
	if input.Amount <= 0 {
		return Result{}, ErrInvalidAmount
	}

	receiver, err := s.users.FindActiveByEmail(ctx, input.ReceiverEmail)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return Result{}, ErrReceiverNotFound
		}
		return Result{}, err
	}

	if receiver.ID == input.SenderID {
		return Result{}, ErrSelfTransfer
	}

	// One key per attempt. A client retry after a timeout is a new attempt
	// with a new key, so ledger-side deduplication does not cover it.
	idempotencyKey := uuid.NewString()

	resp, err := s.ledger.Transfer(ctx, ledger.TransferRequest{
		SenderID:       input.SenderID,
		ReceiverID:     receiver.ID,
		Amount:         input.Amount,
		Description:    input.Description,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		var apiErr *ledger.APIError
		switch {
		case errors.As(err, &apiErr):
			s.logger.Warn("ledger rejected transfer",
				slog.String("code", apiErr.Code),
				slog.Int("status", apiErr.StatusCode),
				slog.Int64("sender_id", input.SenderID),
			)
		case errors.Is(err, ledger.ErrUnavailable):
			s.logger.Error("ledger unreachable, transfer outcome unknown",
				slog.String("idempotency_key", idempotencyKey),
				slog.Int64("sender_id", input.SenderID),
				slog.Any("error", err),
			)
		}
		return Result{}, err
	}

	s.logger.Info("transfer completed",
		slog.String("transaction_id", resp.TransactionID),
		slog.Int64("sender_id", input.SenderID),
		slog.Int64("receiver_id", receiver.ID),
		slog.Float64("amount", resp.Amount),
	)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:   notification.KindTransferReceived,
			UserID: receiver.ID,
			Body:   fmt.Sprintf("You received %.2f", input.Amount),
		})
	}

	return Result{
		TransactionID: resp.TransactionID,
		Amount:        resp.Amount,
		Status:        resp.Status,
		SenderBalance: resp.SenderBalance,
	}, nil
}
