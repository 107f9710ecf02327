package transfer

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/payflow/gateway/internal/identity"
	"github.com/payflow/gateway/internal/ledger"
	"github.com/payflow/gateway/internal/logging"
	"github.com/payflow/gateway/internal/notification"
	"github.com/payflow/gateway/internal/wallet"
)

// stubExecutor records calls and plays back a scripted outcome.
type stubExecutor struct {
	calls []ledger.TransferRequest
	resp  ledger.TransferResponse
	err   error
	apply func(ledger.TransferRequest)
}

func (s *stubExecutor) Transfer(_ context.Context, req ledger.TransferRequest) (ledger.TransferResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return ledger.TransferResponse{}, s.err
	}
	if s.apply != nil {
		s.apply(req)
	}
	return s.resp, nil
}

type recordingNotifier struct {
	messages []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func setup(t *testing.T) (*Service, *stubExecutor, *identity.MemoryRepository, identity.User, identity.User) {
	t.Helper()

	repo := identity.NewMemoryRepository(wallet.NewMemoryRepository())
	users := identity.NewService(repo)
	ctx := context.Background()

	sender, err := users.Register(ctx, identity.RegisterInput{Email: "sender@example.com", Password: "s3cret-pass", FullName: "Sender"})
	require.NoError(t, err)
	receiver, err := users.Register(ctx, identity.RegisterInput{Email: "receiver@example.com", Password: "s3cret-pass", FullName: "Receiver"})
	require.NoError(t, err)

	exec := &stubExecutor{resp: ledger.TransferResponse{
		TransactionID: "tx-1",
		Status:        "completed",
		Amount:        150.00,
		SenderBalance: 850.00,
	}}
	svc := NewService(repo, exec, nil, logging.Discard())
	return svc, exec, repo, sender, receiver
}

func TestTransferSuccess(t *testing.T) {
	svc, exec, _, sender, receiver := setup(t)

	result, err := svc.Transfer(context.Background(), Input{
		SenderID:      sender.ID,
		ReceiverEmail: receiver.Email,
		Amount:        150.00,
		Description:   "lunch",
	})
	require.NoError(t, err)
	require.Equal(t, "tx-1", result.TransactionID)
	require.Equal(t, "completed", result.Status)
	require.Equal(t, 850.00, result.SenderBalance)

	require.Len(t, exec.calls, 1)
	call := exec.calls[0]
	require.Equal(t, sender.ID, call.SenderID)
	require.Equal(t, receiver.ID, call.ReceiverID)
	require.Equal(t, "lunch", call.Description)
	require.NotEmpty(t, call.IdempotencyKey)
}

func TestIdempotencyKeyFreshPerAttempt(t *testing.T) {
	svc, exec, _, sender, receiver := setup(t)
	ctx := context.Background()

	input := Input{SenderID: sender.ID, ReceiverEmail: receiver.Email, Amount: 10}
	_, err := svc.Transfer(ctx, input)
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, input)
	require.NoError(t, err)

	require.Len(t, exec.calls, 2)
	require.NotEqual(t, exec.calls[0].IdempotencyKey, exec.calls[1].IdempotencyKey)
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	svc, exec, _, sender, receiver := setup(t)
	ctx := context.Background()

	for _, amount := range []float64{0, -5} {
		_, err := svc.Transfer(ctx, Input{SenderID: sender.ID, ReceiverEmail: receiver.Email, Amount: amount})
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
	require.Empty(t, exec.calls, "invalid amounts must never reach the ledger")
}

func TestTransferRejectsSelf(t *testing.T) {
	svc, exec, _, sender, _ := setup(t)

	_, err := svc.Transfer(context.Background(), Input{SenderID: sender.ID, ReceiverEmail: sender.Email, Amount: 10})
	require.ErrorIs(t, err, ErrSelfTransfer)
	require.Empty(t, exec.calls)
}

func TestTransferUnknownReceiver(t *testing.T) {
	svc, exec, _, sender, _ := setup(t)

	_, err := svc.Transfer(context.Background(), Input{SenderID: sender.ID, ReceiverEmail: "ghost@example.com", Amount: 10})
	require.ErrorIs(t, err, ErrReceiverNotFound)
	require.Empty(t, exec.calls)
}

func TestTransferInactiveReceiverIndistinguishable(t *testing.T) {
	svc, exec, repo, sender, receiver := setup(t)
	repo.SetActive(receiver.ID, false)

	// An inactive receiver yields the same error as a nonexistent one.
	_, err := svc.Transfer(context.Background(), Input{SenderID: sender.ID, ReceiverEmail: receiver.Email, Amount: 10})
	require.ErrorIs(t, err, ErrReceiverNotFound)
	require.Empty(t, exec.calls)
}

func TestTransferForwardsLedgerRejection(t *testing.T) {
	svc, exec, _, sender, receiver := setup(t)
	exec.err = &ledger.APIError{StatusCode: http.StatusBadRequest, Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds"}

	_, err := svc.Transfer(context.Background(), Input{SenderID: sender.ID, ReceiverEmail: receiver.Email, Amount: 10})

	var apiErr *ledger.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INSUFFICIENT_FUNDS", apiErr.Code)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Len(t, exec.calls, 1, "a ledger rejection must not be retried")
}

func TestTransferLedgerUnavailable(t *testing.T) {
	svc, exec, _, sender, receiver := setup(t)
	exec.err = ledger.ErrUnavailable

	_, err := svc.Transfer(context.Background(), Input{SenderID: sender.ID, ReceiverEmail: receiver.Email, Amount: 10})
	require.ErrorIs(t, err, ledger.ErrUnavailable)
	require.Len(t, exec.calls, 1, "an unavailable ledger must not be retried")
}

func TestTransferNotifiesReceiver(t *testing.T) {
	svc, _, _, sender, receiver := setup(t)
	notifier := &recordingNotifier{}
	svc.notifier = notifier

	_, err := svc.Transfer(context.Background(), Input{SenderID: sender.ID, ReceiverEmail: receiver.Email, Amount: 25})
	require.NoError(t, err)
	require.Len(t, notifier.messages, 1)
	require.Equal(t, notification.KindTransferReceived, notifier.messages[0].Kind)
	require.Equal(t, receiver.ID, notifier.messages[0].UserID)
}
