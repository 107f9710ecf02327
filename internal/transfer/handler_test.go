package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/payflow/gateway/internal/config"
	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/identity"
	"github.com/payflow/gateway/internal/ledger"
	"github.com/payflow/gateway/internal/logging"
	"github.com/payflow/gateway/internal/middleware"
	"github.com/payflow/gateway/internal/token"
	"github.com/payflow/gateway/internal/wallet"
)

type fixture struct {
	app      *fiber.App
	exec     *stubExecutor
	wallets  *wallet.Service
	sender   identity.User
	receiver identity.User
	access   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	walletRepo := wallet.NewMemoryRepository()
	userRepo := identity.NewMemoryRepository(walletRepo)
	users := identity.NewService(userRepo)
	cache := wallet.NewCache(client, 5*time.Minute, logging.Discard())
	wallets := wallet.NewService(walletRepo, cache)

	ctx := context.Background()
	sender, err := users.Register(ctx, identity.RegisterInput{Email: "a@example.com", Password: "s3cret-pass", FullName: "A"})
	require.NoError(t, err)
	receiver, err := users.Register(ctx, identity.RegisterInput{Email: "b@example.com", Password: "s3cret-pass", FullName: "B"})
	require.NoError(t, err)

	tokens := token.NewManager(config.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	})
	access, _, err := tokens.IssueAccessToken(sender.ID, sender.Email)
	require.NoError(t, err)

	exec := &stubExecutor{resp: ledger.TransferResponse{
		TransactionID: "tx-1",
		Status:        "completed",
		Amount:        150.00,
		SenderBalance: 850.00,
	}}
	handler := NewHandler(NewService(userRepo, exec, nil, logging.Discard()))

	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Post("/api/wallet/transfer", middleware.Auth(tokens), handler.Transfer)

	return &fixture{app: app, exec: exec, wallets: wallets, sender: sender, receiver: receiver, access: access}
}

func (f *fixture) post(t *testing.T, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/wallet/transfer", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, fmt.Sprintf("Bearer %s", f.access))
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestTransferEndpointSuccess(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, fiber.Map{"receiver_email": f.receiver.Email, "amount": 150.00, "description": "rent"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Transaction struct {
			ID            string  `json:"id"`
			SenderBalance float64 `json:"sender_balance"`
		} `json:"transaction"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "tx-1", body.Transaction.ID)
	require.Equal(t, 850.00, body.Transaction.SenderBalance)
}

func TestTransferEndpointValidation(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, fiber.Map{"receiver_email": f.receiver.Email, "amount": -1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, httperr.CodeValidation, decodeError(t, resp))
	require.Empty(t, f.exec.calls)
}

func TestTransferEndpointSelfTransfer(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, fiber.Map{"receiver_email": f.sender.Email, "amount": 10})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, httperr.CodeInvalidTransfer, decodeError(t, resp))
	require.Empty(t, f.exec.calls)
}

func TestTransferEndpointReceiverNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, fiber.Map{"receiver_email": "ghost@example.com", "amount": 10})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, httperr.CodeReceiverNotFound, decodeError(t, resp))
}

func TestTransferEndpointForwardsLedgerError(t *testing.T) {
	f := newFixture(t)
	f.exec.err = &ledger.APIError{StatusCode: http.StatusBadRequest, Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds"}

	resp := f.post(t, fiber.Map{"receiver_email": f.receiver.Email, "amount": 10})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INSUFFICIENT_FUNDS", decodeError(t, resp))
}

func TestTransferEndpointUnavailableLedger(t *testing.T) {
	f := newFixture(t)
	f.exec.err = fmt.Errorf("%w: connection refused", ledger.ErrUnavailable)

	resp := f.post(t, fiber.Map{"receiver_email": f.receiver.Email, "amount": 10})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, httperr.CodeUnavailable, decodeError(t, resp))
}

// The registration bonus is 1000.00; after a 150.00 transfer executed by the
// ledger, a store-backed balance read reflects 850.00.
func TestTransferScenarioBalanceConverges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The stub plays the ledger's role: it applies the movement to the store.
	f.exec.apply = func(req ledger.TransferRequest) {
		_, _ = f.wallets.AddFunds(ctx, req.SenderID, -req.Amount)
		_, _ = f.wallets.AddFunds(ctx, req.ReceiverID, req.Amount)
	}

	resp := f.post(t, fiber.Map{"receiver_email": f.receiver.Email, "amount": 150.00})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	senderBalance, err := f.wallets.Balance(ctx, f.sender.ID)
	require.NoError(t, err)
	require.Equal(t, 850.00, senderBalance.Balance)

	receiverBalance, err := f.wallets.Balance(ctx, f.receiver.ID)
	require.NoError(t, err)
	require.Equal(t, 1150.00, receiverBalance.Balance)
}
