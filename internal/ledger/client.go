// Package ledger is the HTTP client for the external ledger service, the
// system of record for money movement. The gateway treats it as opaque: a
// non-2xx response with a decodable body is an application failure with a
// known outcome; a transport failure means the outcome is unknown.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable indicates the ledger could not be reached or did not answer
// in time. The far side may still have applied the transfer.
var ErrUnavailable = errors.New("ledger service unavailable")

// TransferRequest is the wire contract for POST /transfer.
type TransferRequest struct {
	SenderID       int64   `json:"sender_id"`
	ReceiverID     int64   `json:"receiver_id"`
	Amount         float64 `json:"amount"`
	Description    string  `json:"description"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// TransferResponse is the ledger's success payload.
type TransferResponse struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	SenderBalance float64 `json:"sender_balance"`
}

// APIError is an application-level rejection from the ledger. The code and
// status are forwarded to the client verbatim.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger rejected transfer: %s (%s)", e.Code, e.Message)
}

// Client calls the ledger service over HTTP with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a ledger client. The timeout bounds the whole call,
// connection included.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Transfer executes a money movement on the ledger. The error is either an
// *APIError (outcome known: rejected) or wraps ErrUnavailable (outcome unknown).
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (TransferResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return TransferResponse{}, fmt.Errorf("encode transfer request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfer", bytes.NewReader(payload))
	if err != nil {
		return TransferResponse{}, fmt.Errorf("build transfer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return TransferResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "TRANSFER_FAILED"
			apiErr.Message = "Transfer failed"
		}
		return TransferResponse{}, apiErr
	}

	var result TransferResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return TransferResponse{}, fmt.Errorf("decode transfer response: %w", err)
	}
	return result, nil
}
