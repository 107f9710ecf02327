// Package httperr defines the gateway's client-facing error taxonomy. Every
// failed request resolves to a {error: CODE, message} JSON body with a
// meaningful HTTP status, regardless of which layer rejected it.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to clients.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeUserExists         = "USER_EXISTS"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeReceiverNotFound   = "RECEIVER_NOT_FOUND"
	CodeInvalidTransfer    = "INVALID_TRANSFER"
	CodeWalletNotFound     = "WALLET_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeTxNotFound         = "TRANSACTION_NOT_FOUND"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is a client-visible failure with a stable machine-readable code.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// New builds an Error with an explicit status, code and message.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message)
}

func RateLimited(message string) *Error {
	return New(http.StatusTooManyRequests, CodeRateLimited, message)
}

func Unavailable(message string) *Error {
	return New(http.StatusServiceUnavailable, CodeUnavailable, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, CodeInternal, message)
}

type body struct {
	ErrorCode string `json:"error"`
	Message   string `json:"message"`
}

// Handler returns the fiber error handler that renders the taxonomy. Unknown
// errors are logged and collapsed into INTERNAL_ERROR so internals never leak.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return c.Status(apiErr.Status).JSON(body{ErrorCode: apiErr.Code, Message: apiErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(body{ErrorCode: codeForStatus(fiberErr.Code), Message: fiberErr.Message})
		}

		logger.Error("unhandled error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return c.Status(http.StatusInternalServerError).JSON(body{ErrorCode: CodeInternal, Message: "Internal server error"})
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
