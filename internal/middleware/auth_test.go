package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/config"
	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/logging"
	"github.com/payflow/gateway/internal/token"
)

func newAuthApp(t *testing.T) (*fiber.App, *token.Manager) {
	t.Helper()

	tokens := token.NewManager(config.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	})

	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Get("/me", Auth(tokens), func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		email, _ := Email(c)
		return c.JSON(fiber.Map{"user_id": id, "email": email})
	})
	return app, tokens
}

func TestAuthMissingToken(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != httperr.CodeUnauthorized {
		t.Fatalf("expected %s, got %s", httperr.CodeUnauthorized, body.Error)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAuthExpiredToken(t *testing.T) {
	app, _ := newAuthApp(t)

	expired := token.NewManager(config.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   -time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	})
	signed, _, err := expired.IssueAccessToken(1, "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d", resp.StatusCode)
	}
}

func TestAuthValidToken(t *testing.T) {
	app, tokens := newAuthApp(t)

	signed, _, err := tokens.IssueAccessToken(42, "alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, fmt.Sprintf("Bearer %s", signed))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		UserID int64  `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.UserID != 42 || body.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", body)
	}
}

func TestAuthRejectsRefreshTokenAsBearer(t *testing.T) {
	app, tokens := newAuthApp(t)

	refresh, _, err := tokens.IssueRefreshToken(42, "alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+refresh)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for refresh token on a protected route, got %d", resp.StatusCode)
	}
}
