package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/token"
)

const (
	localUserID = "user_id"
	localEmail  = "email"
)

// Auth validates the bearer access token and stores the caller's identity in
// request locals. The check is purely cryptographic: no store lookup happens
// here, so a disabled account keeps working until its access token expires.
func Auth(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return httperr.Unauthorized("Access token is required")
		}

		tokenString := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			return httperr.Forbidden("Invalid or expired token")
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localEmail, claims.Email)
		return c.Next()
	}
}

// UserID returns the authenticated caller's id from request locals.
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(localUserID).(int64)
	return id, ok
}

// Email returns the authenticated caller's email from request locals.
func Email(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(localEmail).(string)
	return email, ok
}
