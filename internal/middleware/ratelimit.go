package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/payflow/gateway/internal/httperr"
)

// Policy is a fixed-window request budget keyed by client network identity.
// When SkipSuccessful is set, requests that complete without error refund
// their slot, so only failures consume the budget.
type Policy struct {
	Name           string
	Window         time.Duration
	Limit          int64
	SkipSuccessful bool
	Message        string
}

// Admission policies. Transfer composes with General by stacking handlers.
var (
	GeneralPolicy = Policy{
		Name:    "general",
		Window:  15 * time.Minute,
		Limit:   100,
		Message: "Too many requests from this IP, please try again later",
	}
	AuthPolicy = Policy{
		Name:           "auth",
		Window:         15 * time.Minute,
		Limit:          5,
		SkipSuccessful: true,
		Message:        "Too many authentication attempts, please try again later",
	}
	TransferPolicy = Policy{
		Name:    "transfer",
		Window:  time.Minute,
		Limit:   10,
		Message: "Too many transfer requests, please try again later",
	}
)

// RateLimit rejects requests over the policy's budget before any
// authentication or business logic runs. Counter errors fail open: admission
// control protects capacity, it must not become an outage of its own.
func RateLimit(cache *redis.Client, policy Policy, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		key := fmt.Sprintf("rl:%s:%s", policy.Name, c.IP())
		ctx := c.UserContext()

		count, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit counter unavailable", slog.String("policy", policy.Name), slog.Any("error", err))
			return c.Next()
		}
		if count == 1 {
			cache.Expire(ctx, key, policy.Window)
		}

		if count > policy.Limit {
			return httperr.RateLimited(policy.Message)
		}

		err = c.Next()

		if policy.SkipSuccessful && err == nil && c.Response().StatusCode() < fiber.StatusBadRequest {
			if decrErr := cache.Decr(ctx, key).Err(); decrErr != nil {
				logger.Warn("rate limit refund failed", slog.String("policy", policy.Name), slog.Any("error", decrErr))
			}
		}

		return err
	}
}
