package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "wallet:balance:"

// Cache is a short-TTL projection of wallet balances. It is never
// authoritative: every error degrades to a miss and the caller falls through
// to the credential store.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache builds a balance cache over the shared Redis client.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

type cachedBalance struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("%s%d", cacheKeyPrefix, userID)
}

// Get returns the cached balance and whether it was present.
func (c *Cache) Get(ctx context.Context, userID int64) (float64, string, bool) {
	if c == nil || c.client == nil {
		return 0, "", false
	}

	raw, err := c.client.Get(ctx, cacheKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("balance cache read failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return 0, "", false
	}

	var entry cachedBalance
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("balance cache entry corrupt", slog.Int64("user_id", userID), slog.Any("error", err))
		return 0, "", false
	}
	return entry.Balance, entry.Currency, true
}

// Set stores the balance with the configured TTL. Best effort.
func (c *Cache) Set(ctx context.Context, userID int64, balance float64, currency string) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(cachedBalance{Balance: balance, Currency: currency})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(userID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("balance cache write failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

// Invalidate deletes the entry. Must run in the same logical operation as any
// direct balance mutation performed by the gateway itself.
func (c *Cache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		c.logger.Warn("balance cache invalidation failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}
