package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/payflow/gateway/internal/logging"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewMemoryRepository()
	cache := NewCache(client, 5*time.Minute, logging.Discard())
	return NewService(repo, cache), repo, mr
}

func TestBalanceReadThrough(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	repo.Put(Wallet{UserID: 1, Balance: 1000.00, Currency: "USD"})

	first, err := svc.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first.Cached {
		t.Fatalf("first read should come from the store")
	}

	second, err := svc.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second read should come from the cache")
	}
	if second.Balance != first.Balance || second.Currency != first.Currency {
		t.Fatalf("cached read diverged: %+v vs %+v", second, first)
	}
}

func TestBalanceCacheExpiry(t *testing.T) {
	svc, repo, mr := newTestService(t)
	ctx := context.Background()
	repo.Put(Wallet{UserID: 1, Balance: 500.00, Currency: "USD"})

	if _, err := svc.Balance(ctx, 1); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	mr.FastForward(6 * time.Minute)

	result, err := svc.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("read after expiry: %v", err)
	}
	if result.Cached {
		t.Fatalf("expected store read after TTL lapse")
	}
}

func TestAddFundsInvalidatesCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	repo.Put(Wallet{UserID: 1, Balance: 1000.00, Currency: "USD"})

	if _, err := svc.Balance(ctx, 1); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	w, err := svc.AddFunds(ctx, 1, 250.00)
	if err != nil {
		t.Fatalf("add funds: %v", err)
	}
	if w.Balance != 1250.00 {
		t.Fatalf("expected 1250.00, got %v", w.Balance)
	}

	result, err := svc.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("read after credit: %v", err)
	}
	if result.Cached {
		t.Fatalf("cache should have been invalidated by the credit")
	}
	if result.Balance != 1250.00 {
		t.Fatalf("expected fresh balance 1250.00, got %v", result.Balance)
	}
}

func TestBalanceDegradesWhenCacheDown(t *testing.T) {
	svc, repo, mr := newTestService(t)
	ctx := context.Background()
	repo.Put(Wallet{UserID: 1, Balance: 750.00, Currency: "USD"})

	mr.Close()

	// Cache errors are absorbed; the read falls through to the store.
	result, err := svc.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("read with cache down: %v", err)
	}
	if result.Cached {
		t.Fatalf("expected store read with cache down")
	}
	if result.Balance != 750.00 {
		t.Fatalf("expected 750.00, got %v", result.Balance)
	}
}

func TestBalanceWalletMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Balance(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
