package wallet

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps wallets in memory. Used by tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	wallets map[int64]Wallet
}

// NewMemoryRepository builds an empty in-memory wallet repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{wallets: map[int64]Wallet{}}
}

// Put inserts or replaces a wallet.
func (r *MemoryRepository) Put(w Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.Currency == "" {
		w.Currency = "USD"
	}
	w.UpdatedAt = time.Now().UTC()
	r.wallets[w.UserID] = w
}

// Get fetches the wallet for a user.
func (r *MemoryRepository) Get(_ context.Context, userID int64) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[userID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

// Credit adds funds to the wallet and returns the updated value.
func (r *MemoryRepository) Credit(_ context.Context, userID int64, amount float64) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	w.Balance += amount
	w.UpdatedAt = time.Now().UTC()
	r.wallets[userID] = w
	return w, nil
}
