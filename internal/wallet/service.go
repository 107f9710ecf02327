package wallet

import (
	"context"
)

// Service reads balances through the cache and applies direct wallet credits.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService builds a wallet service instance.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Balance returns the user's balance, preferring the cache. A miss reads the
// credential store and repopulates the cache.
func (s *Service) Balance(ctx context.Context, userID int64) (BalanceResult, error) {
	if balance, currency, ok := s.cache.Get(ctx, userID); ok {
		return BalanceResult{Balance: balance, Currency: currency, Cached: true}, nil
	}

	w, err := s.repo.Get(ctx, userID)
	if err != nil {
		return BalanceResult{}, err
	}

	s.cache.Set(ctx, userID, w.Balance, w.Currency)

	return BalanceResult{Balance: w.Balance, Currency: w.Currency, Cached: false}, nil
}

// Get fetches the authoritative wallet row, bypassing the cache.
func (s *Service) Get(ctx context.Context, userID int64) (Wallet, error) {
	return s.repo.Get(ctx, userID)
}

// AddFunds credits the wallet directly and invalidates the cached balance in
// the same logical operation.
func (s *Service) AddFunds(ctx context.Context, userID int64, amount float64) (Wallet, error) {
	w, err := s.repo.Credit(ctx, userID, amount)
	if err != nil {
		return Wallet{}, err
	}

	s.cache.Invalidate(ctx, userID)

	return w, nil
}
