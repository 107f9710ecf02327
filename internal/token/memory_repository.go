package token

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps refresh token records in memory. Used by tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]RefreshToken
}

// NewMemoryRepository builds an empty in-memory refresh token repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[string]RefreshToken{}}
}

// Store saves a refresh token record.
func (r *MemoryRepository) Store(_ context.Context, record RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.records[record.Token] = record
	return nil
}

// FindUsable returns the record when it exists, is not revoked and is unexpired.
func (r *MemoryRepository) FindUsable(_ context.Context, tokenString string, now time.Time) (RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[tokenString]
	if !ok || record.Revoked || !record.ExpiresAt.After(now) {
		return RefreshToken{}, ErrNotFound
	}
	return record, nil
}

// Revoke marks the record revoked if present.
func (r *MemoryRepository) Revoke(_ context.Context, tokenString string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[tokenString]; ok {
		record.Revoked = true
		r.records[tokenString] = record
	}
	return nil
}
