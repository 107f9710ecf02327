package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/payflow/gateway/internal/wallet"
)

// MemoryRepository keeps users in memory. Used by tests. When a wallet store
// is attached, Create seeds it with the opening balance to mirror the atomic
// registration the Postgres repository performs.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[int64]User
	byEmail map[string]int64
	nextID  int64
	wallets *wallet.MemoryRepository
}

// NewMemoryRepository builds an empty in-memory identity repository.
func NewMemoryRepository(wallets *wallet.MemoryRepository) *MemoryRepository {
	return &MemoryRepository{
		users:   map[int64]User{},
		byEmail: map[string]int64{},
		wallets: wallets,
	}
}

// Create registers a user and, when a wallet store is attached, its wallet.
func (r *MemoryRepository) Create(_ context.Context, user User, openingBalance float64) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return User{}, ErrEmailTaken
	}

	r.nextID++
	user.ID = r.nextID
	user.Active = true
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID

	if r.wallets != nil {
		r.wallets.Put(wallet.Wallet{UserID: user.ID, Balance: openingBalance, Currency: "USD"})
	}
	return user, nil
}

// FindByEmail fetches a user by email regardless of active state.
func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

// FindActiveByEmail fetches an active user by email.
func (r *MemoryRepository) FindActiveByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	user := r.users[id]
	if !user.Active {
		return User{}, ErrNotFound
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (r *MemoryRepository) FindByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// Search lists active users whose email contains the query, excluding the caller.
func (r *MemoryRepository) Search(_ context.Context, emailQuery string, excludeID int64, limit int) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []User
	for _, user := range r.users {
		if len(users) >= limit {
			break
		}
		if user.ID == excludeID || !user.Active {
			continue
		}
		if strings.Contains(strings.ToLower(user.Email), strings.ToLower(emailQuery)) {
			users = append(users, user)
		}
	}
	return users, nil
}

// SetActive flips a user's active flag. Test helper for disabled-account paths.
func (r *MemoryRepository) SetActive(id int64, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.Active = active
		r.users[id] = user
	}
}
