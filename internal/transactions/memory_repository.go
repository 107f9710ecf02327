package transactions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps transactions in memory. Used by tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	list []Transaction
}

// NewMemoryRepository builds an empty in-memory transaction repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Put records a transaction.
func (r *MemoryRepository) Put(tx Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, tx)
}

// ListByUser returns a page of the user's transactions plus the total count.
func (r *MemoryRepository) ListByUser(_ context.Context, userID int64, filter Filter) ([]Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Transaction
	for _, tx := range r.list {
		switch filter.Type {
		case "sent":
			if tx.SenderID != userID {
				continue
			}
		case "received":
			if tx.ReceiverID != userID {
				continue
			}
		default:
			if tx.SenderID != userID && tx.ReceiverID != userID {
				continue
			}
		}
		matched = append(matched, tx)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(r.countParticipant(userID))

	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *MemoryRepository) countParticipant(userID int64) int {
	n := 0
	for _, tx := range r.list {
		if tx.SenderID == userID || tx.ReceiverID == userID {
			n++
		}
	}
	return n
}

// Get fetches a single transaction scoped to one of its participants.
func (r *MemoryRepository) Get(_ context.Context, id string, userID int64) (Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, tx := range r.list {
		if tx.ID == id && (tx.SenderID == userID || tx.ReceiverID == userID) {
			return tx, nil
		}
	}
	return Transaction{}, ErrNotFound
}

// Stats aggregates the user's completed transfers.
func (r *MemoryRepository) Stats(_ context.Context, userID int64) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats Stats
	for _, tx := range r.list {
		if tx.Status != "completed" {
			continue
		}
		if tx.SenderID == userID {
			stats.SentCount++
			stats.SentAmount += tx.Amount
		}
		if tx.ReceiverID == userID {
			stats.ReceivedCount++
			stats.ReceivedAmount += tx.Amount
		}
	}
	return stats, nil
}
