package wallet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the user has no wallet row.
var ErrNotFound = errors.New("wallet not found")

// Repository reads and credits authoritative wallet state.
type Repository interface {
	Get(ctx context.Context, userID int64) (Wallet, error)
	Credit(ctx context.Context, userID int64, amount float64) (Wallet, error)
}

// PostgresRepository reads wallets from the credential store.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed wallet repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches the wallet for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID int64) (Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, balance, currency, updated_at
        FROM wallets WHERE user_id = $1`, userID)

	var w Wallet
	if err := row.Scan(&w.UserID, &w.Balance, &w.Currency, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	return w, nil
}

// Credit adds funds to the wallet and returns the updated row.
func (r *PostgresRepository) Credit(ctx context.Context, userID int64, amount float64) (Wallet, error) {
	row := r.db.QueryRow(ctx, `UPDATE wallets
        SET balance = balance + $1, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $2
        RETURNING user_id, balance, currency, updated_at`, amount, userID)

	var w Wallet
	if err := row.Scan(&w.UserID, &w.Balance, &w.Currency, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	return w, nil
}
