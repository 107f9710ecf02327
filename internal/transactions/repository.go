package transactions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no transaction matched, or the caller is not a participant.
var ErrNotFound = errors.New("transaction not found")

// Repository reads transaction history from the shared store.
type Repository interface {
	ListByUser(ctx context.Context, userID int64, filter Filter) ([]Transaction, int64, error)
	// Get returns the transaction only when the user participated in it.
	Get(ctx context.Context, id string, userID int64) (Transaction, error)
	Stats(ctx context.Context, userID int64) (Stats, error)
}

// PostgresRepository implements Repository against the credential store.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed transaction repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const listColumns = `
    t.id, t.sender_id, t.receiver_id, t.amount, t.currency, t.status,
    COALESCE(t.description, ''), t.created_at, t.completed_at,
    sender.email, sender.full_name, receiver.email, receiver.full_name`

// ListByUser returns a page of the user's transactions plus the total count.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, filter Filter) ([]Transaction, int64, error) {
	query := `SELECT` + listColumns + `
        FROM transactions t
        JOIN users sender ON t.sender_id = sender.id
        JOIN users receiver ON t.receiver_id = receiver.id
        WHERE (t.sender_id = $1 OR t.receiver_id = $1)`

	switch filter.Type {
	case "sent":
		query += ` AND t.sender_id = $1`
	case "received":
		query += ` AND t.receiver_id = $1`
	}

	query += ` ORDER BY t.created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions
        WHERE sender_id = $1 OR receiver_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// Get fetches a single transaction scoped to one of its participants.
func (r *PostgresRepository) Get(ctx context.Context, id string, userID int64) (Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT`+listColumns+`
        FROM transactions t
        JOIN users sender ON t.sender_id = sender.id
        JOIN users receiver ON t.receiver_id = receiver.id
        WHERE t.id = $1 AND (t.sender_id = $2 OR t.receiver_id = $2)`, id, userID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, err
	}
	return tx, nil
}

// Stats aggregates the user's completed transfers.
func (r *PostgresRepository) Stats(ctx context.Context, userID int64) (Stats, error) {
	row := r.db.QueryRow(ctx, `SELECT
        COUNT(*) FILTER (WHERE sender_id = $1),
        COUNT(*) FILTER (WHERE receiver_id = $1),
        COALESCE(SUM(amount) FILTER (WHERE sender_id = $1), 0),
        COALESCE(SUM(amount) FILTER (WHERE receiver_id = $1), 0)
        FROM transactions
        WHERE (sender_id = $1 OR receiver_id = $1) AND status = 'completed'`, userID)

	var stats Stats
	if err := row.Scan(&stats.SentCount, &stats.ReceivedCount, &stats.SentAmount, &stats.ReceivedAmount); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var tx Transaction
	err := row.Scan(&tx.ID, &tx.SenderID, &tx.ReceiverID, &tx.Amount, &tx.Currency, &tx.Status,
		&tx.Description, &tx.CreatedAt, &tx.CompletedAt,
		&tx.SenderEmail, &tx.SenderName, &tx.ReceiverEmail, &tx.ReceiverName)
	if err != nil {
		return Transaction{}, err
	}
	return tx, nil
}
