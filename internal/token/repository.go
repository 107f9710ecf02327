package token

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no usable refresh token record exists — the token is
// unknown, revoked or past its expiry.
var ErrNotFound = errors.New("refresh token not found")

// RefreshToken is the persisted record backing a refresh credential. Records
// are never deleted, only marked revoked, so the table doubles as an audit trail.
type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Repository persists refresh token records.
type Repository interface {
	Store(ctx context.Context, record RefreshToken) error
	// FindUsable returns the record only when it exists, is not revoked and
	// has not expired as of now.
	FindUsable(ctx context.Context, tokenString string, now time.Time) (RefreshToken, error)
	// Revoke marks the record revoked. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, tokenString string) error
}

// PostgresRepository stores refresh tokens in the credential store.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed refresh token repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Store inserts a refresh token record.
func (r *PostgresRepository) Store(ctx context.Context, record RefreshToken) error {
	_, err := r.db.Exec(ctx, `INSERT INTO refresh_tokens (user_id, token, expires_at)
        VALUES ($1, $2, $3)`, record.UserID, record.Token, record.ExpiresAt.UTC())
	return err
}

// FindUsable fetches a refresh token record that is still valid for refresh.
func (r *PostgresRepository) FindUsable(ctx context.Context, tokenString string, now time.Time) (RefreshToken, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, token, expires_at, revoked, created_at
        FROM refresh_tokens
        WHERE token = $1 AND revoked = false AND expires_at > $2`, tokenString, now.UTC())

	var record RefreshToken
	if err := row.Scan(&record.UserID, &record.Token, &record.ExpiresAt, &record.Revoked, &record.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshToken{}, ErrNotFound
		}
		return RefreshToken{}, err
	}
	return record, nil
}

// Revoke marks the matching record revoked if present.
func (r *PostgresRepository) Revoke(ctx context.Context, tokenString string) error {
	_, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = true WHERE token = $1`, tokenString)
	return err
}
