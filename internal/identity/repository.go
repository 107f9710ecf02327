package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

// Repository persists users. Registration creates the user and its wallet in
// one transaction so a user without a wallet can never exist.
type Repository interface {
	Create(ctx context.Context, user User, openingBalance float64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	// FindActiveByEmail resolves transfer counterparties: inactive and
	// nonexistent users are both reported as ErrNotFound.
	FindActiveByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	Search(ctx context.Context, emailQuery string, excludeID int64, limit int) ([]User, error)
}

// PostgresRepository implements Repository against the credential store.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user and a wallet seeded with the opening balance, atomically.
func (r *PostgresRepository) Create(ctx context.Context, user User, openingBalance float64) (User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return User{}, fmt.Errorf("begin registration: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `INSERT INTO users (email, password_hash, full_name, phone)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`, user.Email, user.PasswordHash, user.FullName, nullable(user.Phone))
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, $2)`,
		user.ID, openingBalance); err != nil {
		return User{}, fmt.Errorf("insert wallet: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, fmt.Errorf("commit registration: %w", err)
	}

	user.Active = true
	return user, nil
}

// FindByEmail fetches a user by email regardless of active state.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password_hash, full_name, COALESCE(phone, ''), is_active, created_at
        FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindActiveByEmail fetches an active user by email.
func (r *PostgresRepository) FindActiveByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password_hash, full_name, COALESCE(phone, ''), is_active, created_at
        FROM users WHERE email = $1 AND is_active = true`, email)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password_hash, full_name, COALESCE(phone, ''), is_active, created_at
        FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Search lists active users whose email contains the query, excluding the caller.
func (r *PostgresRepository) Search(ctx context.Context, emailQuery string, excludeID int64, limit int) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email, password_hash, full_name, COALESCE(phone, ''), is_active, created_at
        FROM users
        WHERE email ILIKE $1 AND is_active = true AND id != $2
        LIMIT $3`, "%"+emailQuery+"%", excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Phone, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
