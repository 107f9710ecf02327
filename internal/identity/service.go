package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Opening balance credited to every new wallet at registration.
const openingBalance = 1000.00

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled indicates the account exists but may not authenticate.
	ErrAccountDisabled = errors.New("account disabled")
)

// Service manages user registration and credential checks.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures data required to register a user.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Register creates a user with a hashed password and a bonus-funded wallet.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Email:        input.Email,
		FullName:     input.FullName,
		Phone:        input.Phone,
		PasswordHash: hash,
	}

	return s.repo.Create(ctx, user, openingBalance)
}

// Authenticate verifies credentials for an active user. Unknown emails and
// wrong passwords are indistinguishable to the caller; disabled accounts are not.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if !user.Active {
		return User{}, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Profile fetches a user by identifier.
func (s *Service) Profile(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// Search lists active transfer recipients matching the email query.
func (s *Service) Search(ctx context.Context, emailQuery string, callerID int64) ([]User, error) {
	return s.repo.Search(ctx, emailQuery, callerID, 10)
}
