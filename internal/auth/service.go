package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/payflow/gateway/internal/identity"
	"github.com/payflow/gateway/internal/token"
)

// ErrInvalidToken indicates the presented refresh token is unusable, whether
// cryptographically invalid, expired, revoked or simply unknown.
var ErrInvalidToken = errors.New("invalid or expired refresh token")

// Service orchestrates authentication: credential checks via the identity
// service, token issuance and the persisted refresh token lifecycle.
type Service struct {
	users   *identity.Service
	tokens  *token.Manager
	refresh token.Repository
	logger  *slog.Logger
}

// NewService builds the auth service.
func NewService(users *identity.Service, tokens *token.Manager, refresh token.Repository, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, refresh: refresh, logger: logger}
}

// TokenPair bundles the credentials returned on login and registration.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Register creates the user and immediately logs them in.
func (s *Service) Register(ctx context.Context, input identity.RegisterInput) (identity.User, TokenPair, error) {
	user, err := s.users.Register(ctx, input)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	s.logger.Info("new user registered", slog.Int64("user_id", user.ID), slog.String("email", user.Email))
	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (identity.User, TokenPair, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID), slog.String("email", user.Email))
	return user, pair, nil
}

func (s *Service) issuePair(ctx context.Context, user identity.User) (TokenPair, error) {
	access, _, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, expiresAt, err := s.tokens.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.refresh.Store(ctx, token.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new access token from a refresh token. Both layers must
// pass: the signature/expiry check and the stored-record check. Either one
// failing makes the token unusable.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	record, err := s.refresh.FindUsable(ctx, refreshToken, time.Now())
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	access, _, err := s.tokens.IssueAccessToken(record.UserID, claims.Email)
	if err != nil {
		return "", err
	}
	return access, nil
}

// Logout revokes the refresh token. Revoking an unknown or already-revoked
// token succeeds silently.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Revoke(ctx, refreshToken)
}
