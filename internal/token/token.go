// Package token owns the access/refresh token lifecycle. Access tokens are
// stateless signed credentials; refresh tokens are additionally persisted so
// they can be revoked. Verification here is cryptographic only — callers that
// accept a refresh token must also confirm its stored record is still usable.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/payflow/gateway/internal/config"
)

const refreshTokenType = "refresh"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and wrong token types.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims carried by both access and refresh tokens. TokenType is set only on
// refresh tokens so the two can never be swapped even with leaked secrets.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies signed tokens. Access and refresh tokens use
// distinct secrets and lifetimes.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewManager builds a Manager from runtime configuration.
func NewManager(cfg config.Config) *Manager {
	return &Manager{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// AccessTokenTTL exposes the configured access token lifetime.
func (m *Manager) AccessTokenTTL() time.Duration {
	return m.accessTTL
}

// IssueAccessToken signs a short-lived access token for the user.
func (m *Manager) IssueAccessToken(userID int64, email string) (string, time.Time, error) {
	return m.sign(userID, email, "", m.accessSecret, m.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token. The caller is expected
// to persist the returned token together with its expiry.
func (m *Manager) IssueRefreshToken(userID int64, email string) (string, time.Time, error) {
	return m.sign(userID, email, refreshTokenType, m.refreshSecret, m.refreshTTL)
}

func (m *Manager) sign(userID int64, email, tokenType string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken checks signature and expiry of an access token. It does
// not consult any store: a user disabled after issuance keeps a working
// access token until it expires.
func (m *Manager) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.verify(tokenString, m.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken checks signature, expiry and the refresh type claim.
// Callers must additionally confirm the persisted record via Repository
// before trusting the result.
func (m *Manager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	claims, err := m.verify(tokenString, m.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) verify(tokenString string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
