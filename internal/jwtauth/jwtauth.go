// Package jwtauth issues and validates the HS256 bearer tokens the HTTP
// shell uses to resolve callers into user ids.
package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"supplytrack/internal/platform/middleware"
)

// Manager signs and validates tokens with a shared HMAC key.
type Manager struct {
	key []byte
	ttl time.Duration
}

// New constructs a Manager. ttl bounds how long issued tokens stay valid.
func New(signingKey string, ttl time.Duration) *Manager {
	return &Manager{key: []byte(signingKey), ttl: ttl}
}

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken returns a signed token identifying the user.
func (m *Manager) IssueToken(userID, username, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the caller's identity.
// It satisfies middleware.JWTValidator.
func (m *Manager) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &middleware.JWTClaims{
		UserID:   c.Subject,
		Username: c.Username,
		Role:     c.Role,
	}, nil
}
