// Package service implements user registration and authentication, plus the
// existence checks the ledger engine performs on actors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	usermetrics "supplytrack/internal/users/metrics"
	"supplytrack/internal/users/models"
	"supplytrack/internal/users/secrets"
	"supplytrack/pkg/domain"
	dErrors "supplytrack/pkg/domain-errors"
	"supplytrack/pkg/platform/sentinel"
)

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID domain.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service orchestrates user lifecycle operations.
type Service struct {
	users   UserStore
	logger  *slog.Logger
	metrics *usermetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *usermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a user Service.
func New(users UserStore, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with a bcrypt-hashed password and a normalized
// ROLE_* role. Duplicate usernames are rejected with a conflict.
func (s *Service) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username is required")
	}
	role = models.NormalizeRole(role)
	if role == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "role is required")
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           domain.NewUserID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "username already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"role", user.Role,
	)
	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	return user, nil
}

// Authenticate verifies a username/password pair and returns the user. Both
// an unknown username and a wrong password come back as the same unauthorized
// error so callers cannot probe for accounts.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementLoginFailures()
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.incrementLoginFailures()
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	return user, nil
}

// FindByID returns a user by id.
func (s *Service) FindByID(ctx context.Context, userID domain.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// Exists reports whether a user id refers to a registered user. It satisfies
// the ledger engine's ActorDirectory.
func (s *Service) Exists(ctx context.Context, userID domain.UserID) (bool, error) {
	_, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) incrementLoginFailures() {
	if s.metrics != nil {
		s.metrics.IncrementLoginFailures()
	}
}
