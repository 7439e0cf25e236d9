package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"supplytrack/internal/users/models"
	"supplytrack/pkg/domain"
	"supplytrack/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists users in PostgreSQL. Username uniqueness is enforced
// by a unique index on lower(username).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(user.ID), user.Username, user.PasswordHash, user.Role, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID domain.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE id = $1`,
		uuid.UUID(userID),
	)
	return scanUser(row)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE lower(username) = lower($1)`,
		username,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user models.User
		id   uuid.UUID
	)
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.ID = domain.UserID(id)
	return &user, nil
}
