package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"supplytrack/internal/ledger/models"
	"supplytrack/pkg/domain"
	"supplytrack/pkg/platform/sentinel"
	"supplytrack/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists products in PostgreSQL. All methods join a
// transaction carried in the context when one is present.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) (querier, bool) {
	if t, ok := tx.From(ctx); ok {
		return t, true
	}
	return s.db, false
}

func (s *PostgresStore) Create(ctx context.Context, product *models.Product) error {
	q, _ := s.querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO products (id, name, origin, current_status, current_location, owner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(product.ID), product.Name, product.Origin,
		product.CurrentStatus, product.CurrentLocation, uuid.UUID(product.OwnerUserID),
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// FindByID loads a product. Inside a transaction the row is locked FOR
// UPDATE, which serializes the append-then-project sequence per product and
// keeps trace reads consistent with the event set they observe.
func (s *PostgresStore) FindByID(ctx context.Context, productID domain.ProductID) (*models.Product, error) {
	q, inTx := s.querier(ctx)
	query := `
		SELECT id, name, origin, current_status, current_location, owner_user_id, created_at, updated_at
		FROM products WHERE id = $1`
	if inTx {
		query += " FOR UPDATE"
	}
	return scanProduct(q.QueryRowContext(ctx, query, uuid.UUID(productID)))
}

func (s *PostgresStore) Update(ctx context.Context, product *models.Product) error {
	q, _ := s.querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE products
		SET current_status = $2, current_location = $3, owner_user_id = $4, updated_at = $5
		WHERE id = $1`,
		uuid.UUID(product.ID), product.CurrentStatus, product.CurrentLocation,
		uuid.UUID(product.OwnerUserID), product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerUserID domain.UserID) ([]*models.Product, error) {
	q, _ := s.querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, origin, current_status, current_location, owner_user_id, created_at, updated_at
		FROM products WHERE owner_user_id = $1
		ORDER BY created_at, id`,
		uuid.UUID(ownerUserID),
	)
	if err != nil {
		return nil, fmt.Errorf("list products by owner: %w", err)
	}
	defer rows.Close()

	var owned []*models.Product
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		owned = append(owned, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products by owner: %w", err)
	}
	return owned, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func scanProductRow(row rowScanner) (*models.Product, error) {
	var (
		product models.Product
		id      uuid.UUID
		owner   uuid.UUID
	)
	err := row.Scan(&id, &product.Name, &product.Origin,
		&product.CurrentStatus, &product.CurrentLocation, &owner,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	product.ID = domain.ProductID(id)
	product.OwnerUserID = domain.UserID(owner)
	return &product, nil
}
