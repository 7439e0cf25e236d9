package event

import (
	"context"
	"database/sql"
	"fmt"

	"supplytrack/internal/ledger/models"
	"supplytrack/pkg/domain"
	"supplytrack/pkg/platform/tx"

	"github.com/google/uuid"
)

// PostgresStore persists events in PostgreSQL. Rows are insert-only; ids come
// from a sequence and timestamps from clock_timestamp(), both assigned at
// statement execution. Writers hold the product row lock while appending, so
// both are monotonic within a product's sequence.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event *models.Event) error {
	q := s.querier(ctx)
	row := q.QueryRowContext(ctx, `
		INSERT INTO events (product_id, event_type, description, location, actor_user_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, clock_timestamp())
		RETURNING id, timestamp`,
		uuid.UUID(event.ProductID), event.EventType, event.Description,
		event.Location, uuid.UUID(event.ActorUserID),
	)
	var id int64
	if err := row.Scan(&id, &event.Timestamp); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	event.ID = domain.EventID(id)
	return nil
}

func (s *PostgresStore) ListByProduct(ctx context.Context, productID domain.ProductID) ([]models.Event, error) {
	q := s.querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, event_type, description, location, actor_user_id, timestamp
		FROM events WHERE product_id = $1
		ORDER BY timestamp, id`,
		uuid.UUID(productID),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			evt     models.Event
			id      int64
			prodID  uuid.UUID
			actorID uuid.UUID
		)
		if err := rows.Scan(&id, &prodID, &evt.EventType, &evt.Description,
			&evt.Location, &actorID, &evt.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.ID = domain.EventID(id)
		evt.ProductID = domain.ProductID(prodID)
		evt.ActorUserID = domain.UserID(actorID)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
