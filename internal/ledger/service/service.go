// Package service implements the provenance ledger engine: the single code
// path allowed to append events and update the product projection derived
// from them.
package service

import (
	"context"
	"log/slog"

	ledgermetrics "supplytrack/internal/ledger/metrics"
	"supplytrack/internal/ledger/models"
	"supplytrack/pkg/domain"
)

// ProductStore persists the product projection.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, productID domain.ProductID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	ListByOwner(ctx context.Context, ownerUserID domain.UserID) ([]*models.Product, error)
}

// EventStore is the append-only ledger. Append assigns the event's id and
// timestamp; ListByProduct returns events in canonical (timestamp, id) order.
type EventStore interface {
	Append(ctx context.Context, event *models.Event) error
	ListByProduct(ctx context.Context, productID domain.ProductID) ([]models.Event, error)
}

// ActorDirectory answers user existence checks. The ledger needs nothing else
// from the user system.
type ActorDirectory interface {
	Exists(ctx context.Context, userID domain.UserID) (bool, error)
}

// StoreTx scopes a function to an atomic unit keyed by product. Everything
// the function does through the stores either commits as a whole or leaves no
// trace. Implementations serialize units for the same product and must not
// block units for different products.
type StoreTx interface {
	RunInTx(ctx context.Context, productID domain.ProductID, fn func(ctx context.Context) error) error
}

// Service is the ledger engine plus its read-only trace projection.
type Service struct {
	products ProductStore
	events   EventStore
	actors   ActorDirectory
	tx       StoreTx
	logger   *slog.Logger
	metrics  *ledgermetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx swaps the unit-of-work implementation; cmd/server installs the
// Postgres one when a database is configured.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// New constructs the ledger Service. Without WithTx it uses per-product
// in-process locks, which is the right pairing for the in-memory stores.
func New(products ProductStore, events EventStore, actors ActorDirectory, opts ...Option) *Service {
	s := &Service{
		products: products,
		events:   events,
		actors:   actors,
		tx:       NewMemoryTx(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
