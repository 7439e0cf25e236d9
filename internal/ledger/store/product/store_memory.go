// Package product provides Product stores. The in-memory variant backs unit
// tests and the default wiring; PostgresStore is the durable one.
package product

import (
	"context"
	"sort"
	"sync"

	"supplytrack/internal/ledger/models"
	"supplytrack/pkg/domain"
	"supplytrack/pkg/platform/sentinel"
)

// InMemory stores products in a map. It favors clarity over performance.
// Values are copied on the way in and out so callers never share memory with
// the store.
type InMemory struct {
	mu       sync.RWMutex
	products map[domain.ProductID]models.Product
}

func NewInMemory() *InMemory {
	return &InMemory{products: make(map[domain.ProductID]models.Product)}
}

func (s *InMemory) Create(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; ok {
		return sentinel.ErrConflict
	}
	s.products[product.ID] = *product
	return nil
}

func (s *InMemory) FindByID(_ context.Context, productID domain.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[productID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &product, nil
}

func (s *InMemory) Update(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.products[product.ID] = *product
	return nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerUserID domain.UserID) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []*models.Product
	for _, product := range s.products {
		if product.OwnerUserID == ownerUserID {
			p := product
			owned = append(owned, &p)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}
