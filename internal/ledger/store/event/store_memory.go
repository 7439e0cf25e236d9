// Package event provides the append-only Event log stores. Entries are never
// updated or deleted; the canonical order per product is (timestamp, id).
package event

import (
	"context"
	"sync"
	"time"

	"supplytrack/internal/ledger/models"
	"supplytrack/pkg/domain"
)

// InMemory keeps per-product event slices. Append assigns a monotonically
// increasing id and a timestamp clamped to be non-decreasing within the
// product's sequence, so (timestamp, id) order matches append order.
type InMemory struct {
	mu       sync.RWMutex
	nextID   domain.EventID
	byProd   map[domain.ProductID][]models.Event
	lastSeen map[domain.ProductID]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		byProd:   make(map[domain.ProductID][]models.Event),
		lastSeen: make(map[domain.ProductID]time.Time),
	}
}

func (s *InMemory) Append(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	event.ID = s.nextID

	ts := time.Now()
	if last, ok := s.lastSeen[event.ProductID]; ok && ts.Before(last) {
		ts = last
	}
	event.Timestamp = ts
	s.lastSeen[event.ProductID] = ts

	s.byProd[event.ProductID] = append(s.byProd[event.ProductID], *event)
	return nil
}

func (s *InMemory) ListByProduct(_ context.Context, productID domain.ProductID) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.byProd[productID]
	events := make([]models.Event, len(stored))
	copy(events, stored)
	return events, nil
}
