package service

import (
	"context"
	"sync"

	"supplytrack/pkg/domain"
)

// MemoryTx serializes units of work per product with in-process locks. The
// in-memory stores cannot fail partway, so holding the product's lock across
// the append-then-project sequence is enough for atomicity, and trace reads
// taken under the same lock can never observe a half-applied unit.
type MemoryTx struct {
	mu    sync.Mutex
	locks map[domain.ProductID]*sync.Mutex
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{locks: make(map[domain.ProductID]*sync.Mutex)}
}

func (t *MemoryTx) lockFor(productID domain.ProductID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[productID] = lock
	}
	return lock
}

// RunInTx runs fn while holding the product's lock. Locks are per product, so
// units touching different products proceed independently.
func (t *MemoryTx) RunInTx(ctx context.Context, productID domain.ProductID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := t.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}
