package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplytrack/internal/ledger/models"
	"supplytrack/internal/ledger/projection"
	"supplytrack/internal/ledger/service"
	eventstore "supplytrack/internal/ledger/store/event"
	productstore "supplytrack/internal/ledger/store/product"
	"supplytrack/pkg/domain"
	dErrors "supplytrack/pkg/domain-errors"
)

type actorsStub struct {
	ids map[domain.UserID]bool
}

func (a actorsStub) Exists(_ context.Context, userID domain.UserID) (bool, error) {
	return a.ids[userID], nil
}

func newFixture(actors ...domain.UserID) (*service.Service, *eventstore.InMemory) {
	known := make(map[domain.UserID]bool, len(actors))
	for _, id := range actors {
		known[id] = true
	}
	events := eventstore.NewInMemory()
	svc := service.New(productstore.NewInMemory(), events, actorsStub{ids: known})
	return svc, events
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	owner := domain.NewUserID()
	svc, _ := newFixture(owner)

	product, err := svc.CreateProduct(ctx, "Coffee Lot 7", "Farm A", "Farm A", owner)
	require.NoError(t, err)

	assert.Equal(t, models.StatusHarvested, product.CurrentStatus)
	assert.Equal(t, "Farm A", product.CurrentLocation)
	assert.Equal(t, owner, product.OwnerUserID)

	trace, err := svc.GetTrace(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, trace.Events, 1, "creation must append the anchoring event")
	assert.Equal(t, models.StatusHarvested, trace.Events[0].EventType)
	assert.Equal(t, "Farm A", trace.Events[0].Location)
	assert.Equal(t, owner, trace.Events[0].ActorUserID)
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	owner := domain.NewUserID()
	svc, _ := newFixture(owner)

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, "  ", "Farm A", "Farm A", owner)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects unknown owner", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, "Coffee Lot 7", "Farm A", "Farm A", domain.NewUserID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// TestRecordEventScenario walks the documented lifecycle: harvest, shipment,
// handover to a new owner.
func TestRecordEventScenario(t *testing.T) {
	ctx := context.Background()
	u1 := domain.NewUserID()
	u2 := domain.NewUserID()
	svc, _ := newFixture(u1, u2)

	product, err := svc.CreateProduct(ctx, "Coffee Lot 7", "Farm A", "Farm A", u1)
	require.NoError(t, err)

	shipped, err := svc.RecordEvent(ctx, product.ID, "SHIPPED", "in transit", "Port B", u1)
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", shipped.EventType)

	trace, err := svc.GetTrace(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", trace.Product.CurrentStatus)
	assert.Equal(t, "Port B", trace.Product.CurrentLocation)
	assert.Equal(t, u1, trace.Product.OwnerUserID)
	assert.Len(t, trace.Events, 2)

	// Handover: the new owner is passed as the actor.
	_, err = svc.RecordEvent(ctx, product.ID, models.EventTypeHandover, "sold", "Warehouse C", u2)
	require.NoError(t, err)

	trace, err = svc.GetTrace(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeHandover, trace.Product.CurrentStatus)
	assert.Equal(t, "Warehouse C", trace.Product.CurrentLocation)
	assert.Equal(t, u2, trace.Product.OwnerUserID)
	assert.Len(t, trace.Events, 3)

	require.NoError(t, projection.Verify(trace.Product, trace.Events),
		"stored product must match the replayed ledger")
}

func TestRecordEventProductNotFound(t *testing.T) {
	ctx := context.Background()
	actor := domain.NewUserID()
	svc, events := newFixture(actor)

	missing := domain.NewProductID()
	_, err := svc.RecordEvent(ctx, missing, "SHIPPED", "", "Port B", actor)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	stored, err := events.ListByProduct(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, stored, "a failed record must append nothing")
}

func TestRecordEventActorNotFound(t *testing.T) {
	ctx := context.Background()
	owner := domain.NewUserID()
	svc, events := newFixture(owner)

	product, err := svc.CreateProduct(ctx, "Coffee Lot 7", "Farm A", "Farm A", owner)
	require.NoError(t, err)

	_, err = svc.RecordEvent(ctx, product.ID, "SHIPPED", "", "Port B", domain.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest),
		"unknown actor is a caller defect, not a missing entity")

	trace, err := svc.GetTrace(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, trace.Events, 1, "only the creation event may exist")
	assert.Equal(t, models.StatusHarvested, trace.Product.CurrentStatus, "product must be unchanged")

	stored, err := events.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRecordEventValidation(t *testing.T) {
	ctx := context.Background()
	owner := domain.NewUserID()
	svc, _ := newFixture(owner)

	product, err := svc.CreateProduct(ctx, "Coffee Lot 7", "Farm A", "Farm A", owner)
	require.NoError(t, err)

	_, err = svc.RecordEvent(ctx, product.ID, "   ", "", "Port B", owner)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestConcurrentRecordEventIsolation appends events concurrently and checks
// the no-lost-update guarantee: every append lands, the ledger stays in
// canonical order, and the product equals the replay of that order.
func TestConcurrentRecordEventIsolation(t *testing.T) {
	ctx := context.Background()
	owner := domain.NewUserID()
	svc, _ := newFixture(owner)

	product, err := svc.CreateProduct(ctx, "Coffee Lot 7", "Farm A", "Farm A", owner)
	require.NoError(t, err)

	const appends = 50
	var wg sync.WaitGroup
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordEvent(ctx, product.ID, "INSPECTED", "", "Checkpoint", owner)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	trace, err := svc.GetTrace(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, trace.Events, appends+1, "no append may be lost")

	for i := 1; i < len(trace.Events); i++ {
		prev, cur := trace.Events[i-1], trace.Events[i]
		assert.False(t, cur.Timestamp.Before(prev.Timestamp),
			"timestamps must be non-decreasing in ledger order")
		if cur.Timestamp.Equal(prev.Timestamp) {
			assert.Greater(t, cur.ID, prev.ID, "ids must break timestamp ties")
		}
	}

	require.NoError(t, projection.Verify(trace.Product, trace.Events))
}

func TestListProductsByOwner(t *testing.T) {
	ctx := context.Background()
	u1 := domain.NewUserID()
	u2 := domain.NewUserID()
	svc, _ := newFixture(u1, u2)

	p1, err := svc.CreateProduct(ctx, "Coffee Lot 7", "Farm A", "Farm A", u1)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, "Coffee Lot 8", "Farm A", "Farm A", u2)
	require.NoError(t, err)

	owned, err := svc.ListProductsByOwner(ctx, u1)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, p1.ID, owned[0].ID)

	// Handover moves the product between owner listings.
	_, err = svc.RecordEvent(ctx, p1.ID, models.EventTypeHandover, "sold", "Warehouse C", u2)
	require.NoError(t, err)

	owned, err = svc.ListProductsByOwner(ctx, u1)
	require.NoError(t, err)
	assert.Empty(t, owned)

	owned, err = svc.ListProductsByOwner(ctx, u2)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}

func TestGetTraceNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture()

	_, err := svc.GetTrace(ctx, domain.NewProductID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
