package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"supplytrack/internal/ledger/models"
	"supplytrack/pkg/domain"
	dErrors "supplytrack/pkg/domain-errors"
	"supplytrack/pkg/platform/sentinel"
)

// CreateProduct registers a new product and appends the synthetic HARVESTED
// event that anchors its ledger, atomically as one unit. The product's
// derived state is therefore explained by the ledger from its first moment.
func (s *Service) CreateProduct(ctx context.Context, name, origin, initialLocation string, ownerUserID domain.UserID) (*models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "product name is required")
	}

	ok, err := s.actors.Exists(ctx, ownerUserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve owner")
	}
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "owner user %s not found", ownerUserID)
	}

	now := time.Now()
	product := &models.Product{
		ID:              domain.NewProductID(),
		Name:            name,
		Origin:          origin,
		CurrentStatus:   models.StatusHarvested,
		CurrentLocation: initialLocation,
		OwnerUserID:     ownerUserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.tx.RunInTx(ctx, product.ID, func(txCtx context.Context) error {
		if err := s.products.Create(txCtx, product); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
		}
		initial := &models.Event{
			ProductID:   product.ID,
			EventType:   models.StatusHarvested,
			Description: "Product initially harvested and created.",
			Location:    initialLocation,
			ActorUserID: ownerUserID,
		}
		if err := s.events.Append(txCtx, initial); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append initial event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		"product_id", product.ID,
		"owner_user_id", ownerUserID,
	)
	if s.metrics != nil {
		s.metrics.IncrementProductsCreated()
	}
	return product, nil
}

// RecordEvent appends an event to a product's ledger and projects the new
// derived state, atomically per product. The actor is credited on the event
// and becomes the product's owner; handover is this same path with the new
// owner passed as actor.
func (s *Service) RecordEvent(ctx context.Context, productID domain.ProductID, eventType, description, location string, actorUserID domain.UserID) (*models.Event, error) {
	start := time.Now()
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event type is required")
	}

	var event *models.Event
	err := s.tx.RunInTx(ctx, productID, func(txCtx context.Context) error {
		product, err := s.products.FindByID(txCtx, productID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "product not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
		}

		// An unknown actor is a caller defect, not a missing business
		// entity; it maps to 400 upstream where a missing product maps
		// to 404.
		ok, err := s.actors.Exists(txCtx, actorUserID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve actor")
		}
		if !ok {
			return dErrors.Newf(dErrors.CodeBadRequest, "actor user %s not found", actorUserID)
		}

		evt := &models.Event{
			ProductID:   productID,
			EventType:   eventType,
			Description: description,
			Location:    location,
			ActorUserID: actorUserID,
		}
		if err := s.events.Append(txCtx, evt); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append event")
		}

		product.CurrentStatus = evt.EventType
		product.CurrentLocation = evt.Location
		product.OwnerUserID = evt.ActorUserID
		product.UpdatedAt = evt.Timestamp
		if err := s.products.Update(txCtx, product); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update product projection")
		}
		event = evt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "event recorded",
		"product_id", productID,
		"event_id", event.ID,
		"event_type", event.EventType,
		"actor_user_id", actorUserID,
	)
	if s.metrics != nil {
		s.metrics.IncrementEventsRecorded(event.EventType)
		s.metrics.ObserveRecordEvent(start)
	}
	return event, nil
}

// GetTrace returns the product's derived state together with its full event
// history in canonical order. The read runs as one unit so the product and
// event list always correspond to the same point in the ledger.
func (s *Service) GetTrace(ctx context.Context, productID domain.ProductID) (*models.Trace, error) {
	var trace models.Trace
	err := s.tx.RunInTx(ctx, productID, func(txCtx context.Context) error {
		product, err := s.products.FindByID(txCtx, productID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "product not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
		}
		events, err := s.events.ListByProduct(txCtx, productID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
		}
		trace.Product = product
		trace.Events = events
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementTracesServed()
	}
	return &trace, nil
}

// ListProductsByOwner returns the products currently owned by a user.
func (s *Service) ListProductsByOwner(ctx context.Context, ownerUserID domain.UserID) ([]*models.Product, error) {
	products, err := s.products.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return products, nil
}
