// Package projection folds an ordered event list into the product's derived
// state. It is the reference implementation of the replay invariant: the
// stored Product fields are a cache of exactly this computation.
package projection

import (
	"fmt"

	"supplytrack/internal/ledger/models"
	"supplytrack/pkg/domain"
)

// DerivedState is the portion of a product computed from its ledger.
type DerivedState struct {
	Status      string
	Location    string
	OwnerUserID domain.UserID
}

// Apply folds a single event into the state.
func Apply(state DerivedState, evt models.Event) DerivedState {
	state.Status = evt.EventType
	state.Location = evt.Location
	state.OwnerUserID = evt.ActorUserID
	return state
}

// Replay folds events in the given order from empty state. Events must be in
// canonical (timestamp, id) order.
func Replay(events []models.Event) DerivedState {
	var state DerivedState
	for _, evt := range events {
		state = Apply(state, evt)
	}
	return state
}

// Verify checks that a product's stored derived fields match the replay of
// its event list. A non-nil error names the first diverging field.
func Verify(product *models.Product, events []models.Event) error {
	state := Replay(events)
	if product.CurrentStatus != state.Status {
		return fmt.Errorf("status %q does not match replayed %q", product.CurrentStatus, state.Status)
	}
	if product.CurrentLocation != state.Location {
		return fmt.Errorf("location %q does not match replayed %q", product.CurrentLocation, state.Location)
	}
	if product.OwnerUserID != state.OwnerUserID {
		return fmt.Errorf("owner %s does not match replayed %s", product.OwnerUserID, state.OwnerUserID)
	}
	return nil
}
