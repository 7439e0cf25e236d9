// Package models defines the provenance ledger entities: the append-only
// Event and the Product projection derived from it.
package models

import (
	"time"

	"supplytrack/pkg/domain"
)

// StatusHarvested is the status every product starts in; the creation path
// appends a matching event so the ledger explains the state from time zero.
const StatusHarvested = "HARVESTED"

// EventTypeHandover is the conventional type for ownership transfers. The
// engine has no handover-specific path: callers pass the new owner's id as
// the actor and the projection does the rest.
const EventTypeHandover = "HANDOVER"

// Product is a cached projection of the product's event ledger. CurrentStatus,
// CurrentLocation, and OwnerUserID always equal the corresponding fields of
// the most recently accepted event; replaying the ledger from empty state
// must reproduce them exactly. The ledger service is the sole writer.
type Product struct {
	ID              domain.ProductID
	Name            string
	Origin          string
	CurrentStatus   string
	CurrentLocation string
	OwnerUserID     domain.UserID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Event is one immutable ledger entry. ID and Timestamp are assigned by the
// event store at append time; the canonical order per product is
// (Timestamp, ID).
type Event struct {
	ID          domain.EventID
	ProductID   domain.ProductID
	EventType   string
	Description string
	Location    string
	ActorUserID domain.UserID
	Timestamp   time.Time
}

// Trace is the read-only projection returned to callers: the product's
// derived state plus its full ordered history.
type Trace struct {
	Product *Product
	Events  []Event
}
