// Package domain holds the typed identifiers shared across the service.
// Wrapping uuid.UUID in distinct types keeps product and user ids from being
// swapped at call sites.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ProductID identifies a tracked product unit.
type ProductID uuid.UUID

// NewProductID returns a fresh random product id.
func NewProductID() ProductID {
	return ProductID(uuid.New())
}

// ParseProductID validates and returns a ProductID from its string form.
func ParseProductID(s string) (ProductID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProductID{}, fmt.Errorf("invalid product id %q: %w", s, err)
	}
	return ProductID(u), nil
}

func (id ProductID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the id is the zero value.
func (id ProductID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// UserID identifies a registered user, referenced by events as actor and by
// products as owner.
type UserID uuid.UUID

// NewUserID returns a fresh random user id.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// ParseUserID validates and returns a UserID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user id %q: %w", s, err)
	}
	return UserID(u), nil
}

func (id UserID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the id is the zero value.
func (id UserID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// EventID identifies one ledger entry. Ids are assigned monotonically by the
// event store at append time and break ties between equal timestamps.
type EventID int64
