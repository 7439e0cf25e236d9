package models

import (
	"strings"
	"time"

	"supplytrack/pkg/domain"
)

// RolePrefix is prepended to role names that arrive without it, so stored
// roles are always of the form ROLE_FARMER, ROLE_DISTRIBUTOR, etc.
const RolePrefix = "ROLE_"

// User is a registered participant in the supply chain. Events reference
// users as actors and products reference them as owners.
type User struct {
	ID           domain.UserID
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// NormalizeRole upper-cases a role and ensures the ROLE_ prefix.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return role
	}
	if !strings.HasPrefix(role, RolePrefix) {
		role = RolePrefix + role
	}
	return role
}
