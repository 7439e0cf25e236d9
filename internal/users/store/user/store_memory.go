// Package user provides User stores with case-insensitive username
// uniqueness.
package user

import (
	"context"
	"strings"
	"sync"

	"supplytrack/internal/users/models"
	"supplytrack/pkg/domain"
	"supplytrack/pkg/platform/sentinel"
)

// InMemory stores users in maps keyed by id and lower-cased username.
type InMemory struct {
	mu         sync.RWMutex
	users      map[domain.UserID]models.User
	byUsername map[string]domain.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:      make(map[domain.UserID]models.User),
		byUsername: make(map[string]domain.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, ok := s.byUsername[key]; ok {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = *user
	s.byUsername[key] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}
