package memstore

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]models.User)}
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[email]
	if !ok {
		return nil, global.ErrNotFound
	}
	return &user, nil
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return fmt.Errorf("user %s: %w", user.Email, global.ErrDuplicate)
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	s.byEmail[user.Email] = *user
	return nil
}
