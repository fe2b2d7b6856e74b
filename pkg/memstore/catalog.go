package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type CatalogStore struct {
	mu    sync.RWMutex
	items []models.Item
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

func (s *CatalogStore) FindByID(_ context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, global.ErrNotFound
}

func (s *CatalogStore) FindAll(context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *CatalogStore) SearchByTitle(_ context.Context, text string) ([]models.Item, error) {
	needle := strings.ToLower(text)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Item{}
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Title), needle) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *CatalogStore) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, item := range s.items {
		if _, ok := want[item.ID]; ok {
			out = append(out, item.ID)
		}
	}
	return out, nil
}

// InsertMany is all or nothing: any id collision rejects the whole batch.
func (s *CatalogStore) InsertMany(_ context.Context, items []models.Item) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.items)+len(items))
	for _, item := range s.items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("item %s: %w", item.ID, global.ErrDuplicate)
		}
		seen[item.ID] = struct{}{}
	}

	out := make([]models.Item, len(items))
	for i, item := range items {
		item.MongoID = bson.NewObjectID()
		out[i] = item
	}
	s.items = append(s.items, out...)
	return out, nil
}

func (s *CatalogStore) DeleteByID(_ context.Context, id string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return &item, nil
		}
	}
	return nil, global.ErrNotFound
}
