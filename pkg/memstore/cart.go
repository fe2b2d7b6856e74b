package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// CartStore keeps cart entries in insertion order. Insert enforces the
// (userId, itemId) uniqueness under the same lock as the lookup.
type CartStore struct {
	mu      sync.RWMutex
	entries []models.CartEntry
}

func NewCartStore() *CartStore {
	return &CartStore{}
}

func (s *CartStore) Insert(_ context.Context, entry *models.CartEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.UserID == entry.UserID && e.ItemID == entry.ItemID {
			return fmt.Errorf("cart entry %s/%s: %w", entry.UserID, entry.ItemID, global.ErrDuplicate)
		}
	}
	if entry.ID.IsZero() {
		entry.ID = bson.NewObjectID()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *CartStore) FindOne(_ context.Context, userID, itemID string) (*models.CartEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.UserID == userID && e.ItemID == itemID {
			found := e
			return &found, nil
		}
	}
	return nil, global.ErrNotFound
}

func (s *CartStore) FindByUserID(_ context.Context, userID string) ([]models.CartEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.CartEntry{}
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *CartStore) DeleteByID(_ context.Context, cartID string) (*models.CartEntry, error) {
	id, err := bson.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, global.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return &e, nil
		}
	}
	return nil, global.ErrNotFound
}

// CountByItem returns how many carts hold each item, most carted first.
func (s *CartStore) CountByItem(_ context.Context, limit int) ([]models.ItemCartCount, error) {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, e := range s.entries {
		counts[e.ItemID]++
	}
	s.mu.RUnlock()

	out := make([]models.ItemCartCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.ItemCartCount{ItemID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ItemID < out[j].ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *CartStore) Ping(context.Context) error {
	return nil
}
