package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type Service struct {
	store Store
	cache Cache
}

// NewService wires the catalog. cache may be nil.
func NewService(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache}
}

func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// SearchItems matches name anywhere in the title, ignoring case. An empty
// result is ErrNoData rather than an empty list.
func (s *Service) SearchItems(ctx context.Context, name string) ([]models.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, global.NewError(global.ErrValidation, "name query parameter required", global.ValidationError{
			Field: "name", Message: "name query parameter is required", Code: "required",
		})
	}

	items, err := s.store.SearchByTitle(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search items %q: %w", name, err)
	}
	if len(items) == 0 {
		return nil, global.NewError(global.ErrNoData, "No data found")
	}
	return items, nil
}

// InsertItems validates the whole batch before writing anything: a single
// invalid or colliding item rejects every item.
func (s *Service) InsertItems(ctx context.Context, items []models.Item) ([]models.Item, error) {
	if len(items) == 0 {
		return nil, global.NewError(global.ErrValidation, "Send an array of items", global.ValidationError{
			Field: "items", Message: "At least one item is required", Code: "empty_array",
		})
	}

	var fieldErrs []global.ValidationError
	seen := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for i := range items {
		prefix := fmt.Sprintf("[%d].", i)
		errs, err := global.FieldErrors(&items[i], prefix)
		if err != nil {
			return nil, fmt.Errorf("validate item %d: %w", i, err)
		}
		fieldErrs = append(fieldErrs, errs...)

		id := items[i].ID
		if id == "" {
			continue
		}
		if first, dup := seen[id]; dup {
			fieldErrs = append(fieldErrs, global.ValidationError{
				Field:   prefix + "id",
				Message: fmt.Sprintf("id %q repeats item [%d]", id, first),
				Code:    "duplicate",
			})
			continue
		}
		seen[id] = i
		ids = append(ids, id)
	}
	if len(fieldErrs) > 0 {
		return nil, global.NewError(global.ErrValidation, "Invalid items", fieldErrs...)
	}

	existing, err := s.store.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check existing items: %w", err)
	}
	if len(existing) > 0 {
		dupErrs := make([]global.ValidationError, 0, len(existing))
		for _, id := range existing {
			dupErrs = append(dupErrs, global.ValidationError{
				Field:   fmt.Sprintf("[%d].id", seen[id]),
				Message: fmt.Sprintf("item %q already exists", id),
				Code:    "duplicate",
			})
		}
		return nil, global.NewError(global.ErrDuplicate, "Items already exist", dupErrs...)
	}

	// _id is store-assigned; a client supplied one is discarded
	batch := make([]models.Item, len(items))
	for i, item := range items {
		item.MongoID = bson.ObjectID{}
		item.ApplyDefaults()
		batch[i] = item
	}

	inserted, err := s.store.InsertMany(ctx, batch)
	if err != nil {
		if errors.Is(err, global.ErrDuplicate) {
			return nil, global.NewError(global.ErrDuplicate, "Items already exist")
		}
		return nil, fmt.Errorf("insert %d items: %w", len(batch), err)
	}

	if s.cache != nil {
		if err := s.cache.SetItems(ctx, inserted...); err != nil {
			log.Warn().Err(err).Int("count", len(inserted)).Msg("failed to cache inserted items")
		}
	}
	return inserted, nil
}

// GetItem resolves an item by business key, consulting the cache first.
// Missing items are reported with global.ErrNotFound and never cached. A
// fill racing RemoveItem is dropped by the cache, see Cache.
func (s *Service) GetItem(ctx context.Context, id string) (*models.Item, error) {
	if s.cache != nil {
		item, found, err := s.cache.GetItem(ctx, id)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("itemId", id).Msg("item cache read failed")
		case found:
			return item, nil
		}
	}

	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetItems(ctx, *item); err != nil {
			log.Warn().Err(err).Str("itemId", id).Msg("failed to cache item")
		}
	}
	return item, nil
}

// RemoveItem deletes an item from the catalog. Cart entries pointing at it
// are left alone and disappear from cart reads.
func (s *Service) RemoveItem(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, global.ErrNotFound) {
			return nil, global.NewError(global.ErrNotFound, "Item not found", global.ValidationError{
				Field: "id", Message: "No item exists with this id", Code: "not_found",
			})
		}
		return nil, fmt.Errorf("remove item %s: %w", id, err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteItem(ctx, id); err != nil {
			log.Warn().Err(err).Str("itemId", id).Msg("failed to evict item from cache")
		}
	}
	return item, nil
}
