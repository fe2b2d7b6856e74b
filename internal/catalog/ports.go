package catalog

import (
	"context"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Store is the catalog persistence. Lookups of unknown ids return an error
// wrapping global.ErrNotFound.
type Store interface {
	FindByID(ctx context.Context, id string) (*models.Item, error)
	FindAll(ctx context.Context) ([]models.Item, error)
	SearchByTitle(ctx context.Context, text string) ([]models.Item, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	InsertMany(ctx context.Context, items []models.Item) ([]models.Item, error)
	DeleteByID(ctx context.Context, id string) (*models.Item, error)
}

// Cache is an optional read-through cache for single item lookups.
// SetItems must not overwrite a key, and DeleteItem must block later fills
// for longer than a store lookup can take.
type Cache interface {
	GetItem(ctx context.Context, id string) (*models.Item, bool, error)
	SetItems(ctx context.Context, items ...models.Item) error
	DeleteItem(ctx context.Context, id string) error
}
