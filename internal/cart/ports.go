package cart

import (
	"context"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Store persists cart entries. Insert must fail with global.ErrDuplicate
// when the (userId, itemId) pair already exists; lookups and deletes of
// absent entries fail with global.ErrNotFound.
type Store interface {
	Insert(ctx context.Context, entry *models.CartEntry) error
	FindOne(ctx context.Context, userID, itemID string) (*models.CartEntry, error)
	FindByUserID(ctx context.Context, userID string) ([]models.CartEntry, error)
	DeleteByID(ctx context.Context, cartID string) (*models.CartEntry, error)
	CountByItem(ctx context.Context, limit int) ([]models.ItemCartCount, error)
}

// ItemReader resolves catalog items; unknown ids fail with global.ErrNotFound.
type ItemReader interface {
	GetItem(ctx context.Context, id string) (*models.Item, error)
}

// Locker serializes work per key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
