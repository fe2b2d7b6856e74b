package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// tombstone marks a deleted item. It must outlive any lookup that read the
// item before the delete, so it is held well past global.DefaultTimeout.
const (
	tombstone    = "-"
	tombstoneTTL = 3 * global.DefaultTimeout
)

func itemKey(id string) string {
	return fmt.Sprintf("item:%s", id)
}

// ItemCache stores catalog items as JSON under item:{id}. Writes never
// replace an existing key, so a fill that raced a delete loses to the
// delete's tombstone.
type ItemCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewItemCache(client *redisclient.Client, ttl time.Duration) *ItemCache {
	return &ItemCache{client: client, ttl: ttl}
}

// GetItem reports found=false on a cache miss.
func (c *ItemCache) GetItem(ctx context.Context, id string) (*models.Item, bool, error) {
	raw, err := c.client.Get(ctx, itemKey(id)).Bytes()
	if errors.Is(err, redisclient.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(raw) == tombstone {
		return nil, false, nil
	}

	var item models.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	return &item, true, nil
}

// SetItems caches every item in a single pipeline, skipping keys that
// already hold a value or a tombstone.
func (c *ItemCache) SetItems(ctx context.Context, items ...models.Item) error {
	if len(items) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for _, item := range items {
		itemJSON, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item %s: %w", item.ID, err)
		}
		pipe.SetNX(ctx, itemKey(item.ID), itemJSON, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for %d items: %w", len(items), err)
	}
	return nil
}

// DeleteItem replaces the cached item with a tombstone.
func (c *ItemCache) DeleteItem(ctx context.Context, id string) error {
	return c.client.Set(ctx, itemKey(id), tombstone, tombstoneTTL).Err()
}
