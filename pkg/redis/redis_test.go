package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redisclient.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := RedisClient(Options{Address: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Options{Address: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), Options{Address: addr})
	assert.Error(t, err)
}

func TestItemCache_RoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewItemCache(client, time.Hour)
	ctx := context.Background()

	_, found, err := cache.GetItem(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, found)

	item := models.Item{
		ID:       "i1",
		Title:    "Running Shoe",
		Price:    80,
		Currency: "USD",
		Discount: models.NewDiscount(25, 60),
		Images:   []string{"https://img.example.com/shoe.png"},
	}
	require.NoError(t, cache.SetItems(ctx, item))
	assert.True(t, mr.Exists("item:i1"))
	assert.Equal(t, time.Hour, mr.TTL("item:i1"))

	got, found, err := cache.GetItem(ctx, "i1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Running Shoe", got.Title)
	require.NotNil(t, got.Discount)
	assert.Equal(t, 60.0, got.EffectivePrice())

	require.NoError(t, cache.DeleteItem(ctx, "i1"))
	_, found, err = cache.GetItem(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestItemCache_DeleteBeatsLateFill(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewItemCache(client, time.Hour)
	ctx := context.Background()
	item := models.Item{ID: "i1", Title: "Running Shoe", Price: 80}

	// a lookup that read i1 before the delete tries to fill afterwards
	require.NoError(t, cache.DeleteItem(ctx, "i1"))
	require.NoError(t, cache.SetItems(ctx, item))

	_, found, err := cache.GetItem(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, tombstoneTTL, mr.TTL("item:i1"))

	mr.FastForward(tombstoneTTL + time.Second)
	require.NoError(t, cache.SetItems(ctx, item))
	_, found, err = cache.GetItem(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestItemCache_SetItemsKeepsExistingEntry(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewItemCache(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.SetItems(ctx, models.Item{ID: "i1", Title: "first"}))
	require.NoError(t, cache.SetItems(ctx, models.Item{ID: "i1", Title: "second"}))

	got, found, err := cache.GetItem(ctx, "i1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", got.Title)
}

func TestItemCache_CorruptEntry(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewItemCache(client, time.Hour)
	require.NoError(t, mr.Set("item:bad", "{not json"))

	_, _, err := cache.GetItem(context.Background(), "bad")
	assert.Error(t, err)
}

func TestLocker_SerializesHolders(t *testing.T) {
	_, client := newTestClient(t)
	locker := NewLocker(client, 5*time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "cart:u1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestLocker_RespectsContext(t *testing.T) {
	_, client := newTestClient(t)
	locker := NewLocker(client, 5*time.Second)

	unlock, err := locker.Lock(context.Background(), "cart:u1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "cart:u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_UnlockOnlyOwnToken(t *testing.T) {
	mr, client := newTestClient(t)
	locker := NewLocker(client, 5*time.Second)

	unlock, err := locker.Lock(context.Background(), "cart:u1")
	require.NoError(t, err)

	// simulate expiry and takeover by another holder
	require.NoError(t, mr.Set("lock:cart:u1", "someone-else"))
	unlock()

	val, err := mr.Get("lock:cart:u1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}
