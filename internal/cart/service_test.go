package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/internal/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/memstore"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/redis"
)

type fixture struct {
	svc     *Service
	carts   *memstore.CartStore
	catalog *catalog.Service
}

func newFixture(t *testing.T, titles map[string]string) *fixture {
	t.Helper()
	ctx := context.Background()

	catalogStore := memstore.NewCatalogStore()
	catalogSvc := catalog.NewService(catalogStore, nil)
	var items []models.Item
	for id, title := range titles {
		items = append(items, models.Item{
			ID:               id,
			Title:            title,
			Price:            10,
			ShortDescription: "short",
			FullDescription:  "full",
			Images:           []string{"https://img.example.com/" + id + ".png"},
		})
	}
	if len(items) > 0 {
		_, err := catalogSvc.InsertItems(ctx, items)
		require.NoError(t, err)
	}

	carts := memstore.NewCartStore()
	return &fixture{svc: NewService(carts, catalogSvc, nil), carts: carts, catalog: catalogSvc}
}

func TestCartScenario(t *testing.T) {
	f := newFixture(t, map[string]string{"i1": "Running Shoe"})
	ctx := context.Background()

	entry, err := f.svc.AddToCart(ctx, "u1", "i1")
	require.NoError(t, err)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "i1", entry.ItemID)
	assert.False(t, entry.ID.IsZero())

	_, err = f.svc.AddToCart(ctx, "u1", "i1")
	require.ErrorIs(t, err, global.ErrDuplicate)
	assert.Equal(t, "Item already in cart", err.Error())

	items, err := f.svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Running Shoe", items[0].Title)
	assert.Equal(t, entry.ID, items[0].CartID)

	removed, err := f.svc.RemoveFromCart(ctx, items[0].CartID.Hex())
	require.NoError(t, err)
	assert.Equal(t, entry.ID, removed.ID)

	items, err = f.svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAddToCart_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, tc := range []struct {
		name, userID, itemID string
		fields               []string
	}{
		{"no item", "u1", "", []string{"id"}},
		{"no user", "", "i1", []string{"userId"}},
		{"blank both", " ", "\t", []string{"id", "userId"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddToCart(ctx, tc.userID, tc.itemID)
			require.ErrorIs(t, err, global.ErrValidation)

			var appErr *global.Error
			require.ErrorAs(t, err, &appErr)
			var got []string
			for _, fe := range appErr.Fields {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tc.fields, got)
		})
	}

	entries, err := f.carts.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddToCart_ConcurrentCallsKeepOneEntry(t *testing.T) {
	f := newFixture(t, map[string]string{"i1": "Running Shoe"})
	ctx := context.Background()

	const n = 50
	var ok, dup int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddToCart(ctx, "u1", "i1")
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, global.ErrDuplicate):
				atomic.AddInt32(&dup, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(n-1), dup)

	entries, err := f.carts.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAddToCart_WithRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.RedisClient(redis.Options{Address: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	carts := memstore.NewCartStore()
	svc := NewService(carts, catalog.NewService(memstore.NewCatalogStore(), nil), redis.NewLocker(client, time.Second))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddToCart(ctx, "u1", "i1")
		}()
	}
	wg.Wait()

	entries, err := carts.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.False(t, mr.Exists("lock:cart:u1"))
}

// blindStore never finds an existing entry, as when two requests race past
// the lookup; the store's own uniqueness must still win.
type blindStore struct{ *memstore.CartStore }

func (blindStore) FindOne(context.Context, string, string) (*models.CartEntry, error) {
	return nil, global.ErrNotFound
}

func TestAddToCart_StoreUniquenessBacksLookup(t *testing.T) {
	store := blindStore{memstore.NewCartStore()}
	svc := NewService(store, catalog.NewService(memstore.NewCatalogStore(), nil), nil)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "u1", "i1")
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "u1", "i1")
	assert.ErrorIs(t, err, global.ErrDuplicate)
}

// deadlineStore fails the test if a locked store call has no deadline.
type deadlineStore struct {
	*memstore.CartStore
	t *testing.T
}

func (d deadlineStore) FindOne(ctx context.Context, userID, itemID string) (*models.CartEntry, error) {
	deadline, ok := ctx.Deadline()
	assert.True(d.t, ok)
	assert.LessOrEqual(d.t, time.Until(deadline), global.DefaultTimeout)
	return d.CartStore.FindOne(ctx, userID, itemID)
}

func (d deadlineStore) Insert(ctx context.Context, entry *models.CartEntry) error {
	_, ok := ctx.Deadline()
	assert.True(d.t, ok)
	return d.CartStore.Insert(ctx, entry)
}

func TestAddToCart_LockedCallsAreBounded(t *testing.T) {
	svc := NewService(deadlineStore{CartStore: memstore.NewCartStore(), t: t}, nil, nil)

	_, err := svc.AddToCart(context.Background(), "u1", "i1")
	require.NoError(t, err)
}

type brokenStore struct{ *memstore.CartStore }

func (brokenStore) FindOne(context.Context, string, string) (*models.CartEntry, error) {
	return nil, errors.New("socket closed")
}

func (brokenStore) FindByUserID(context.Context, string) ([]models.CartEntry, error) {
	return nil, errors.New("socket closed")
}

func TestStoreFailuresAreNotClientErrors(t *testing.T) {
	svc := NewService(brokenStore{memstore.NewCartStore()}, catalog.NewService(memstore.NewCatalogStore(), nil), nil)
	ctx := context.Background()

	var appErr *global.Error
	_, err := svc.AddToCart(ctx, "u1", "i1")
	require.Error(t, err)
	assert.False(t, errors.As(err, &appErr))

	_, err = svc.GetCart(ctx, "u1")
	require.Error(t, err)
	assert.False(t, errors.As(err, &appErr))
}

func TestRemoveFromCart_SecondCallIsNotFound(t *testing.T) {
	f := newFixture(t, map[string]string{"i1": "Running Shoe"})
	ctx := context.Background()

	entry, err := f.svc.AddToCart(ctx, "u1", "i1")
	require.NoError(t, err)

	_, err = f.svc.RemoveFromCart(ctx, entry.ID.Hex())
	require.NoError(t, err)

	_, err = f.svc.RemoveFromCart(ctx, entry.ID.Hex())
	require.ErrorIs(t, err, global.ErrNotFound)
	assert.Equal(t, "Item not found in cart", err.Error())

	// the catalog item id is not a cart id
	_, err = f.svc.RemoveFromCart(ctx, "i1")
	assert.ErrorIs(t, err, global.ErrNotFound)
}

func TestGetCart_DropsDanglingEntries(t *testing.T) {
	f := newFixture(t, map[string]string{"i1": "Running Shoe", "i2": "Hat", "i3": "Scarf"})
	ctx := context.Background()

	for _, id := range []string{"i1", "i2", "i3"} {
		_, err := f.svc.AddToCart(ctx, "u1", id)
		require.NoError(t, err)
	}
	_, err := f.catalog.RemoveItem(ctx, "i2")
	require.NoError(t, err)

	items, err := f.svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "i1", items[0].ID)
	assert.Equal(t, "i3", items[1].ID)

	// the entry itself is kept
	entries, err := f.carts.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestGetCart_EmptyUser(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, global.ErrValidation)

	items, err := f.svc.GetCart(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Empty(t, items)
}

// slowReader answers earlier ids more slowly so completion order is the
// reverse of entry order.
type slowReader struct {
	delays map[string]time.Duration
	fail   string
}

func (r slowReader) GetItem(ctx context.Context, id string) (*models.Item, error) {
	select {
	case <-time.After(r.delays[id]):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if id == r.fail {
		return nil, errors.New("catalog unavailable")
	}
	if _, ok := r.delays[id]; !ok {
		return nil, global.ErrNotFound
	}
	return &models.Item{ID: id, Title: "title " + id}, nil
}

func TestGetCart_KeepsEntryOrderNotCompletionOrder(t *testing.T) {
	carts := memstore.NewCartStore()
	ctx := context.Background()
	ids := []string{"a", "gone", "b", "c", "d"}
	for _, id := range ids {
		require.NoError(t, carts.Insert(ctx, &models.CartEntry{UserID: "u1", ItemID: id}))
	}

	reader := slowReader{delays: map[string]time.Duration{
		"a": 40 * time.Millisecond,
		"b": 30 * time.Millisecond,
		"c": 20 * time.Millisecond,
		"d": 0,
	}}
	svc := NewService(carts, reader, nil)

	items, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	var got []string
	for _, it := range items {
		got = append(got, it.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestGetCart_LookupFailureFailsCall(t *testing.T) {
	carts := memstore.NewCartStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		require.NoError(t, carts.Insert(ctx, &models.CartEntry{UserID: "u1", ItemID: id}))
	}
	svc := NewService(carts, slowReader{delays: map[string]time.Duration{"a": 0, "b": 0}, fail: "b"}, nil)

	_, err := svc.GetCart(ctx, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve item b")
}

func TestTopCarted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, pair := range [][2]string{{"u1", "a"}, {"u2", "a"}, {"u1", "b"}} {
		_, err := f.svc.AddToCart(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	counts, err := f.svc.TopCarted(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.ItemCartCount{{ItemID: "a", Count: 2}, {ItemID: "b", Count: 1}}, counts)
}
