package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// maxLookups bounds concurrent catalog lookups per GetCart call.
const maxLookups = 8

type Service struct {
	store  Store
	items  ItemReader
	locker Locker
}

// NewService wires the cart. A nil locker falls back to an in-process
// KeyedMutex.
func NewService(store Store, items ItemReader, locker Locker) *Service {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	return &Service{store: store, items: items, locker: locker}
}

// AddToCart puts itemID in userID's cart. A user can hold each item once;
// the lookup and the insert run under the user's lock and the store's
// unique index rejects anything that slips past.
func (s *Service) AddToCart(ctx context.Context, userID, itemID string) (*models.CartEntry, error) {
	userID, itemID = strings.TrimSpace(userID), strings.TrimSpace(itemID)

	var missing []global.ValidationError
	if itemID == "" {
		missing = append(missing, global.ValidationError{Field: "id", Message: "Item ID is required", Code: "required"})
	}
	if userID == "" {
		missing = append(missing, global.ValidationError{Field: "userId", Message: "User ID is required", Code: "required"})
	}
	if len(missing) > 0 {
		return nil, global.NewError(global.ErrValidation, "Item ID and User ID required", missing...)
	}

	unlock, err := s.locker.Lock(ctx, "cart:"+userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart of %s: %w", userID, err)
	}
	defer unlock()

	// keep the locked section inside the lock's TTL
	ctx, cancel := global.WithDefaultTimeout(ctx)
	defer cancel()

	_, err = s.store.FindOne(ctx, userID, itemID)
	switch {
	case err == nil:
		return nil, errAlreadyInCart()
	case !errors.Is(err, global.ErrNotFound):
		return nil, fmt.Errorf("find cart entry: %w", err)
	}

	entry := &models.CartEntry{UserID: userID, ItemID: itemID}
	if err := s.store.Insert(ctx, entry); err != nil {
		if errors.Is(err, global.ErrDuplicate) {
			return nil, errAlreadyInCart()
		}
		return nil, fmt.Errorf("insert cart entry: %w", err)
	}

	log.Debug().Str("userId", userID).Str("itemId", itemID).Str("cartId", entry.ID.Hex()).Msg("item added to cart")
	return entry, nil
}

func errAlreadyInCart() error {
	return global.NewError(global.ErrDuplicate, "Item already in cart")
}

// RemoveFromCart deletes the entry identified by cartID and returns it.
func (s *Service) RemoveFromCart(ctx context.Context, cartID string) (*models.CartEntry, error) {
	entry, err := s.store.DeleteByID(ctx, strings.TrimSpace(cartID))
	if err != nil {
		if errors.Is(err, global.ErrNotFound) {
			return nil, global.NewError(global.ErrNotFound, "Item not found in cart", global.ValidationError{
				Field: "id", Message: "No cart entry exists with this id", Code: "not_found",
			})
		}
		return nil, fmt.Errorf("delete cart entry %s: %w", cartID, err)
	}
	return entry, nil
}

// GetCart joins userID's entries against the catalog. Entries whose item
// no longer exists are skipped; the rest keep the store's entry order.
func (s *Service) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, global.NewError(global.ErrValidation, "User ID required", global.ValidationError{
			Field: "userId", Message: "User ID is required", Code: "required",
		})
	}

	entries, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find cart of %s: %w", userID, err)
	}

	resolved := make([]*models.CartItem, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLookups)
	for i, entry := range entries {
		g.Go(func() error {
			item, err := s.items.GetItem(gctx, entry.ItemID)
			if errors.Is(err, global.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("resolve item %s: %w", entry.ItemID, err)
			}
			resolved[i] = &models.CartItem{Item: *item, CartID: entry.ID}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.CartItem, 0, len(entries))
	for _, ci := range resolved {
		if ci != nil {
			out = append(out, *ci)
		}
	}
	if dropped := len(entries) - len(out); dropped > 0 {
		log.Debug().Str("userId", userID).Int("dangling", dropped).Msg("skipped cart entries without catalog item")
	}
	return out, nil
}

// TopCarted lists the items held in the most carts.
func (s *Service) TopCarted(ctx context.Context, limit int) ([]models.ItemCartCount, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	counts, err := s.store.CountByItem(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("count carted items: %w", err)
	}
	return counts, nil
}
