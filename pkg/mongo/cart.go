package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// CartStore persists cart entries. Uniqueness of (userId, itemId) is backed
// by the idx_cart_user_item_unique index, so Insert is the atomic check.
type CartStore struct {
	collection *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{collection: db.Collection(CartCollection)}
}

func (s *CartStore) Insert(ctx context.Context, entry *models.CartEntry) error {
	if entry.ID.IsZero() {
		entry.ID = bson.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, entry)
	return mapWriteErr(err, fmt.Sprintf("cart entry %s/%s", entry.UserID, entry.ItemID))
}

func (s *CartStore) FindOne(ctx context.Context, userID, itemID string) (*models.CartEntry, error) {
	filter := bson.D{
		{Key: "userId", Value: userID},
		{Key: "itemId", Value: itemID},
	}
	return findOne[models.CartEntry](ctx, s.collection.FindOne(ctx, filter), "cart entry")
}

// FindByUserID returns entries oldest first; ObjectIDs grow with insertion.
func (s *CartStore) FindByUserID(ctx context.Context, userID string) ([]models.CartEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.CartEntry](ctx, s.collection, bson.D{{Key: "userId", Value: userID}}, opts)
}

func (s *CartStore) DeleteByID(ctx context.Context, cartID string) (*models.CartEntry, error) {
	id, err := bson.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, fmt.Errorf("cart entry %q: %w", cartID, global.ErrNotFound)
	}
	return findOne[models.CartEntry](ctx, s.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}), "cart entry "+cartID)
}

func (s *CartStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, nil)
}
