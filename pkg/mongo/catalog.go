package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type CatalogStore struct {
	collection *mongo.Collection
}

func NewCatalogStore(db *mongo.Database) *CatalogStore {
	return &CatalogStore{collection: db.Collection(ItemsCollection)}
}

func (s *CatalogStore) FindByID(ctx context.Context, id string) (*models.Item, error) {
	return findOne[models.Item](ctx, s.collection.FindOne(ctx, bson.D{{Key: "id", Value: id}}), "item "+id)
}

func (s *CatalogStore) FindAll(ctx context.Context) ([]models.Item, error) {
	return findAll[models.Item](ctx, s.collection, bson.D{})
}

// SearchByTitle matches text anywhere in the title, ignoring case. The text
// is quoted so it never acts as a pattern.
func (s *CatalogStore) SearchByTitle(ctx context.Context, text string) ([]models.Item, error) {
	filter := bson.D{{Key: "title", Value: bson.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}}}
	return findAll[models.Item](ctx, s.collection, filter)
}

func (s *CatalogStore) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	type idOnly struct {
		ID string `bson:"id"`
	}
	filter := bson.D{{Key: "id", Value: bson.D{{Key: "$in", Value: ids}}}}
	docs, err := findAll[idOnly](ctx, s.collection, filter)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out, nil
}

// InsertMany writes the batch in order. Every document gets a fresh _id so
// a failure part way through can be rolled back by deleting exactly the
// documents this call wrote, keeping the batch all or nothing.
func (s *CatalogStore) InsertMany(ctx context.Context, items []models.Item) ([]models.Item, error) {
	out := make([]models.Item, len(items))
	ids := make([]bson.ObjectID, len(items))
	for i, item := range items {
		item.MongoID = bson.NewObjectID()
		out[i] = item
		ids[i] = item.MongoID
	}

	if _, err := s.collection.InsertMany(ctx, out); err != nil {
		if written := insertedPrefix(err, len(ids)); written > 0 {
			filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids[:written]}}}}
			if _, rbErr := s.collection.DeleteMany(context.WithoutCancel(ctx), filter); rbErr != nil {
				log.Error().Err(rbErr).Int("written", written).Msg("rollback of partial item insert failed")
			}
		}
		return nil, mapWriteErr(err, fmt.Sprintf("insert %d items", len(items)))
	}
	return out, nil
}

// insertedPrefix is how many leading documents of an ordered insert reached
// the collection. Without a write error index every id is assumed written;
// they were all minted by this call so deleting them is safe.
func insertedPrefix(err error, total int) int {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		first := bwe.WriteErrors[0].Index
		for _, we := range bwe.WriteErrors[1:] {
			if we.Index < first {
				first = we.Index
			}
		}
		if first >= 0 && first <= total {
			return first
		}
	}
	return total
}

func (s *CatalogStore) DeleteByID(ctx context.Context, id string) (*models.Item, error) {
	return findOne[models.Item](ctx, s.collection.FindOneAndDelete(ctx, bson.D{{Key: "id", Value: id}}), "item "+id)
}
