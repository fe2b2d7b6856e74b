package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Items: business key lookups and bulk insert collisions
	{
		CollectionName: ItemsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_item_id_unique"),
		},
	},
	// Cart: one entry per (user, item); also serves FindByUserID
	{
		CollectionName: CartCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "itemId", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_cart_user_item_unique"),
		},
	},
	// Cart: popularity aggregation
	{
		CollectionName: CartCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "itemId", Value: 1}},
			Options: options.Index().SetName("idx_cart_item"),
		},
	},
	// Users
	{
		CollectionName: UsersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_email_unique"),
		},
	},
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	log.Debug().Int("count", len(requiredIndexes)).Msg("ensuring indexes")

	for _, idxConfig := range requiredIndexes {
		indexName, err := db.Collection(idxConfig.CollectionName).Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", idxConfig.CollectionName, err)
		}

		log.Info().Str("index", indexName).Str("collection", idxConfig.CollectionName).Msg("index ready")
	}

	return nil
}
