package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	ItemsCollection = "items"
	CartCollection  = "cartitems"
	UsersCollection = "users"
)

func NewClient(uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("create MongoDB client: %w", err)
	}
	return client, nil
}

// InitMongoDB connects, verifies the connection with a ping and returns the
// named database.
func InitMongoDB(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := NewClient(uri)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Info().Str("database", dbName).Msg("connected to MongoDB")
	return client.Database(dbName), nil
}
