package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// findAll runs a query and decodes every document. It never returns a nil
// slice so empty results serialize as [].
func findAll[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// findOne decodes a single document, mapping "no documents" to ErrNotFound.
func findOne[T any](ctx context.Context, result *mongo.SingleResult, what string) (*T, error) {
	var doc T
	if err := result.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", what, global.ErrNotFound)
		}
		return nil, err
	}
	return &doc, nil
}

// mapWriteErr turns unique index violations into ErrDuplicate.
func mapWriteErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", what, global.ErrDuplicate)
	}
	return err
}
