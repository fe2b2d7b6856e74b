package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{collection: db.Collection(UsersCollection)}
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.collection.FindOne(ctx, bson.D{{Key: "email", Value: email}}), "user")
}

// Create relies on idx_user_email_unique for the duplicate email check.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, user)
	return mapWriteErr(err, "user "+user.Email)
}
