package account

import (
	"context"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Store persists users. Create fails with global.ErrDuplicate on a taken
// email; FindByEmail fails with global.ErrNotFound.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// PasswordHasher derives and verifies password hashes. Compare returns nil
// only when password matches hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
