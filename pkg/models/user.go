package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is an account. Password holds the hash and is never serialized.
type User struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Email     string        `json:"email" bson:"email"`
	Password  string        `json:"-" bson:"password"`
	Age       int           `json:"age" bson:"age"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// SetTimestamps sets createdAt on first call and always updates updatedAt
func (u *User) SetTimestamps() {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
	Age      int    `json:"age" validate:"required,gt=0"`
	Email    string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type RegisterResult struct {
	Redirect string `json:"redirect"`
}
