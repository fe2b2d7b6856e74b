package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// CartEntry records that ItemID is in UserID's cart. ItemID references
// Item.ID by value and may dangle once the item leaves the catalog.
type CartEntry struct {
	ID     bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID string        `json:"userId" bson:"userId"`
	ItemID string        `json:"itemId" bson:"itemId"`
}

// CartItem is a resolved cart entry: the full item plus the entry identity
// needed to remove it again.
type CartItem struct {
	Item
	CartID bson.ObjectID `json:"cartId"`
}

type AddToCartRequest struct {
	UserID string `json:"userId"`
	ItemID string `json:"id"`
}

// ItemCartCount is one row of the cart popularity aggregation.
type ItemCartCount struct {
	ItemID string `json:"itemId" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}
