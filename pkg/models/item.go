package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const DefaultCurrency = "USD"

// Discount is optional on an item; when present both fields are required.
// Pointers keep a missing field apart from an explicit zero.
type Discount struct {
	Percentage         *float64 `json:"percentage" bson:"percentage" validate:"required,gt=0,lte=100"`
	PriceAfterDiscount *float64 `json:"priceAfterDiscount" bson:"priceAfterDiscount" validate:"required,gte=0"`
}

func NewDiscount(percentage, priceAfterDiscount float64) *Discount {
	return &Discount{Percentage: &percentage, PriceAfterDiscount: &priceAfterDiscount}
}

// SuggestedProduct is a lightweight reference to another catalog item.
type SuggestedProduct struct {
	ID    string  `json:"id" bson:"id" validate:"required"`
	Title string  `json:"title" bson:"title" validate:"required"`
	Price float64 `json:"price" bson:"price" validate:"gt=0"`
	Image string  `json:"image" bson:"image" validate:"required"`
}

// Item is a purchasable catalog record. ID is the business key; MongoID is
// the store generated identity.
type Item struct {
	MongoID           bson.ObjectID      `json:"_id" bson:"_id,omitempty"`
	ID                string             `json:"id" bson:"id" validate:"required"`
	Title             string             `json:"title" bson:"title" validate:"required"`
	Price             float64            `json:"price" bson:"price" validate:"gt=0"`
	Currency          string             `json:"currency" bson:"currency"`
	ShortDescription  string             `json:"shortDescription" bson:"shortDescription" validate:"required"`
	FullDescription   string             `json:"fullDescription" bson:"fullDescription" validate:"required"`
	Rating            float64            `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	Reviews           []Review           `json:"reviews" bson:"reviews" validate:"dive"`
	Discount          *Discount          `json:"discount,omitempty" bson:"discount,omitempty"`
	SuggestedProducts []SuggestedProduct `json:"suggestedProducts" bson:"suggestedProducts" validate:"dive"`
	Images            []string           `json:"images" bson:"images" validate:"required,min=1,dive,required"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ApplyDefaults fills the fields the catalog defaults on insert.
func (i *Item) ApplyDefaults() {
	if i.Currency == "" {
		i.Currency = DefaultCurrency
	}
	if i.Reviews == nil {
		i.Reviews = []Review{}
	}
	if i.SuggestedProducts == nil {
		i.SuggestedProducts = []SuggestedProduct{}
	}
	i.SetTimestamps()
}

func (i *Item) SetTimestamps() {
	now := time.Now().UTC()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now
}

// HasDiscount reports whether a usable discount is attached.
func (i *Item) HasDiscount() bool {
	return i.Discount != nil && i.Discount.PriceAfterDiscount != nil
}

// EffectivePrice is the discounted price when a discount exists.
func (i *Item) EffectivePrice() float64 {
	if i.HasDiscount() {
		return *i.Discount.PriceAfterDiscount
	}
	return i.Price
}

// ReviewSentiment counts the positive and negative reviews.
func (i *Item) ReviewSentiment() (positive, negative int) {
	for k := range i.Reviews {
		switch {
		case i.Reviews[k].IsPositive():
			positive++
		case i.Reviews[k].IsNegative():
			negative++
		}
	}
	return positive, negative
}
