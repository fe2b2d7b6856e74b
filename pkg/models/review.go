package models

// Review is an embedded customer review on an item.
type Review struct {
	User    string   `json:"user" bson:"user" validate:"required"`
	Comment string   `json:"comment" bson:"comment" validate:"required"`
	Rating  *float64 `json:"rating" bson:"rating" validate:"required,gte=0,lte=5"`
}

func NewReview(user, comment string, rating float64) Review {
	return Review{User: user, Comment: comment, Rating: &rating}
}

// IsPositive checks if the review is positive (4-5 stars)
func (r *Review) IsPositive() bool {
	return r.Rating != nil && *r.Rating >= 4
}

// IsNegative checks if the review is negative (1-2 stars)
func (r *Review) IsNegative() bool {
	return r.Rating != nil && *r.Rating <= 2
}
