package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order records a completed checkout. StripeID is the provider's unique
// charge id and doubles as the idempotency key: the orders collection
// carries a unique index on it, so at most one Order exists per StripeID.
// Orders are never updated or deleted by this service.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StripeID    string             `bson:"stripe_id" json:"stripeId"`
	EventID     string             `bson:"event_id" json:"eventId"`
	BuyerID     string             `bson:"buyer_id" json:"buyerId"`
	TotalAmount string             `bson:"total_amount" json:"totalAmount"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
