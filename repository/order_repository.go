package repository

import (
	"context"
	"time"

	"checkout-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// opTimeout bounds every storage call. A call that outlives it fails as
// ErrUnavailable and the webhook answers with a retryable status.
const opTimeout = 5 * time.Second

type OrderRepository struct {
	orders *mongo.Collection
	events *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		orders: db.Collection("orders"),
		events: db.Collection("events"),
	}
}

func (r *OrderRepository) FindByStripeID(ctx context.Context, stripeID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	if err := r.orders.FindOne(ctx, bson.M{"stripe_id": stripeID}).Decode(&order); err != nil {
		return nil, mapMongoErr(err)
	}
	return &order, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.orders.InsertOne(ctx, order)
	if err != nil {
		return mapMongoErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// EventExists checks the externally owned events collection. Event ids arrive
// as opaque strings from checkout metadata; documents keyed by ObjectID and by
// plain string both occur, so both forms are matched.
func (r *OrderRepository) EventExists(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count, err := r.events.CountDocuments(ctx, idFilter(eventID), options.Count().SetLimit(1))
	if err != nil {
		return false, mapMongoErr(err)
	}
	return count > 0, nil
}

// EnsureIndexes creates the unique index on stripe_id. This index is the only
// mutual-exclusion mechanism in the pipeline: concurrent redeliveries of the
// same event race to insert and exactly one wins.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "stripe_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return mapMongoErr(err)
}

// idFilter matches _id stored either as an ObjectID or as a raw string.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}
