package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "serialNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		// overlap lookups
		{Keys: bson.D{
			{Key: "providerId", Value: 1},
			{Key: "appointmentAt", Value: 1},
			{Key: "appointmentEnd", Value: 1},
		}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "appointmentAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "payment.chargeId", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(bson.M{"payment.chargeId": bson.M{"$exists": true}}),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
