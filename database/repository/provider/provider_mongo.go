package providerRepo

import (
	"context"
	"fmt"
	"time"

	"homeease/database"
	"homeease/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll  *mongo.Collection
	slots *mongo.Collection
}

func NewMongoProviderRepo(db *mongo.Database) (*MongoProviderRepo, error) {
	repo := &MongoProviderRepo{
		coll:  db.Collection("providers"),
		slots: db.Collection("availability_slots"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoProviderRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}
	if _, err := r.slots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "providerId", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a provider document by ID.
func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var provider models.Provider
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&provider); err != nil {
		return nil, database.TranslateError(err)
	}
	return &provider, nil
}

// GetAvailabilitySlots returns every slot the provider declared, recurring and one-off.
func (r *MongoProviderRepo) GetAvailabilitySlots(ctx context.Context, providerID string) ([]models.AvailabilitySlot, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.slots.Find(ctx, bson.M{"providerId": providerID})
	if err != nil {
		return nil, fmt.Errorf("error fetching availability slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.AvailabilitySlot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding availability slots: %w", err)
	}
	return slots, nil
}
