package bookingRepo

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

const queryTimeout = 5 * time.Second

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// NewMongoBookingRepo constructs the repository and makes sure its indexes exist.
func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{
		coll:     db.Collection("bookings"),
		counters: db.Collection("counters"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := database.NewContext(ctx, queryTimeout)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		return nil, database.TranslateError(err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) FindByChargeID(ctx context.Context, chargeID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"payment.chargeId": chargeID})
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := database.NewContext(ctx, queryTimeout)
	defer cancel()

	booking.Version = 1
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("insert booking %s: %w", booking.ID, database.TranslateError(err))
	}
	return nil
}

func (r *MongoBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := database.NewContext(ctx, queryTimeout)
	defer cancel()

	expected := booking.Version
	next := *booking
	next.Version = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": booking.ID, "version": expected}, &next)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", booking.ID, database.TranslateError(err))
	}
	if res.MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{"id": booking.ID})
		if err != nil {
			return fmt.Errorf("update booking %s: %w", booking.ID, err)
		}
		if count == 0 {
			return database.ErrNotFound
		}
		return database.ErrVersionConflict
	}
	booking.Version = next.Version
	return nil
}

func (r *MongoBookingRepo) FindConflicts(ctx context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	ctx, cancel := database.NewContext(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"providerId":     providerID,
		"status":         bson.M{"$nin": bson.A{models.BookingCancelled, models.BookingRejected}},
		"appointmentAt":  bson.M{"$lt": end.UTC()},
		"appointmentEnd": bson.M{"$gt": start.UTC()},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching conflicting bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding conflicting bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) NextSerial(ctx context.Context, t time.Time) (int, error) {
	ctx, cancel := database.NewContext(ctx, queryTimeout)
	defer cancel()

	key := "booking-" + t.UTC().Format("20060102")
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx, bson.M{"_id": key}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("increment serial counter %s: %w", key, err)
	}
	return counter.Seq, nil
}

func (r *MongoBookingRepo) List(ctx context.Context, f ListFilter) ([]models.Booking, int64, error) {
	ctx, cancel := database.NewContext(ctx, queryTimeout)
	defer cancel()

	f = f.Normalize()
	filter := bson.M{}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.ProviderID != "" {
		filter["providerId"] = f.ProviderID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "appointmentAt", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.PageSize)).
		SetLimit(int64(f.PageSize))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, total, nil
}
