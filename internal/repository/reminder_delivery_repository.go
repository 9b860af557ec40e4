package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DeliveryRetention is how long delivery records are kept.
const DeliveryRetention = 7 * 24 * time.Hour

type ReminderDeliveryRepository struct {
	collection *mongo.Collection
}

func NewReminderDeliveryRepository(db *mongo.Database) *ReminderDeliveryRepository {
	return &ReminderDeliveryRepository{
		collection: db.Collection("reminder_deliveries"),
	}
}

// EnsureIndexes adds a TTL index on expires_at.
func (r *ReminderDeliveryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create reminder delivery indexes: %w", err)
	}
	return nil
}

// RecordDelivery inserts one delivery attempt
func (r *ReminderDeliveryRepository) RecordDelivery(ctx context.Context, d *models.ReminderDelivery) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.ExpiresAt = d.CreatedAt.Add(DeliveryRetention)

	_, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert reminder delivery")
		return fmt.Errorf("failed to record reminder delivery: %w", err)
	}
	return nil
}

// DeleteExpiredDeliveries removes records past their retention
func (r *ReminderDeliveryRepository) DeleteExpiredDeliveries(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired deliveries: %w", err)
	}
	logrus.Infof("Deleted %d expired reminder deliveries", result.DeletedCount)
	return result.DeletedCount, nil
}
