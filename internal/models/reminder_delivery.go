package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// ReminderDelivery records one attempt to deliver a habit reminder.
type ReminderDelivery struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HabitID   primitive.ObjectID `bson:"habit_id" json:"habit_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ChatID    int64              `bson:"chat_id" json:"chat_id"`
	Text      string             `bson:"text" json:"text"`
	Status    string             `bson:"status" json:"status"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"` // purged by the cleanup job
}
