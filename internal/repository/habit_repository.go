package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listing order for every habit query
var habitSort = bson.D{{Key: "time", Value: 1}, {Key: "place", Value: 1}, {Key: "_id", Value: 1}}

// HabitRepository struct handles database operations related to habits
type HabitRepository struct {
	collection *mongo.Collection
}

// NewHabitRepository creates a new instance of HabitRepository
func NewHabitRepository(db *mongo.Database) *HabitRepository {
	return &HabitRepository{
		collection: db.Collection("habits"),
	}
}

// EnsureIndexes creates the indexes the listing queries rely on.
func (r *HabitRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "time", Value: 1}, {Key: "place", Value: 1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "time", Value: 1}, {Key: "place", Value: 1}}},
		{Keys: bson.D{{Key: "related_habit", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create habit indexes: %w", err)
	}
	return nil
}

// CreateHabit inserts a habit and stamps its creation time
func (r *HabitRepository) CreateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	now := time.Now().UTC()
	habit.CreatedAt = now
	habit.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, habit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert habit")
		return nil, fmt.Errorf("failed to insert habit: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, fmt.Errorf("failed to cast inserted habit ID")
	}
	habit.ID = insertedID

	logger.Log.WithField("habit_id", habit.ID.Hex()).Info("Habit created successfully")
	return habit, nil
}

// GetHabitByID fetches a habit by its ID
func (r *HabitRepository) GetHabitByID(ctx context.Context, id primitive.ObjectID) (*models.Habit, error) {
	var habit models.Habit
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&habit)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to find habit by ID")
		return nil, fmt.Errorf("failed to find habit: %w", err)
	}
	return &habit, nil
}

// UpdateHabit writes every mutable field; owner and creation time never change
func (r *HabitRepository) UpdateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	habit.UpdatedAt = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": habit.ID}, bson.M{"$set": bson.M{
		"place":            habit.Place,
		"time":             habit.Time,
		"action":           habit.Action,
		"is_pleasant":      habit.IsPleasant,
		"related_habit":    habit.RelatedHabitID,
		"periodicity":      habit.Periodicity,
		"reward":           habit.Reward,
		"time_to_complete": habit.TimeToComplete,
		"is_public":        habit.IsPublic,
		"updated_at":       habit.UpdatedAt,
	}})
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", habit.ID.Hex()).Error("Failed to update habit")
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	logger.Log.WithField("habit_id", habit.ID.Hex()).Info("Habit updated successfully")
	return habit, nil
}

// DeleteHabit removes a habit and unlinks habits that used it as their reward
func (r *HabitRepository) DeleteHabit(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to delete habit")
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	unlinked, err := r.collection.UpdateMany(ctx,
		bson.M{"related_habit": id},
		bson.M{"$set": bson.M{"related_habit": nil, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to unlink related habits")
		return fmt.Errorf("failed to unlink related habits: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"habit_id": id.Hex(),
		"unlinked": unlinked.ModifiedCount,
	}).Info("Habit deleted successfully")
	return nil
}

// ListHabitsByUser returns one page of a user's habits and the total count
func (r *HabitRepository) ListHabitsByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Habit, int64, error) {
	return r.page(ctx, bson.M{"user_id": userID}, skip, limit)
}

// ListPublicHabits returns one page of public habits of all users
func (r *HabitRepository) ListPublicHabits(ctx context.Context, skip, limit int64) ([]models.Habit, int64, error) {
	return r.page(ctx, bson.M{"is_public": true}, skip, limit)
}

// ListAllHabits scans the whole collection
func (r *HabitRepository) ListAllHabits(ctx context.Context) ([]models.Habit, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(habitSort))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all habits")
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer cursor.Close(ctx)

	var habits []models.Habit
	if err := cursor.All(ctx, &habits); err != nil {
		return nil, fmt.Errorf("failed to decode habits: %w", err)
	}

	logger.Log.WithField("count", len(habits)).Debug("All habits fetched")
	return habits, nil
}

func (r *HabitRepository) page(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Habit, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count habits")
		return nil, 0, fmt.Errorf("failed to count habits: %w", err)
	}

	opts := options.Find().SetSort(habitSort).SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch habits")
		return nil, 0, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer cursor.Close(ctx)

	habits := []models.Habit{}
	for cursor.Next(ctx) {
		var habit models.Habit
		if err := cursor.Decode(&habit); err != nil {
			logger.Log.WithError(err).Error("Failed to decode habit")
			return nil, 0, fmt.Errorf("failed to decode habit: %w", err)
		}
		habits = append(habits, habit)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("habit cursor failed: %w", err)
	}

	return habits, total, nil
}
