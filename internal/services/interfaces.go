package services

import (
	"context"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HabitStore is implemented by repository.HabitRepository and its in-memory twin.
type HabitStore interface {
	CreateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	GetHabitByID(ctx context.Context, id primitive.ObjectID) (*models.Habit, error)
	UpdateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id primitive.ObjectID) error
	ListHabitsByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Habit, int64, error)
	ListPublicHabits(ctx context.Context, skip, limit int64) ([]models.Habit, int64, error)
	ListAllHabits(ctx context.Context) ([]models.Habit, error)
}

// UserStore is implemented by repository.UserRepository and its in-memory twin.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetTelegramChatID(ctx context.Context, userID primitive.ObjectID, chatID int64) error
	GetTelegramRecipients(ctx context.Context) (map[primitive.ObjectID]int64, error)
}

// MessageSender delivers a text message to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
