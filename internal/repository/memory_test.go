package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryHabitRepository_PagingOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHabitRepository()
	owner := primitive.NewObjectID()

	for _, h := range []models.Habit{
		{UserID: owner, Place: "b", Time: models.TimeOfDay{Hour: 9}},
		{UserID: owner, Place: "a", Time: models.TimeOfDay{Hour: 9}},
		{UserID: owner, Place: "z", Time: models.TimeOfDay{Hour: 7}},
		{UserID: primitive.NewObjectID(), Place: "x", Time: models.TimeOfDay{Hour: 1}, IsPublic: true},
	} {
		h := h
		_, err := repo.CreateHabit(ctx, &h)
		require.NoError(t, err)
	}

	first, total, err := repo.ListHabitsByUser(ctx, owner, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, first, 2)
	assert.Equal(t, "z", first[0].Place)
	assert.Equal(t, "a", first[1].Place)

	second, _, err := repo.ListHabitsByUser(ctx, owner, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "b", second[0].Place)

	public, total, err := repo.ListPublicHabits(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "x", public[0].Place)

	empty, _, err := repo.ListHabitsByUser(ctx, owner, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryHabitRepository_DeleteUnlinksRelated(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHabitRepository()

	reward, err := repo.CreateHabit(ctx, &models.Habit{IsPleasant: true})
	require.NoError(t, err)
	rewardID := reward.ID
	useful, err := repo.CreateHabit(ctx, &models.Habit{RelatedHabitID: &rewardID})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteHabit(ctx, reward.ID))

	got, err := repo.GetHabitByID(ctx, useful.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RelatedHabitID)

	assert.ErrorIs(t, repo.DeleteHabit(ctx, reward.ID), ErrNotFound)
}

func TestMemoryHabitRepository_UpdateKeepsOwnerAndCreation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHabitRepository()
	owner := primitive.NewObjectID()

	created, err := repo.CreateHabit(ctx, &models.Habit{UserID: owner, Action: "read"})
	require.NoError(t, err)
	createdAt := created.CreatedAt

	changed := *created
	changed.UserID = primitive.NewObjectID()
	changed.CreatedAt = time.Time{}
	changed.Action = "write"

	updated, err := repo.UpdateHabit(ctx, &changed)
	require.NoError(t, err)
	assert.Equal(t, owner, updated.UserID)
	assert.Equal(t, createdAt, updated.CreatedAt)
	assert.Equal(t, "write", updated.Action)

	_, err = repo.UpdateHabit(ctx, &models.Habit{ID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepository_TelegramChatMovesBetweenUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	alice, err := repo.CreateUser(ctx, &models.User{Username: "alice"})
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, &models.User{Username: "bob"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, &models.User{Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.SetTelegramChatID(ctx, alice.ID, 100))
	require.NoError(t, repo.SetTelegramChatID(ctx, bob.ID, 100))

	recipients, err := repo.GetTelegramRecipients(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[primitive.ObjectID]int64{bob.ID: 100}, recipients)

	assert.ErrorIs(t, repo.SetTelegramChatID(ctx, primitive.NewObjectID(), 1), ErrNotFound)
}

func TestMemoryReminderDeliveryRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReminderDeliveryRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.RecordDelivery(ctx, &models.ReminderDelivery{CreatedAt: now.Add(-8 * 24 * time.Hour)}))
	require.NoError(t, repo.RecordDelivery(ctx, &models.ReminderDelivery{CreatedAt: now}))

	deleted, err := repo.DeleteExpiredDeliveries(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, repo.Deliveries(), 1)
}
