package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory twins of the Mongo repositories. They back STORAGE_DRIVER=memory
// and the handler/service tests. All values are copied in and out.

type MemoryHabitRepository struct {
	mu     sync.RWMutex
	habits map[primitive.ObjectID]models.Habit
	now    func() time.Time
}

func NewMemoryHabitRepository() *MemoryHabitRepository {
	return &MemoryHabitRepository{
		habits: make(map[primitive.ObjectID]models.Habit),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryHabitRepository) CreateHabit(_ context.Context, habit *models.Habit) (*models.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit.ID = primitive.NewObjectID()
	habit.CreatedAt = r.now()
	habit.UpdatedAt = habit.CreatedAt
	r.habits[habit.ID] = *habit
	return habit, nil
}

// PutHabit stores h as-is, keeping its ID and timestamps.
func (r *MemoryHabitRepository) PutHabit(h models.Habit) models.Habit {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	r.habits[h.ID] = h
	return h
}

func (r *MemoryHabitRepository) GetHabitByID(_ context.Context, id primitive.ObjectID) (*models.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.habits[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

func (r *MemoryHabitRepository) UpdateHabit(_ context.Context, habit *models.Habit) (*models.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.habits[habit.ID]
	if !ok {
		return nil, ErrNotFound
	}
	habit.UserID = stored.UserID
	habit.CreatedAt = stored.CreatedAt
	habit.UpdatedAt = r.now()
	r.habits[habit.ID] = *habit
	return habit, nil
}

func (r *MemoryHabitRepository) DeleteHabit(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.habits[id]; !ok {
		return ErrNotFound
	}
	delete(r.habits, id)

	for k, h := range r.habits {
		if h.RelatedHabitID != nil && *h.RelatedHabitID == id {
			h.RelatedHabitID = nil
			h.UpdatedAt = r.now()
			r.habits[k] = h
		}
	}
	return nil
}

func (r *MemoryHabitRepository) ListHabitsByUser(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Habit, int64, error) {
	return r.page(func(h models.Habit) bool { return h.UserID == userID }, skip, limit), r.count(func(h models.Habit) bool { return h.UserID == userID }), nil
}

func (r *MemoryHabitRepository) ListPublicHabits(_ context.Context, skip, limit int64) ([]models.Habit, int64, error) {
	return r.page(func(h models.Habit) bool { return h.IsPublic }, skip, limit), r.count(func(h models.Habit) bool { return h.IsPublic }), nil
}

func (r *MemoryHabitRepository) ListAllHabits(_ context.Context) ([]models.Habit, error) {
	return r.sorted(func(models.Habit) bool { return true }), nil
}

func (r *MemoryHabitRepository) count(match func(models.Habit) bool) int64 {
	return int64(len(r.sorted(match)))
}

func (r *MemoryHabitRepository) page(match func(models.Habit) bool, skip, limit int64) []models.Habit {
	all := r.sorted(match)
	if skip >= int64(len(all)) {
		return []models.Habit{}
	}
	end := int64(len(all))
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return all[skip:end]
}

func (r *MemoryHabitRepository) sorted(match func(models.Habit) bool) []models.Habit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Habit{}
	for _, h := range r.habits {
		if match(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Time != b.Time {
			return a.Time.String() < b.Time.String()
		}
		if a.Place != b.Place {
			return a.Place < b.Place
		}
		return a.ID.Hex() < b.ID.Hex()
	})
	return out
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return user, nil
}

func (r *MemoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) SetTelegramChatID(_ context.Context, userID primitive.ObjectID, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range r.users {
		if id != userID && u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			u.TelegramChatID = nil
			r.users[id] = u
		}
	}
	target.TelegramChatID = &chatID
	target.UpdatedAt = time.Now().UTC()
	r.users[userID] = target
	return nil
}

func (r *MemoryUserRepository) GetTelegramRecipients(_ context.Context) (map[primitive.ObjectID]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipients := make(map[primitive.ObjectID]int64)
	for id, u := range r.users {
		if u.TelegramChatID != nil {
			recipients[id] = *u.TelegramChatID
		}
	}
	return recipients, nil
}

type MemoryReminderDeliveryRepository struct {
	mu         sync.Mutex
	deliveries []models.ReminderDelivery
}

func NewMemoryReminderDeliveryRepository() *MemoryReminderDeliveryRepository {
	return &MemoryReminderDeliveryRepository{}
}

func (r *MemoryReminderDeliveryRepository) RecordDelivery(_ context.Context, d *models.ReminderDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.ID = primitive.NewObjectID()
	d.ExpiresAt = d.CreatedAt.Add(DeliveryRetention)
	r.deliveries = append(r.deliveries, *d)
	return nil
}

func (r *MemoryReminderDeliveryRepository) DeleteExpiredDeliveries(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.deliveries[:0]
	var deleted int64
	for _, d := range r.deliveries {
		if d.ExpiresAt.After(now) {
			kept = append(kept, d)
		} else {
			deleted++
		}
	}
	r.deliveries = kept
	return deleted, nil
}

// Deliveries returns a snapshot of every stored record.
func (r *MemoryReminderDeliveryRepository) Deliveries() []models.ReminderDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ReminderDelivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}
