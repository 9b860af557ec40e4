package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"github.com/Dias221467/Habit_Tracker/internal/validation"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrInvalidPage   = errors.New("invalid page")
)

// HabitService encapsulates the business logic for habits.
type HabitService struct {
	repo     HabitStore
	pageSize int64
}

// NewHabitService creates a new instance of HabitService.
func NewHabitService(repo HabitStore, pageSize int) *HabitService {
	if pageSize <= 0 {
		pageSize = 2
	}
	return &HabitService{
		repo:     repo,
		pageSize: int64(pageSize),
	}
}

// PageSize is the number of habits per listing page.
func (s *HabitService) PageSize() int64 {
	return s.pageSize
}

// CreateHabit validates the payload and stores a habit owned by ownerID.
func (s *HabitService) CreateHabit(ctx context.Context, ownerID primitive.ObjectID, in models.HabitInput) (*models.Habit, error) {
	fields, err := s.validate(ctx, in, false, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", ownerID.Hex()).Warn("Habit rejected on create")
		return nil, err
	}

	habit := &models.Habit{UserID: ownerID}
	fields.Apply(habit)

	created, err := s.repo.CreateHabit(ctx, habit)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	logger.Log.WithField("habit_id", created.ID.Hex()).Info("Habit created in service layer")
	return created, nil
}

// GetHabit returns a habit only when ownerID owns it.
func (s *HabitService) GetHabit(ctx context.Context, ownerID primitive.ObjectID, id string) (*models.Habit, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrHabitNotFound
	}

	habit, err := s.repo.GetHabitByID(ctx, objID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	// Other users' habits are invisible here, public or not.
	if habit.UserID != ownerID {
		logger.Log.WithFields(map[string]interface{}{
			"habit_id": id,
			"user_id":  ownerID.Hex(),
		}).Warn("Access to foreign habit refused")
		return nil, ErrHabitNotFound
	}
	return habit, nil
}

// UpdateHabit applies a full (partial=false) or partial update.
func (s *HabitService) UpdateHabit(ctx context.Context, ownerID primitive.ObjectID, id string, in models.HabitInput, partial bool) (*models.Habit, error) {
	existing, err := s.GetHabit(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.validate(ctx, in, partial, existing)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id).Warn("Habit rejected on update")
		return nil, err
	}

	updated := *existing
	fields.Apply(&updated)

	saved, err := s.repo.UpdateHabit(ctx, &updated)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	logger.Log.WithField("habit_id", id).Info("Habit updated in service layer")
	return saved, nil
}

// DeleteHabit removes an owned habit.
func (s *HabitService) DeleteHabit(ctx context.Context, ownerID primitive.ObjectID, id string) error {
	habit, err := s.GetHabit(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteHabit(ctx, habit.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	logger.Log.WithField("habit_id", id).Info("Habit deleted in service layer")
	return nil
}

// ListHabits returns page (1-based) of the owner's habits and the total count.
func (s *HabitService) ListHabits(ctx context.Context, ownerID primitive.ObjectID, page int) ([]models.Habit, int64, error) {
	return s.list(ctx, page, func(skip, limit int64) ([]models.Habit, int64, error) {
		return s.repo.ListHabitsByUser(ctx, ownerID, skip, limit)
	})
}

// ListPublicHabits returns page (1-based) of public habits.
func (s *HabitService) ListPublicHabits(ctx context.Context, page int) ([]models.Habit, int64, error) {
	return s.list(ctx, page, func(skip, limit int64) ([]models.Habit, int64, error) {
		return s.repo.ListPublicHabits(ctx, skip, limit)
	})
}

func (s *HabitService) list(ctx context.Context, page int, fetch func(skip, limit int64) ([]models.Habit, int64, error)) ([]models.Habit, int64, error) {
	if page < 1 {
		return nil, 0, ErrInvalidPage
	}

	habits, total, err := fetch(int64(page-1)*s.pageSize, s.pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list habits: %w", err)
	}

	// The first page always exists, even when empty.
	if page > 1 && int64(page-1)*s.pageSize >= total {
		return nil, 0, ErrInvalidPage
	}
	return habits, total, nil
}

// validate runs field checks, resolves related habits, then the business
// rules against existing (nil on create).
func (s *HabitService) validate(ctx context.Context, in models.HabitInput, partial bool, existing *models.Habit) (validation.HabitFields, error) {
	fields, errs := validation.CheckHabitFields(in, partial)

	var related *models.Habit
	if fields.RelatedHabitID.Set && fields.RelatedHabitID.Value != nil {
		h, err := s.lookup(ctx, *fields.RelatedHabitID.Value)
		if err != nil {
			return fields, err
		}
		if h == nil {
			errs.Merge(validation.InvalidRelatedHabit())
		}
		related = h
	}

	if err := errs.Err(); err != nil {
		return fields, err
	}

	var state *validation.HabitState
	if existing != nil {
		var existingRelated *models.Habit
		if !fields.RelatedHabitID.Set && existing.RelatedHabitID != nil {
			h, err := s.lookup(ctx, *existing.RelatedHabitID)
			if err != nil {
				return fields, err
			}
			existingRelated = h
		}
		state = validation.StateOf(existing, existingRelated)
	}

	return fields, validation.ValidateHabitRules(fields.Candidate(related), state).Err()
}

// lookup returns nil without error when the habit does not exist.
func (s *HabitService) lookup(ctx context.Context, id primitive.ObjectID) (*models.Habit, error) {
	h, err := s.repo.GetHabitByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve related habit: %w", err)
	}
	return h, nil
}
