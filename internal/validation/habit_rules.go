package validation

import (
	"strconv"
	"strings"

	"github.com/Dias221467/Habit_Tracker/internal/models"
)

const (
	FieldPlace          = "place"
	FieldTime           = "time"
	FieldAction         = "action"
	FieldIsPleasant     = "is_pleasant"
	FieldRelatedHabit   = "related_habit"
	FieldPeriodicity    = "periodicity"
	FieldReward         = "reward"
	FieldTimeToComplete = "time_to_complete"
	FieldIsPublic       = "is_public"
)

const (
	msgRewardWithRelated      = "Нельзя одновременно указывать вознаграждение и связанную привычку."
	msgRelatedWithReward      = "Нельзя одновременно указывать связанную привычку и вознаграждение."
	msgTimeToCompleteTooLong  = "Время на выполнение привычки не может превышать 120 секунд."
	msgRelatedMustBePleasant  = "В связанные привычки могут попадать только приятные привычки."
	msgPleasantNoReward       = "У приятной привычки не может быть вознаграждения."
	msgPleasantNoRelated      = "У приятной привычки не может быть связанной привычки."
	msgPeriodicityNotInteger  = "Периодичность должна быть целым числом от 1 до 7."
	msgPeriodicityOutOfBounds = "Нельзя выполнять привычку реже, чем 1 раз в 7 дней."
)

// HabitCandidate holds the rule-relevant values of a create or update.
// Unset fields fall back to the persisted instance. A null value is Set
// with the zero Value.
type HabitCandidate struct {
	IsPleasant     models.Optional[bool]
	Reward         models.Optional[string]
	RelatedHabit   models.Optional[*models.Habit]
	Periodicity    models.Optional[string] // raw text, parsed by the periodicity rule
	TimeToComplete models.Optional[int]
}

// HabitState is the persisted side of an update.
type HabitState struct {
	IsPleasant     bool
	Reward         string
	RelatedHabit   *models.Habit
	Periodicity    int
	TimeToComplete int
}

// StateOf builds the rule view of a stored habit; related is the habit its
// RelatedHabitID points to, or nil.
func StateOf(h *models.Habit, related *models.Habit) *HabitState {
	if h == nil {
		return nil
	}
	return &HabitState{
		IsPleasant:     h.IsPleasant,
		Reward:         h.Reward,
		RelatedHabit:   related,
		Periodicity:    h.Periodicity,
		TimeToComplete: h.TimeToComplete,
	}
}

// ValidateHabitRules checks the habit business rules against the effective
// values of candidate over instance. instance is nil on create. The result
// is empty when the combination is consistent.
func ValidateHabitRules(c HabitCandidate, instance *HabitState) FieldErrors {
	errs := FieldErrors{}

	isPleasant, _ := resolve(c.IsPleasant, instance, func(s *HabitState) bool { return s.IsPleasant })
	reward, _ := resolve(c.Reward, instance, func(s *HabitState) string { return s.Reward })
	related, _ := resolve(c.RelatedHabit, instance, func(s *HabitState) *models.Habit { return s.RelatedHabit })
	periodicity, hasPeriodicity := resolve(c.Periodicity, instance, func(s *HabitState) string { return strconv.Itoa(s.Periodicity) })
	timeToComplete, hasTimeToComplete := resolve(c.TimeToComplete, instance, func(s *HabitState) int { return s.TimeToComplete })

	if reward != "" && related != nil {
		errs.Set(FieldReward, msgRewardWithRelated)
		errs.Set(FieldRelatedHabit, msgRelatedWithReward)
	}

	if hasTimeToComplete && timeToComplete > models.MaxTimeToComplete {
		errs.Set(FieldTimeToComplete, msgTimeToCompleteTooLong)
	}

	if related != nil && !related.IsPleasant {
		errs.Set(FieldRelatedHabit, msgRelatedMustBePleasant)
	}

	// Overwrites the mutual-exclusion messages above when both fire.
	if isPleasant {
		if reward != "" {
			errs.Set(FieldReward, msgPleasantNoReward)
		}
		if related != nil {
			errs.Set(FieldRelatedHabit, msgPleasantNoRelated)
		}
	}

	if hasPeriodicity {
		if n, ok := ParsePeriodicity(periodicity); !ok {
			errs.Set(FieldPeriodicity, msgPeriodicityNotInteger)
		} else if n < models.MinPeriodicity || n > models.MaxPeriodicity {
			errs.Set(FieldPeriodicity, msgPeriodicityOutOfBounds)
		}
	}

	return errs
}

// ParsePeriodicity parses a base-10 integer, ignoring surrounding spaces.
func ParsePeriodicity(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// resolve returns the candidate value when supplied, else the instance value,
// else absent.
func resolve[T any](c models.Optional[T], instance *HabitState, fromInstance func(*HabitState) T) (T, bool) {
	if c.Set {
		return c.Value, true
	}
	if instance != nil {
		return fromInstance(instance), true
	}
	var zero T
	return zero, false
}
