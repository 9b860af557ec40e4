package validation

import (
	"errors"
	"strconv"
	"testing"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pleasantHabit() *models.Habit {
	return &models.Habit{Action: "eat chocolate", IsPleasant: true, Periodicity: 1}
}

func usefulHabit() *models.Habit {
	return &models.Habit{Action: "run", IsPleasant: false, Periodicity: 1}
}

func keys(errs FieldErrors) []string {
	out := make([]string, 0, len(errs))
	for k := range errs {
		out = append(out, k)
	}
	return out
}

func TestValidateHabitRules_ValidCandidate(t *testing.T) {
	c := HabitCandidate{
		IsPleasant:     models.Some(false),
		RelatedHabit:   models.Some(pleasantHabit()),
		Periodicity:    models.Some("3"),
		TimeToComplete: models.Some(60),
	}

	errs := ValidateHabitRules(c, nil)

	assert.Empty(t, errs)
	assert.NoError(t, errs.Err())
}

func TestValidateHabitRules_RewardAndRelatedAreMutuallyExclusive(t *testing.T) {
	c := HabitCandidate{
		Reward:       models.Some("dessert"),
		RelatedHabit: models.Some(pleasantHabit()),
	}

	errs := ValidateHabitRules(c, nil)

	assert.ElementsMatch(t, []string{FieldReward, FieldRelatedHabit}, keys(errs))
	assert.Equal(t, msgRewardWithRelated, errs[FieldReward])
	assert.Equal(t, msgRelatedWithReward, errs[FieldRelatedHabit])
}

func TestValidateHabitRules_EmptyRewardIsNotTruthy(t *testing.T) {
	c := HabitCandidate{
		Reward:       models.Some(""),
		RelatedHabit: models.Some(pleasantHabit()),
	}

	assert.Empty(t, ValidateHabitRules(c, nil))
}

func TestValidateHabitRules_TimeToComplete(t *testing.T) {
	for _, v := range []int{1, 60, 120} {
		errs := ValidateHabitRules(HabitCandidate{TimeToComplete: models.Some(v)}, nil)
		assert.NotContains(t, errs, FieldTimeToComplete, "value %d", v)
	}

	for _, v := range []int{121, 500} {
		errs := ValidateHabitRules(HabitCandidate{TimeToComplete: models.Some(v)}, nil)
		assert.Equal(t, msgTimeToCompleteTooLong, errs[FieldTimeToComplete], "value %d", v)
	}
}

func TestValidateHabitRules_RelatedHabitMustBePleasant(t *testing.T) {
	errs := ValidateHabitRules(HabitCandidate{RelatedHabit: models.Some(usefulHabit())}, nil)

	assert.Equal(t, FieldErrors{FieldRelatedHabit: msgRelatedMustBePleasant}, errs)
}

func TestValidateHabitRules_PleasantHabitCannotHaveRewardOrRelated(t *testing.T) {
	errs := ValidateHabitRules(HabitCandidate{
		IsPleasant: models.Some(true),
		Reward:     models.Some("cake"),
	}, nil)
	assert.Equal(t, FieldErrors{FieldReward: msgPleasantNoReward}, errs)

	errs = ValidateHabitRules(HabitCandidate{
		IsPleasant:   models.Some(true),
		RelatedHabit: models.Some(pleasantHabit()),
	}, nil)
	assert.Equal(t, FieldErrors{FieldRelatedHabit: msgPleasantNoRelated}, errs)
}

func TestValidateHabitRules_LastRuleWinsPerField(t *testing.T) {
	// Mutual exclusion, related-not-pleasant and pleasant rules all fire;
	// each field keeps the message of the last rule that wrote it.
	errs := ValidateHabitRules(HabitCandidate{
		IsPleasant:   models.Some(true),
		Reward:       models.Some("cake"),
		RelatedHabit: models.Some(usefulHabit()),
	}, nil)

	assert.Equal(t, FieldErrors{
		FieldReward:       msgPleasantNoReward,
		FieldRelatedHabit: msgPleasantNoRelated,
	}, errs)
}

func TestValidateHabitRules_RelatedNotPleasantOverwritesMutualExclusion(t *testing.T) {
	errs := ValidateHabitRules(HabitCandidate{
		Reward:       models.Some("cake"),
		RelatedHabit: models.Some(usefulHabit()),
	}, nil)

	assert.Equal(t, msgRewardWithRelated, errs[FieldReward])
	assert.Equal(t, msgRelatedMustBePleasant, errs[FieldRelatedHabit])
}

func TestValidateHabitRules_Periodicity(t *testing.T) {
	for i := 1; i <= 7; i++ {
		errs := ValidateHabitRules(HabitCandidate{Periodicity: models.Some(strconv.Itoa(i))}, nil)
		assert.NotContains(t, errs, FieldPeriodicity, "periodicity %d", i)
	}

	for _, raw := range []string{"0", "8", "-1", "100"} {
		errs := ValidateHabitRules(HabitCandidate{Periodicity: models.Some(raw)}, nil)
		assert.Equal(t, msgPeriodicityOutOfBounds, errs[FieldPeriodicity], "periodicity %q", raw)
	}

	for _, raw := range []string{"abc", "2.5", "", "null"} {
		errs := ValidateHabitRules(HabitCandidate{Periodicity: models.Some(raw)}, nil)
		assert.Equal(t, msgPeriodicityNotInteger, errs[FieldPeriodicity], "periodicity %q", raw)
	}

	errs := ValidateHabitRules(HabitCandidate{Periodicity: models.Some(" 4 ")}, nil)
	assert.Empty(t, errs)
}

func TestValidateHabitRules_PartialUpdateUsesInstanceValues(t *testing.T) {
	instance := &HabitState{Reward: "X", Periodicity: 1, TimeToComplete: 60}

	errs := ValidateHabitRules(HabitCandidate{RelatedHabit: models.Some(pleasantHabit())}, instance)

	assert.ElementsMatch(t, []string{FieldReward, FieldRelatedHabit}, keys(errs))
}

func TestValidateHabitRules_CandidateOverridesInstance(t *testing.T) {
	instance := &HabitState{Reward: "X", Periodicity: 1, TimeToComplete: 60}

	// Clearing the reward in the same update makes the related habit legal.
	errs := ValidateHabitRules(HabitCandidate{
		Reward:       models.Some(""),
		RelatedHabit: models.Some(pleasantHabit()),
	}, instance)

	assert.Empty(t, errs)
}

func TestValidateHabitRules_InstanceMakesPleasantFlagEffective(t *testing.T) {
	instance := &HabitState{IsPleasant: true, Periodicity: 2, TimeToComplete: 30}

	errs := ValidateHabitRules(HabitCandidate{Reward: models.Some("cake")}, instance)

	assert.Equal(t, FieldErrors{FieldReward: msgPleasantNoReward}, errs)
}

func TestValidateHabitRules_InstanceRelatedHabitIsChecked(t *testing.T) {
	instance := &HabitState{RelatedHabit: usefulHabit(), Periodicity: 1}

	errs := ValidateHabitRules(HabitCandidate{}, instance)

	assert.Equal(t, FieldErrors{FieldRelatedHabit: msgRelatedMustBePleasant}, errs)
}

func TestValidateHabitRules_ErrCarriesFields(t *testing.T) {
	errs := ValidateHabitRules(HabitCandidate{TimeToComplete: models.Some(200)}, nil)

	err := errs.Err()
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, msgTimeToCompleteTooLong, vErr.Fields[FieldTimeToComplete])
	assert.Contains(t, err.Error(), "time_to_complete")
}

func TestStateOf(t *testing.T) {
	assert.Nil(t, StateOf(nil, nil))

	related := pleasantHabit()
	h := &models.Habit{Reward: "r", Periodicity: 3, TimeToComplete: 10, IsPleasant: false}
	state := StateOf(h, related)

	assert.Equal(t, "r", state.Reward)
	assert.Equal(t, 3, state.Periodicity)
	assert.Equal(t, 10, state.TimeToComplete)
	assert.Same(t, related, state.RelatedHabit)
}
