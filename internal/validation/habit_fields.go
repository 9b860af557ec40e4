package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgRequired        = "This field is required."
	msgNotNull         = "This field may not be null."
	msgNotBlank        = "This field may not be blank."
	msgTooLong         = "Ensure this field has no more than 255 characters."
	msgNotString       = "Not a valid string."
	msgNotBoolean      = "Must be a valid boolean."
	msgTimeFormat      = "Time has wrong format. Use one of these formats instead: hh:mm[:ss[.uuuuuu]]."
	msgInvalidInteger  = "A valid integer is required."
	msgNegative        = "Ensure this value is greater than or equal to 0."
	msgInvalidPK       = "Invalid pk - object does not exist."
	msgIncorrectPKType = "Incorrect type. Expected pk value, received %s."
)

// HabitFields is a HabitInput whose individual fields passed type and
// format checks.
type HabitFields struct {
	Place          models.Optional[string]
	Time           models.Optional[models.TimeOfDay]
	Action         models.Optional[string]
	IsPleasant     models.Optional[bool]
	RelatedHabitID models.Optional[*primitive.ObjectID]
	Periodicity    models.Optional[string]
	Reward         models.Optional[string]
	TimeToComplete models.Optional[int]
	IsPublic       models.Optional[bool]
}

// CheckHabitFields validates each field on its own. When partial is false
// (create, full update) the required fields must be present.
func CheckHabitFields(in models.HabitInput, partial bool) (HabitFields, FieldErrors) {
	var out HabitFields
	errs := FieldErrors{}

	if !partial {
		for field, set := range map[string]bool{
			FieldPlace:          in.Place.Set,
			FieldTime:           in.Time.Set,
			FieldAction:         in.Action.Set,
			FieldTimeToComplete: in.TimeToComplete.Set,
		} {
			if !set {
				errs.Set(field, msgRequired)
			}
		}
	}

	out.Place = checkText(errs, FieldPlace, in.Place, false)
	out.Action = checkText(errs, FieldAction, in.Action, false)
	out.Reward = checkText(errs, FieldReward, in.Reward, true)

	if in.Time.Set {
		if in.Time.Null {
			errs.Set(FieldTime, msgNotNull)
		} else if text, ok := jsonString(in.Time.Value); !ok {
			errs.Set(FieldTime, msgTimeFormat)
		} else if tod, err := models.ParseTimeOfDay(text); err != nil {
			errs.Set(FieldTime, msgTimeFormat)
		} else {
			out.Time = models.Some(tod)
		}
	}

	out.IsPleasant = checkBool(errs, FieldIsPleasant, in.IsPleasant)
	out.IsPublic = checkBool(errs, FieldIsPublic, in.IsPublic)

	if in.RelatedHabit.Set {
		text, isString := jsonString(in.RelatedHabit.Value)
		switch {
		case in.RelatedHabit.Null || (isString && text == ""):
			out.RelatedHabitID = models.Some[*primitive.ObjectID](nil)
		case !isString:
			errs.Set(FieldRelatedHabit, fmt.Sprintf(msgIncorrectPKType, jsonKind(in.RelatedHabit.Value)))
		default:
			if id, err := primitive.ObjectIDFromHex(text); err != nil {
				errs.Set(FieldRelatedHabit, msgInvalidPK)
			} else {
				out.RelatedHabitID = models.Some(&id)
			}
		}
	}

	if in.Periodicity.Set {
		// Parsed and range-checked by the periodicity rule.
		out.Periodicity = models.Some(rawText(in.Periodicity.Value))
	}

	if in.TimeToComplete.Set {
		if in.TimeToComplete.Null {
			errs.Set(FieldTimeToComplete, msgNotNull)
		} else if n, err := strconv.Atoi(strings.TrimSpace(rawText(in.TimeToComplete.Value))); err != nil {
			errs.Set(FieldTimeToComplete, msgInvalidInteger)
		} else if n < 0 {
			errs.Set(FieldTimeToComplete, msgNegative)
		} else {
			out.TimeToComplete = models.Some(n)
		}
	}

	return out, errs
}

// InvalidRelatedHabit is reported when a related habit id does not resolve.
func InvalidRelatedHabit() FieldErrors {
	return FieldErrors{FieldRelatedHabit: msgInvalidPK}
}

// Candidate projects the rule-relevant fields. related is the habit that
// RelatedHabitID resolved to, used only when RelatedHabitID is set.
func (f HabitFields) Candidate(related *models.Habit) HabitCandidate {
	c := HabitCandidate{
		IsPleasant:     f.IsPleasant,
		Reward:         f.Reward,
		Periodicity:    f.Periodicity,
		TimeToComplete: f.TimeToComplete,
	}
	if f.RelatedHabitID.Set {
		c.RelatedHabit = models.Some(related)
	}
	return c
}

// Apply writes every supplied field onto h. Call only after validation.
func (f HabitFields) Apply(h *models.Habit) {
	if f.Place.Set {
		h.Place = f.Place.Value
	}
	if f.Time.Set {
		h.Time = f.Time.Value
	}
	if f.Action.Set {
		h.Action = f.Action.Value
	}
	if f.IsPleasant.Set {
		h.IsPleasant = f.IsPleasant.Value
	}
	if f.RelatedHabitID.Set {
		h.RelatedHabitID = f.RelatedHabitID.Value
	}
	if f.Periodicity.Set {
		if n, ok := ParsePeriodicity(f.Periodicity.Value); ok {
			h.Periodicity = n
		}
	}
	if f.Reward.Set {
		h.Reward = f.Reward.Value
	}
	if f.TimeToComplete.Set {
		h.TimeToComplete = f.TimeToComplete.Value
	}
	if f.IsPublic.Set {
		h.IsPublic = f.IsPublic.Value
	}
	if h.Periodicity == 0 {
		h.Periodicity = models.DefaultPeriodicity
	}
}

// checkText accepts JSON strings and numbers; numbers keep their literal
// text.
func checkText(errs FieldErrors, field string, v models.Optional[json.RawMessage], nullable bool) models.Optional[string] {
	if !v.Set {
		return models.Optional[string]{}
	}
	if v.Null {
		if nullable {
			return models.Some("")
		}
		errs.Set(field, msgNotNull)
		return models.Optional[string]{}
	}

	text, ok := jsonString(v.Value)
	if !ok {
		if kind := jsonKind(v.Value); kind != "int" && kind != "float" {
			errs.Set(field, msgNotString)
			return models.Optional[string]{}
		}
		text = strings.TrimSpace(string(v.Value))
	}

	switch {
	case strings.TrimSpace(text) == "" && !nullable:
		errs.Set(field, msgNotBlank)
	case utf8.RuneCountInString(text) > models.MaxTextLength:
		errs.Set(field, msgTooLong)
	default:
		return models.Some(text)
	}
	return models.Optional[string]{}
}

var (
	trueValues  = map[string]bool{"true": true, "True": true, "TRUE": true, "yes": true, "Yes": true, "YES": true, "y": true, "Y": true, "on": true, "On": true, "ON": true, "1": true}
	falseValues = map[string]bool{"false": true, "False": true, "FALSE": true, "no": true, "No": true, "NO": true, "n": true, "N": true, "off": true, "Off": true, "OFF": true, "0": true}
)

// checkBool accepts JSON booleans, 0/1 and the usual yes/no spellings.
func checkBool(errs FieldErrors, field string, v models.Optional[json.RawMessage]) models.Optional[bool] {
	if !v.Set {
		return models.Optional[bool]{}
	}
	if v.Null {
		errs.Set(field, msgNotNull)
		return models.Optional[bool]{}
	}

	text, ok := jsonString(v.Value)
	if !ok {
		text = strings.TrimSpace(string(v.Value))
	}
	switch {
	case trueValues[text]:
		return models.Some(true)
	case falseValues[text]:
		return models.Some(false)
	}
	errs.Set(field, msgNotBoolean)
	return models.Optional[bool]{}
}

// jsonString unquotes raw when it is a JSON string.
func jsonString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// jsonKind names the JSON type of raw the way error messages report it.
func jsonKind(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "NoneType"
	}
	switch trimmed[0] {
	case '"':
		return "str"
	case 't', 'f':
		return "bool"
	case '[':
		return "list"
	case '{':
		return "dict"
	case 'n':
		return "NoneType"
	}
	if strings.ContainsAny(trimmed, ".eE") {
		return "float"
	}
	return "int"
}

// rawText unquotes JSON strings and returns any other JSON value verbatim.
func rawText(raw json.RawMessage) string {
	if s, ok := jsonString(raw); ok {
		return s
	}
	return string(raw)
}
