package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPeriodicity = 1
	MinPeriodicity     = 1
	MaxPeriodicity     = 7
	MaxTimeToComplete  = 120
	MaxTextLength      = 255
)

// Habit is a useful (IsPleasant=false) or pleasant (IsPleasant=true) habit.
// A pleasant habit is only ever used as the reward target of a useful one.
type Habit struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"user"`
	Place          string              `bson:"place" json:"place"`
	Time           TimeOfDay           `bson:"time" json:"time"`
	Action         string              `bson:"action" json:"action"`
	IsPleasant     bool                `bson:"is_pleasant" json:"is_pleasant"`
	RelatedHabitID *primitive.ObjectID `bson:"related_habit" json:"related_habit"`
	Periodicity    int                 `bson:"periodicity" json:"periodicity"` // days, 1..7
	Reward         string              `bson:"reward" json:"reward"`
	TimeToComplete int                 `bson:"time_to_complete" json:"time_to_complete"` // seconds
	IsPublic       bool                `bson:"is_public" json:"is_public"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// HabitInput is the create/update payload. Every key is optional at decode
// time; which ones are required depends on the operation. Values stay raw so
// a wrongly typed field is reported against that field.
type HabitInput struct {
	Place          Optional[json.RawMessage] `json:"place"`
	Time           Optional[json.RawMessage] `json:"time"`
	Action         Optional[json.RawMessage] `json:"action"`
	IsPleasant     Optional[json.RawMessage] `json:"is_pleasant"`
	RelatedHabit   Optional[json.RawMessage] `json:"related_habit"`
	Periodicity    Optional[json.RawMessage] `json:"periodicity"`
	Reward         Optional[json.RawMessage] `json:"reward"`
	TimeToComplete Optional[json.RawMessage] `json:"time_to_complete"`
	IsPublic       Optional[json.RawMessage] `json:"is_public"`
}

// HabitPage is one page of a habit listing.
type HabitPage struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Habit `json:"results"`
}
