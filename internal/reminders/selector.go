// Package reminders decides which habits fire a reminder on a scheduler tick.
package reminders

import (
	"fmt"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reminder is a habit due at the current tick together with its recipient.
type Reminder struct {
	Habit  models.Habit
	ChatID int64
	Text   string
}

// Select returns the habits that fire at now. A habit fires when its time
// has now's hour and minute and the whole days since its creation date are
// a non-negative multiple of its periodicity. Owners missing from
// recipients are skipped. Dates are compared in now's location.
func Select(now time.Time, habits []models.Habit, recipients map[primitive.ObjectID]int64) []Reminder {
	var due []Reminder
	for _, h := range habits {
		if !IsDue(now, h) {
			continue
		}
		chatID, ok := recipients[h.UserID]
		if !ok || chatID == 0 {
			continue
		}
		due = append(due, Reminder{Habit: h, ChatID: chatID, Text: MessageText(h)})
	}
	return due
}

// IsDue reports whether h fires at now, ignoring the recipient.
func IsDue(now time.Time, h models.Habit) bool {
	if !h.Time.SameMinute(now.Hour(), now.Minute()) {
		return false
	}
	days := DaysBetween(h.CreatedAt.In(now.Location()), now)
	if days < 0 {
		return false
	}
	periodicity := h.Periodicity
	if periodicity <= 0 {
		periodicity = models.DefaultPeriodicity
	}
	return days%periodicity == 0
}

// DaysBetween counts calendar days from from's date to to's date, each taken
// in its own location.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// MessageText renders the reminder sent to the habit owner.
func MessageText(h models.Habit) string {
	return fmt.Sprintf("Напоминание о привычке:\n%s\nМесто: %s\nВремя: %s", h.Action, h.Place, h.Time.Clock())
}
