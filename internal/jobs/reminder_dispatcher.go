package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/models"
	"github.com/Dias221467/Habit_Tracker/internal/reminders"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrRunInProgress is returned when a tick starts while the previous one is
// still sending.
var ErrRunInProgress = errors.New("reminder run already in progress")

const defaultSendTimeout = 10 * time.Second

type HabitSource interface {
	ListAllHabits(ctx context.Context) ([]models.Habit, error)
}

type RecipientSource interface {
	GetTelegramRecipients(ctx context.Context) (map[primitive.ObjectID]int64, error)
}

type DeliveryLog interface {
	RecordDelivery(ctx context.Context, d *models.ReminderDelivery) error
	DeleteExpiredDeliveries(ctx context.Context, now time.Time) (int64, error)
}

type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// RunStats summarises one dispatcher tick.
type RunStats struct {
	Due    int
	Sent   int
	Failed int
}

type ReminderDispatcher struct {
	Habits      HabitSource
	Recipients  RecipientSource
	Sender      MessageSender
	Deliveries  DeliveryLog
	Location    *time.Location
	SendTimeout time.Duration
	Now         func() time.Time

	running atomic.Bool
}

// NewReminderDispatcher creates a dispatcher evaluating habits in loc.
func NewReminderDispatcher(habits HabitSource, recipients RecipientSource, sender MessageSender, deliveries DeliveryLog, loc *time.Location) *ReminderDispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderDispatcher{
		Habits:      habits,
		Recipients:  recipients,
		Sender:      sender,
		Deliveries:  deliveries,
		Location:    loc,
		SendTimeout: defaultSendTimeout,
		Now:         time.Now,
	}
}

// Run sends every reminder due at the current minute. A failed send is
// logged and recorded; it never stops the remaining sends.
func (d *ReminderDispatcher) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	if !d.running.CompareAndSwap(false, true) {
		logrus.Warn("Reminder run skipped: previous run still in progress")
		return stats, ErrRunInProgress
	}
	defer d.running.Store(false)

	now := d.Now().In(d.Location)

	habits, err := d.Habits.ListAllHabits(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch habits: %w", err)
	}
	recipients, err := d.Recipients.GetTelegramRecipients(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch recipients: %w", err)
	}

	due := reminders.Select(now, habits, recipients)
	stats.Due = len(due)

	for _, r := range due {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if d.send(ctx, r) {
			stats.Sent++
		} else {
			stats.Failed++
		}
	}

	logrus.WithFields(logrus.Fields{
		"tick":   now.Format("2006-01-02 15:04"),
		"habits": len(habits),
		"due":    stats.Due,
		"sent":   stats.Sent,
		"failed": stats.Failed,
	}).Info("Reminder run completed")
	return stats, nil
}

func (d *ReminderDispatcher) send(ctx context.Context, r reminders.Reminder) bool {
	log := logrus.WithFields(logrus.Fields{
		"habit_id": r.Habit.ID.Hex(),
		"chat_id":  r.ChatID,
	})

	sendCtx, cancel := context.WithTimeout(ctx, d.SendTimeout)
	err := d.Sender.SendMessage(sendCtx, r.ChatID, r.Text)
	cancel()

	delivery := &models.ReminderDelivery{
		HabitID: r.Habit.ID,
		UserID:  r.Habit.UserID,
		ChatID:  r.ChatID,
		Text:    r.Text,
		Status:  models.DeliverySent,
	}
	if err != nil {
		log.WithError(err).Error("Failed to send habit reminder")
		delivery.Status = models.DeliveryFailed
		delivery.Error = err.Error()
	}

	if d.Deliveries != nil {
		if recErr := d.Deliveries.RecordDelivery(ctx, delivery); recErr != nil {
			log.WithError(recErr).Warn("Failed to record reminder delivery")
		}
	}
	return err == nil
}

// CleanupDeliveries purges delivery records past their retention.
func (d *ReminderDispatcher) CleanupDeliveries(ctx context.Context) error {
	if d.Deliveries == nil {
		return nil
	}
	deleted, err := d.Deliveries.DeleteExpiredDeliveries(ctx, d.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clean up deliveries: %w", err)
	}
	logrus.WithField("deleted", deleted).Info("Reminder delivery cleanup completed")
	return nil
}
