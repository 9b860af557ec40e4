package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/jobs"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Dispatcher is the work run by the reminder cron.
type Dispatcher interface {
	Run(ctx context.Context) (jobs.RunStats, error)
	CleanupDeliveries(ctx context.Context) error
}

// Schedules holds the cron expressions for the two jobs.
type Schedules struct {
	Reminders string
	Cleanup   string
}

// NewReminderCron registers the reminder and cleanup jobs. Jobs fire in loc;
// a panicking job is recovered and logged. The caller starts and stops it.
func NewReminderCron(ctx context.Context, d Dispatcher, schedules Schedules, loc *time.Location) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	cronLogger := cron.PrintfLogger(logger.Log)
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)

	if _, err := c.AddFunc(schedules.Reminders, func() { runReminders(ctx, d) }); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedules.Reminders, err)
	}

	if _, err := c.AddFunc(schedules.Cleanup, func() {
		if err := d.CleanupDeliveries(ctx); err != nil {
			logrus.WithError(err).Error("CleanupDeliveries failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedules.Cleanup, err)
	}

	logrus.WithFields(logrus.Fields{
		"reminders": schedules.Reminders,
		"cleanup":   schedules.Cleanup,
		"location":  loc.String(),
	}).Info("Reminder cron configured")
	return c, nil
}

func runReminders(ctx context.Context, d Dispatcher) {
	_, err := d.Run(ctx)
	if errors.Is(err, jobs.ErrRunInProgress) {
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Reminder run failed")
	}
}
