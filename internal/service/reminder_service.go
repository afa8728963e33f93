package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"widget-planner/internal/model"
)

const stateLastReminderRun = "reminders.last_run"

// Reminder is a notification for one timed task.
type Reminder struct {
	Task     model.Task
	Category model.Category
	FireAt   time.Time
}

// Notifier delivers reminders to the user.
type Notifier interface {
	Notify(ctx context.Context, reminders []Reminder) error
}

// ReminderService finds timed tasks whose notification time has passed since
// the previous run.
type ReminderService struct {
	categories CategoryStore
	tasks      TaskStore
	state      StateStore
	lookback   time.Duration
	log        zerolog.Logger
}

// NewReminderService builds the service. lookback bounds the first run, when
// no previous run has been recorded.
func NewReminderService(categories CategoryStore, tasks TaskStore, state StateStore, lookback time.Duration, log zerolog.Logger) *ReminderService {
	return &ReminderService{
		categories: categories,
		tasks:      tasks,
		state:      state,
		lookback:   lookback,
		log:        log.With().Str("component", "reminders").Logger(),
	}
}

// Due returns the reminders of incomplete timed tasks in notify-enabled
// categories whose fire time, scheduled time minus the category lead, falls
// in (lastRun, now]. Nothing is persisted; Commit closes the window once the
// reminders are delivered.
func (s *ReminderService) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	lastMs, ok, err := s.state.Get(ctx, stateLastReminderRun)
	if err != nil {
		return nil, err
	}
	last := now.Add(-s.lookback)
	if ok {
		last = time.UnixMilli(lastMs)
	}
	if !now.After(last) {
		return nil, nil
	}

	categories, err := s.categories.ListNotifyEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notify categories: %w", err)
	}

	var reminders []Reminder
	for _, category := range categories {
		tasks, err := s.tasks.ListByCategory(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		lead := time.Duration(category.NotifyLeadMinutes) * time.Minute
		for _, task := range tasks {
			if task.Completed || !task.IsTimed() {
				continue
			}
			fireAt := time.UnixMilli(*task.ScheduledTime).Add(-lead)
			if fireAt.After(last) && !fireAt.After(now) {
				reminders = append(reminders, Reminder{Task: task, Category: category, FireAt: fireAt.In(now.Location())})
			}
		}
	}

	sort.SliceStable(reminders, func(i, j int) bool { return reminders[i].FireAt.Before(reminders[j].FireAt) })

	if len(reminders) > 0 {
		s.log.Debug().Ctx(ctx).Int("count", len(reminders)).Msg("reminders due")
	}
	return reminders, nil
}

// Commit records now as the end of the delivered window so the next Due
// starts after it.
func (s *ReminderService) Commit(ctx context.Context, now time.Time) error {
	if err := s.state.Set(ctx, stateLastReminderRun, now.UnixMilli()); err != nil {
		return fmt.Errorf("save reminder window: %w", err)
	}
	return nil
}
