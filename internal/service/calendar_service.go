package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"widget-planner/internal/calendar"
	"widget-planner/internal/model"
)

const stateLastCalendarSync = "calendar.last_sync"

// EventSource is the calendar read side consumed by the merge. Sources
// report missing read access through HasPermission and return an empty list
// from ReadEvents instead of failing.
type EventSource interface {
	HasPermission(ctx context.Context) bool
	ReadEvents(ctx context.Context, daysAhead int) ([]calendar.Event, error)
}

// SyncReport is the outcome of one calendar merge.
type SyncReport struct {
	Widgets  WidgetSet
	Inserted int
	Skipped  bool
	Faults   []Fault
}

// CalendarService merges calendar events into sync-enrolled categories.
// The trimmed event title is the idempotence key: a title already present as
// a task, or dismissed for the category, is never inserted again.
type CalendarService struct {
	source     EventSource
	categories CategoryStore
	tasks      TaskStore
	dismissed  DismissalStore
	widgets    WidgetStore
	state      StateStore
	locks      *CategoryLocks
	daysAhead  int
	log        zerolog.Logger
}

func NewCalendarService(source EventSource, stores Stores, locks *CategoryLocks, daysAhead int, log zerolog.Logger) *CalendarService {
	return &CalendarService{
		source:     source,
		categories: stores.Categories,
		tasks:      stores.Tasks,
		dismissed:  stores.Dismissed,
		widgets:    stores.Widgets,
		state:      stores.State,
		locks:      locks,
		daysAhead:  daysAhead,
		log:        log.With().Str("component", "calendar").Logger(),
	}
}

// Sync reads the event window and merges it. Without calendar permission it
// does nothing and leaves the last-sync timestamp alone; otherwise the
// timestamp is recorded even when nothing changed.
func (s *CalendarService) Sync(ctx context.Context, now time.Time) (SyncReport, error) {
	report := SyncReport{Widgets: NewWidgetSet()}

	if s.source == nil || !s.source.HasPermission(ctx) {
		s.log.Debug().Ctx(ctx).Msg("calendar permission missing, skipping sync")
		report.Skipped = true
		return report, nil
	}

	categories, err := s.categories.ListSyncEnabled(ctx)
	if err != nil {
		return report, fmt.Errorf("list sync categories: %w", err)
	}

	if len(categories) > 0 {
		events, err := s.source.ReadEvents(ctx, s.daysAhead)
		if err != nil {
			return report, fmt.Errorf("read calendar events: %w", err)
		}

		for _, category := range categories {
			inserted, err := s.mergeCategory(ctx, category, events, now)
			report.Inserted += inserted
			if err != nil {
				s.log.Error().Ctx(ctx).Err(err).Int64("category_id", category.ID).Msg("calendar merge failed")
				report.Faults = append(report.Faults, Fault{CategoryID: category.ID, Err: err})
			}
			if inserted == 0 {
				continue
			}

			widgets, err := widgetsForCategories(ctx, s.widgets, category.ID)
			if err != nil {
				report.Faults = append(report.Faults, Fault{CategoryID: category.ID, Err: err})
			}
			report.Widgets.Union(widgets)
		}
	}

	if err := s.state.Set(ctx, stateLastCalendarSync, now.UnixMilli()); err != nil {
		return report, err
	}

	s.log.Info().Ctx(ctx).
		Int("categories", len(categories)).
		Int("inserted", report.Inserted).
		Int("faults", len(report.Faults)).
		Msg("calendar sync complete")
	return report, nil
}

// LastSync returns the time of the last completed sync, if any.
func (s *CalendarService) LastSync(ctx context.Context) (time.Time, bool, error) {
	ms, ok, err := s.state.Get(ctx, stateLastCalendarSync)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

// mergeCategory inserts the new events of one category. The sort order is
// read once and incremented locally for the whole batch while the category
// lock is held.
func (s *CalendarService) mergeCategory(ctx context.Context, category model.Category, events []calendar.Event, now time.Time) (int, error) {
	unlock := s.locks.Lock(category.ID)
	defer unlock()

	tasks, err := s.tasks.ListByCategory(ctx, category.ID)
	if err != nil {
		return 0, err
	}
	present := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		present[task.Title()] = struct{}{}
	}

	titles, err := s.dismissed.TitlesForCategory(ctx, category.ID)
	if err != nil {
		return 0, err
	}
	dismissed := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		dismissed[title] = struct{}{}
	}

	maxOrder, err := s.tasks.MaxSortOrder(ctx, category.ID)
	if err != nil {
		return 0, err
	}
	next := maxOrder + 1

	inserted := 0
	for _, event := range events {
		title := strings.TrimSpace(event.Title)
		if title == "" {
			continue
		}
		if _, ok := present[title]; ok {
			continue
		}
		if _, ok := dismissed[title]; ok {
			continue
		}

		task := model.Task{
			CategoryID:       category.ID,
			Content:          title,
			BulletColor:      category.DefaultBulletColor,
			TextColor:        category.DefaultTextColor,
			SortOrder:        next,
			CreatedAt:        now.UnixMilli(),
			UpdatedAt:        now.UnixMilli(),
			FromCalendarSync: true,
		}
		if !event.AllDay {
			start := event.StartMillis
			task.ScheduledTime = &start
		}
		if err := s.tasks.Create(ctx, &task); err != nil {
			return inserted, err
		}

		present[title] = struct{}{}
		next++
		inserted++
	}
	return inserted, nil
}
