package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"widget-planner/internal/calendar"
	"widget-planner/internal/model"
	"widget-planner/internal/repository"
)

// at builds a time in March 2026. March 1 is a Sunday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

type recordingSink struct {
	mu    sync.Mutex
	calls [][]int64
}

func (s *recordingSink) Refresh(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ids)
	return nil
}

func (s *recordingSink) last() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

type recordingNotifier struct {
	got []Reminder
	err error
}

func (n *recordingNotifier) Notify(_ context.Context, reminders []Reminder) error {
	if n.err != nil {
		return n.err
	}
	n.got = append(n.got, reminders...)
	return nil
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	stores   Stores
	source   *calendar.Static
	sink     *recordingSink
	notifier *recordingNotifier
	engine   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		stores:   NewStores(db),
		source:   &calendar.Static{},
		sink:     &recordingSink{},
		notifier: &recordingNotifier{},
	}
	f.engine = NewEngine(f.stores, f.source, Options{
		Location:          time.UTC,
		CalendarDaysAhead: 1,
		Notifier:          f.notifier,
		Sink:              f.sink,
	}, zerolog.Nop())
	return f
}

func (f *fixture) category(name string, edit ...func(*model.Category)) model.Category {
	f.t.Helper()
	c := model.Category{Name: name, DisplayMode: model.DisplayCheckbox, DefaultBulletColor: 0xff0000, DefaultTextColor: 0x00ff00}
	for _, fn := range edit {
		fn(&c)
	}
	require.NoError(f.t, f.stores.Categories.Create(f.ctx, &c))
	return c
}

func (f *fixture) task(categoryID int64, content string, sortOrder int, edit ...func(*model.Task)) model.Task {
	f.t.Helper()
	task := model.Task{CategoryID: categoryID, Content: content, SortOrder: sortOrder, CreatedAt: 1, UpdatedAt: 1}
	for _, fn := range edit {
		fn(&task)
	}
	require.NoError(f.t, f.stores.Tasks.Create(f.ctx, &task))
	return task
}

func (f *fixture) widget(widgetID int64, categoryIDs ...int64) {
	f.t.Helper()
	require.NoError(f.t, f.stores.Widgets.SaveConfig(f.ctx, &model.WidgetConfig{WidgetID: widgetID, Name: "w"}))
	for i, id := range categoryIDs {
		require.NoError(f.t, f.stores.Widgets.Assign(f.ctx, &model.WidgetCategory{
			WidgetID: widgetID, CategoryID: id, SortOrder: i, Visible: true,
		}))
	}
}

func (f *fixture) routine(r model.Routine) model.Routine {
	f.t.Helper()
	require.NoError(f.t, f.stores.Routines.Create(f.ctx, &r))
	return r
}

func (f *fixture) tasksIn(categoryID int64) []model.Task {
	f.t.Helper()
	tasks, err := f.stores.Tasks.ListByCategory(f.ctx, categoryID)
	require.NoError(f.t, err)
	return tasks
}

func (f *fixture) applier() *ActionApplier {
	trash := NewTrashService(f.stores.Tasks, f.stores.Categories, f.stores.Trash, zerolog.Nop())
	return NewActionApplier(f.stores.Tasks, f.stores.Dismissed, trash, NewCategoryLocks(), zerolog.Nop())
}

func completed(t *model.Task) { t.Completed = true }

func fromCalendar(t *model.Task) { t.FromCalendarSync = true }

func scheduledAt(ms int64) func(*model.Task) {
	return func(t *model.Task) { t.ScheduledTime = &ms }
}
