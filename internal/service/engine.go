package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"widget-planner/internal/logging"
	"widget-planner/internal/model"
	"widget-planner/internal/repository"
)

// RefreshSink redraws widgets after the engine changed what they show.
type RefreshSink interface {
	Refresh(ctx context.Context, widgetIDs []int64) error
}

// Options configures an Engine.
type Options struct {
	// Location is the timezone routines are evaluated in. Defaults to time.Local.
	Location          *time.Location
	CalendarDaysAhead int
	// TrashRetention purges older trash entries; zero keeps them.
	TrashRetention time.Duration
	// DailyTrashSweep leaves the purge to SweepTrash instead of every tick.
	DailyTrashSweep bool
	// ReminderLookback bounds the first reminder window.
	ReminderLookback time.Duration
	Notifier         Notifier
	Sink             RefreshSink
}

// TickReport is the outcome of one periodic pass.
type TickReport struct {
	RunID     string
	Routines  RunReport
	Calendar  SyncReport
	Reminders int
	Purged    int64
	Widgets   WidgetSet
}

// Engine is the entry point the host drives. Mutating passes are serialized;
// projection reads the store directly.
type Engine struct {
	mu sync.Mutex

	loc        *time.Location
	retention  time.Duration
	dailySweep bool
	notifier   Notifier
	sink       RefreshSink

	categories *CategoryService
	tasks      *TaskService
	trash      *TrashService
	routines   *RoutineService
	calendar   *CalendarService
	widgets    *WidgetService
	reminders  *ReminderService

	stores Stores
	log    zerolog.Logger
}

// NewStores wires the gorm repositories behind the engine's store interfaces.
func NewStores(db *gorm.DB) Stores {
	return Stores{
		Tasks:      repository.NewTaskRepository(db),
		Categories: repository.NewCategoryRepository(db),
		Routines:   repository.NewRoutineRepository(db),
		Trash:      repository.NewTrashRepository(db),
		Dismissed:  repository.NewDismissedRepository(db),
		Widgets:    repository.NewWidgetRepository(db),
		State:      repository.NewStateRepository(db),
	}
}

func NewEngine(stores Stores, source EventSource, opts Options, log zerolog.Logger) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ReminderLookback <= 0 {
		opts.ReminderLookback = 15 * time.Minute
	}

	locks := NewCategoryLocks()
	trash := NewTrashService(stores.Tasks, stores.Categories, stores.Trash, log)
	applier := NewActionApplier(stores.Tasks, stores.Dismissed, trash, locks, log)

	return &Engine{
		loc:        opts.Location,
		retention:  opts.TrashRetention,
		dailySweep: opts.DailyTrashSweep,
		notifier:   opts.Notifier,
		sink:       opts.Sink,
		categories: NewCategoryService(stores.Categories, stores.Routines, stores.Widgets),
		tasks:      NewTaskService(stores.Tasks, stores.Categories, locks),
		trash:      trash,
		routines:   NewRoutineService(stores.Routines, stores.Tasks, stores.Widgets, applier, log),
		calendar:   NewCalendarService(source, stores, locks, opts.CalendarDaysAhead, log),
		widgets:    NewWidgetService(stores.Widgets, stores.Categories, stores.Tasks),
		reminders:  NewReminderService(stores.Categories, stores.Tasks, stores.State, opts.ReminderLookback, log),
		stores:     stores,
		log:        log.With().Str("component", "engine").Logger(),
	}
}

func (e *Engine) Categories() *CategoryService {
	return e.categories
}

func (e *Engine) Tasks() *TaskService {
	return e.tasks
}

func (e *Engine) Trash() *TrashService {
	return e.trash
}

func (e *Engine) Widgets() *WidgetService {
	return e.widgets
}

func (e *Engine) Calendar() *CalendarService {
	return e.calendar
}

// Attach replaces the refresh sink and the reminder notifier. Adapters that
// need the engine themselves are built after it and attached here.
func (e *Engine) Attach(sink RefreshSink, notifier Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
	e.notifier = notifier
}

// RunDueRoutines applies every routine due at now and refreshes the affected
// widgets.
func (e *Engine) RunDueRoutines(ctx context.Context, now time.Time) (RunReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.routines.RunDue(ctx, now.In(e.loc))
	e.refresh(ctx, report.Widgets)
	return report, err
}

// SyncCalendar merges the calendar window and refreshes the affected widgets.
func (e *Engine) SyncCalendar(ctx context.Context, now time.Time) (SyncReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.calendar.Sync(ctx, now)
	e.refresh(ctx, report.Widgets)
	return report, err
}

// ProjectWidget returns the render model of a widget, or nil when the widget
// is not configured.
func (e *Engine) ProjectWidget(ctx context.Context, widgetID int64) (*WidgetRenderModel, error) {
	return e.widgets.Project(ctx, widgetID)
}

// CreateTask appends a task to a category. It returns nil when the category
// does not exist.
func (e *Engine) CreateTask(ctx context.Context, input TaskInput, now time.Time) (*model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.tasks.Create(ctx, input, now)
	if err != nil || task == nil {
		return nil, err
	}
	e.refreshCategories(ctx, task.CategoryID)
	return task, nil
}

// DeleteCategory removes a category with its tasks and routines. It reports
// false when the category does not exist.
func (e *Engine) DeleteCategory(ctx context.Context, categoryID int64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	widgets, err := e.categories.Delete(ctx, categoryID)
	if err != nil || widgets == nil {
		return false, err
	}
	e.refresh(ctx, widgets)
	return true, nil
}

// DeleteTask moves a task to the trash and returns the trash id for undo. It
// returns nil when the task does not exist.
func (e *Engine) DeleteTask(ctx context.Context, taskID int64, now time.Time) (*int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.trash.Delete(ctx, taskID, now)
	if err != nil || entry == nil {
		return nil, err
	}
	e.refreshCategories(ctx, entry.OriginalCategoryID)
	return &entry.ID, nil
}

// RestoreFromTrash reinserts a trashed task. It reports false when the entry
// does not exist.
func (e *Engine) RestoreFromTrash(ctx context.Context, trashID int64, now time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.trash.Restore(ctx, trashID, now)
	if err != nil || task == nil {
		return false, err
	}
	e.refreshCategories(ctx, task.CategoryID)
	return true, nil
}

// ReorderTask sets a task's sort order. It reports false when the task does
// not exist.
func (e *Engine) ReorderTask(ctx context.Context, taskID int64, sortOrder int, now time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	placement, err := e.tasks.Reorder(ctx, taskID, sortOrder, now)
	if err != nil || placement == nil {
		return false, err
	}
	e.refreshCategories(ctx, placement.ToCategory)
	return true, nil
}

// MoveTask moves a task into another category. It reports false when the
// task or the category does not exist.
func (e *Engine) MoveTask(ctx context.Context, taskID, targetCategoryID int64, sortOrder int, now time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	placement, err := e.tasks.Move(ctx, taskID, targetCategoryID, sortOrder, now)
	if err != nil || placement == nil {
		return false, err
	}
	e.refreshCategories(ctx, placement.FromCategory, placement.ToCategory)
	return true, nil
}

// ToggleTask flips a task's completed flag. It reports false when the task
// does not exist.
func (e *Engine) ToggleTask(ctx context.Context, taskID int64, now time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.tasks.Get(ctx, taskID)
	if err != nil || task == nil {
		return false, err
	}
	updated, err := e.tasks.SetCompleted(ctx, taskID, !task.Completed, now)
	if err != nil || updated == nil {
		return false, err
	}
	e.refreshCategories(ctx, updated.CategoryID)
	return true, nil
}

// ListTrash returns the trash newest first.
func (e *Engine) ListTrash(ctx context.Context) ([]model.TrashEntry, error) {
	return e.trash.List(ctx)
}

// Tick is one periodic pass: routines, calendar merge, reminders and the
// trash retention sweep. Each stage runs even when an earlier one failed;
// their errors are joined.
func (e *Engine) Tick(ctx context.Context, now time.Time) (TickReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, runID := logging.NewRun(ctx)
	now = now.In(e.loc)
	report := TickReport{RunID: runID, Widgets: NewWidgetSet()}

	var errs []error

	routines, err := e.routines.RunDue(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	report.Routines = routines
	report.Widgets.Union(routines.Widgets)

	merged, err := e.calendar.Sync(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	report.Calendar = merged
	report.Widgets.Union(merged.Widgets)

	reminders, err := e.deliverReminders(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	report.Reminders = reminders

	if !e.dailySweep {
		purged, err := e.purgeTrash(ctx, now)
		if err != nil {
			errs = append(errs, err)
		}
		report.Purged = purged
	}

	e.refresh(ctx, report.Widgets)

	e.log.Info().Ctx(ctx).
		Int("routines_fired", len(routines.Fired)).
		Int("calendar_inserted", merged.Inserted).
		Int("reminders", report.Reminders).
		Int("widgets", len(report.Widgets)).
		Msg("tick complete")

	return report, errors.Join(errs...)
}

// SweepTrash purges trash entries older than the retention. It is the daily
// job when DailyTrashSweep is set.
func (e *Engine) SweepTrash(ctx context.Context, now time.Time) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	purged, err := e.purgeTrash(ctx, now.In(e.loc))
	if err != nil {
		return 0, err
	}
	e.log.Info().Ctx(ctx).Int64("purged", purged).Msg("trash sweep complete")
	return purged, nil
}

func (e *Engine) purgeTrash(ctx context.Context, now time.Time) (int64, error) {
	if e.retention <= 0 {
		return 0, nil
	}
	return e.trash.PurgeOlderThan(ctx, now.Add(-e.retention))
}

// deliverReminders hands due reminders to the notifier and only then commits
// the reminder window, so a failed delivery is retried on the next pass.
func (e *Engine) deliverReminders(ctx context.Context, now time.Time) (int, error) {
	reminders, err := e.reminders.Due(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(reminders) > 0 && e.notifier != nil {
		if err := e.notifier.Notify(ctx, reminders); err != nil {
			e.log.Warn().Ctx(ctx).Err(err).Int("count", len(reminders)).Msg("reminder delivery failed, will retry")
			return 0, fmt.Errorf("notify reminders: %w", err)
		}
	}
	if err := e.reminders.Commit(ctx, now); err != nil {
		return len(reminders), err
	}
	return len(reminders), nil
}

func (e *Engine) refreshCategories(ctx context.Context, categoryIDs ...int64) {
	widgets, err := widgetsForCategories(ctx, e.stores.Widgets, categoryIDs...)
	if err != nil {
		e.log.Warn().Ctx(ctx).Err(err).Msg("failed to resolve widgets for refresh")
	}
	e.refresh(ctx, widgets)
}

func (e *Engine) refresh(ctx context.Context, widgets WidgetSet) {
	if e.sink == nil || len(widgets) == 0 {
		return
	}
	if err := e.sink.Refresh(ctx, widgets.Sorted()); err != nil {
		e.log.Warn().Ctx(ctx).Err(err).Msg("widget refresh failed")
	}
}
