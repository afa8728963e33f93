package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"widget-planner/internal/model"
)

// Fault is a failure isolated to one routine, task or category during a pass.
// Zero ids mean the fault is not tied to that entity.
type Fault struct {
	RoutineID  int64
	TaskID     int64
	CategoryID int64
	Err        error
}

func (f Fault) Error() string {
	switch {
	case f.TaskID != 0:
		return fmt.Sprintf("routine %d task %d: %v", f.RoutineID, f.TaskID, f.Err)
	case f.RoutineID != 0:
		return fmt.Sprintf("routine %d: %v", f.RoutineID, f.Err)
	case f.CategoryID != 0:
		return fmt.Sprintf("category %d: %v", f.CategoryID, f.Err)
	default:
		return f.Err.Error()
	}
}

func (f Fault) Unwrap() error {
	return f.Err
}

// RunReport is the outcome of one routine pass.
type RunReport struct {
	Widgets WidgetSet
	Fired   []int64
	Faults  []Fault
}

// RoutineService evaluates every routine against now and applies the due ones.
type RoutineService struct {
	routines RoutineStore
	tasks    TaskStore
	widgets  WidgetStore
	applier  *ActionApplier
	log      zerolog.Logger
}

func NewRoutineService(routines RoutineStore, tasks TaskStore, widgets WidgetStore, applier *ActionApplier, log zerolog.Logger) *RoutineService {
	return &RoutineService{
		routines: routines,
		tasks:    tasks,
		widgets:  widgets,
		applier:  applier,
		log:      log.With().Str("component", "routines").Logger(),
	}
}

// RunDue runs every routine that is due at now, in id order. Failures on a
// single task or routine are collected in the report and never stop the pass;
// only failing to load the routine list is returned as an error.
//
// Invoking RunDue twice inside the same due window applies the actions twice.
func (s *RoutineService) RunDue(ctx context.Context, now time.Time) (RunReport, error) {
	report := RunReport{Widgets: NewWidgetSet()}

	routines, err := s.routines.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list routines: %w", err)
	}

	for _, routine := range routines {
		if !IsDue(routine, now) {
			continue
		}
		report.Fired = append(report.Fired, routine.ID)
		s.run(ctx, routine, now, &report)
	}

	if len(report.Fired) > 0 || len(report.Faults) > 0 {
		s.log.Info().Ctx(ctx).
			Int("fired", len(report.Fired)).
			Int("faults", len(report.Faults)).
			Int("widgets", len(report.Widgets)).
			Msg("routine pass complete")
	}
	return report, nil
}

func (s *RoutineService) run(ctx context.Context, routine model.Routine, now time.Time, report *RunReport) {
	log := s.log.With().Int64("routine_id", routine.ID).Str("routine", routine.DisplayName()).Logger()

	tasks, err := s.tasks.ListByCategory(ctx, routine.CategoryID)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("failed to snapshot category tasks")
		report.Faults = append(report.Faults, Fault{RoutineID: routine.ID, Err: err})
		return
	}

	// Split once before mutating so a task completed by the first action is
	// not picked up again by the second.
	var incomplete, completed []int64
	for _, task := range tasks {
		if task.Completed {
			completed = append(completed, task.ID)
		} else {
			incomplete = append(incomplete, task.ID)
		}
	}

	onIncomplete := routine.ActionForIncomplete()
	onCompleted := routine.ActionForCompleted()

	s.applyAll(ctx, log, routine.ID, onIncomplete, incomplete, now, report)
	s.applyAll(ctx, log, routine.ID, onCompleted, completed, now, report)

	categories := []int64{routine.CategoryID}
	for _, action := range []model.RoutineAction{onIncomplete, onCompleted} {
		if target := model.MoveTarget(action); target != nil && *target > 0 {
			categories = append(categories, *target)
		}
	}
	widgets, err := widgetsForCategories(ctx, s.widgets, categories...)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("failed to resolve affected widgets")
		report.Faults = append(report.Faults, Fault{RoutineID: routine.ID, Err: err})
	}
	report.Widgets.Union(widgets)

	log.Debug().Ctx(ctx).
		Int("incomplete", len(incomplete)).
		Int("completed", len(completed)).
		Msg("routine applied")
}

func (s *RoutineService) applyAll(
	ctx context.Context,
	log zerolog.Logger,
	routineID int64,
	action model.RoutineAction,
	taskIDs []int64,
	now time.Time,
	report *RunReport,
) {
	for _, taskID := range taskIDs {
		if err := s.applier.Apply(ctx, action, taskID, now); err != nil {
			log.Error().Ctx(ctx).Err(err).Int64("task_id", taskID).Msg("routine action failed")
			report.Faults = append(report.Faults, Fault{RoutineID: routineID, TaskID: taskID, Err: err})
		}
	}
}
