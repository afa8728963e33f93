package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"widget-planner/internal/model"
)

// ActionApplier performs one routine action on one task.
type ActionApplier struct {
	tasks     TaskStore
	dismissed DismissalStore
	trash     *TrashService
	locks     *CategoryLocks
	log       zerolog.Logger
}

func NewActionApplier(tasks TaskStore, dismissed DismissalStore, trash *TrashService, locks *CategoryLocks, log zerolog.Logger) *ActionApplier {
	return &ActionApplier{
		tasks:     tasks,
		dismissed: dismissed,
		trash:     trash,
		locks:     locks,
		log:       log.With().Str("component", "actions").Logger(),
	}
}

// Apply re-reads the task and applies action to it. A task that no longer
// exists is skipped without error, since an earlier action in the same pass
// may already have removed it.
func (a *ActionApplier) Apply(ctx context.Context, action model.RoutineAction, taskID int64, now time.Time) error {
	task, err := a.tasks.GetByID(ctx, taskID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load task %d: %w", taskID, err)
	}

	switch act := action.(type) {
	case model.DeleteAction:
		return a.delete(ctx, *task, now)
	case model.MoveAction:
		return a.move(ctx, *task, &act.Target, now)
	case model.CompleteAction:
		return a.setCompleted(ctx, *task, true, act.Target, now)
	case model.UncompleteAction:
		return a.setCompleted(ctx, *task, false, act.Target, now)
	default:
		return fmt.Errorf("%w: %T", model.ErrInvalidActionKind, action)
	}
}

// MoveIfNeeded moves a task to the end of target. Nil or non-positive
// targets, the task's own category and a missing task are all no-ops.
func (a *ActionApplier) MoveIfNeeded(ctx context.Context, taskID int64, target *int64, now time.Time) error {
	task, err := a.tasks.GetByID(ctx, taskID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load task %d: %w", taskID, err)
	}
	return a.move(ctx, *task, target, now)
}

func (a *ActionApplier) delete(ctx context.Context, task model.Task, now time.Time) error {
	if task.FromCalendarSync {
		if err := a.dismissed.Add(ctx, task.CategoryID, task.Title()); err != nil {
			return err
		}
	}
	if _, err := a.trash.Archive(ctx, task, now); err != nil {
		return fmt.Errorf("archive task %d: %w", task.ID, err)
	}
	return nil
}

func (a *ActionApplier) setCompleted(ctx context.Context, task model.Task, completed bool, target *int64, now time.Time) error {
	task.Completed = completed
	task.UpdatedAt = now.UnixMilli()
	if err := a.tasks.Update(ctx, &task); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return a.move(ctx, task, target, now)
}

func (a *ActionApplier) move(ctx context.Context, task model.Task, target *int64, now time.Time) error {
	if target == nil || *target <= 0 || *target == task.CategoryID {
		return nil
	}

	unlock := a.locks.Lock(*target)
	defer unlock()

	maxOrder, err := a.tasks.MaxSortOrder(ctx, *target)
	if err != nil {
		return err
	}
	err = a.tasks.UpdatePlacement(ctx, task.ID, *target, maxOrder+1, now.UnixMilli())
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	a.log.Debug().Ctx(ctx).
		Int64("task_id", task.ID).
		Int64("from", task.CategoryID).
		Int64("to", *target).
		Int("sort_order", maxOrder+1).
		Msg("task moved")
	return nil
}
