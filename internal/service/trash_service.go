package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"widget-planner/internal/model"
)

// TrashService implements soft deletion with restore. Manual deletes and
// routine DELETE actions both archive through it.
type TrashService struct {
	tasks      TaskStore
	categories CategoryStore
	trash      TrashStore
	log        zerolog.Logger
}

func NewTrashService(tasks TaskStore, categories CategoryStore, trash TrashStore, log zerolog.Logger) *TrashService {
	return &TrashService{
		tasks:      tasks,
		categories: categories,
		trash:      trash,
		log:        log.With().Str("component", "trash").Logger(),
	}
}

// Delete archives a task and removes it. It returns nil when the task does
// not exist.
func (s *TrashService) Delete(ctx context.Context, taskID int64, now time.Time) (*model.TrashEntry, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task %d: %w", taskID, err)
	}
	return s.Archive(ctx, *task, now)
}

// Archive snapshots task into the trash, capturing its category's current
// name, then deletes the task.
func (s *TrashService) Archive(ctx context.Context, task model.Task, now time.Time) (*model.TrashEntry, error) {
	var categoryName string
	category, err := s.categories.GetByID(ctx, task.CategoryID)
	switch {
	case err == nil:
		categoryName = category.Name
	case !isNotFound(err):
		return nil, fmt.Errorf("load category %d: %w", task.CategoryID, err)
	}

	entry := model.SnapshotTask(task, categoryName, now.UnixMilli())
	if err := s.trash.Create(ctx, &entry); err != nil {
		return nil, err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil && !isNotFound(err) {
		return nil, err
	}

	s.log.Debug().Ctx(ctx).Int64("task_id", task.ID).Int64("trash_id", entry.ID).Msg("task archived")
	return &entry, nil
}

// Restore reinserts a trashed task into its original category under a new id
// and removes the entry. It returns nil when the entry does not exist. The
// original category is not checked; an orphaned task is accepted.
func (s *TrashService) Restore(ctx context.Context, trashID int64, now time.Time) (*model.Task, error) {
	entry, err := s.trash.GetByID(ctx, trashID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load trash entry %d: %w", trashID, err)
	}

	task := entry.RestoredTask(now.UnixMilli())
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	if err := s.trash.Delete(ctx, trashID); err != nil && !isNotFound(err) {
		return nil, err
	}

	s.log.Debug().Ctx(ctx).Int64("trash_id", trashID).Int64("task_id", task.ID).Msg("task restored")
	return &task, nil
}

// PermanentDelete drops a trash entry. It reports false when none existed.
func (s *TrashService) PermanentDelete(ctx context.Context, trashID int64) (bool, error) {
	err := s.trash.Delete(ctx, trashID)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *TrashService) ClearAll(ctx context.Context) error {
	return s.trash.Clear(ctx)
}

// List returns the trash newest first.
func (s *TrashService) List(ctx context.Context) ([]model.TrashEntry, error) {
	return s.trash.List(ctx)
}

// PurgeOlderThan removes entries deleted before cutoff.
func (s *TrashService) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.trash.DeleteOlderThan(ctx, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Ctx(ctx).Int64("purged", n).Msg("trash retention sweep")
	}
	return n, nil
}
