package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"widget-planner/internal/model"
)

var ErrEmptyContent = errors.New("service: task content is required")

// TaskInput represents data required to create a task.
type TaskInput struct {
	CategoryID    int64
	Content       string
	ScheduledTime *time.Time
	Completed     bool
}

// Placement describes a manual reorder or move that was applied.
type Placement struct {
	TaskID       int64
	FromCategory int64
	ToCategory   int64
	SortOrder    int
}

// TaskService wraps manual task edits. Every sort order write happens under
// the category lock so it cannot race a routine move or calendar merge.
type TaskService struct {
	tasks      TaskStore
	categories CategoryStore
	locks      *CategoryLocks
}

func NewTaskService(tasks TaskStore, categories CategoryStore, locks *CategoryLocks) *TaskService {
	return &TaskService{tasks: tasks, categories: categories, locks: locks}
}

// Create appends a task to the end of its category using the category's
// default colors. It returns nil when the category does not exist.
func (s *TaskService) Create(ctx context.Context, input TaskInput, now time.Time) (*model.Task, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyContent
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load category %d: %w", input.CategoryID, err)
	}

	unlock := s.locks.Lock(category.ID)
	defer unlock()

	maxOrder, err := s.tasks.MaxSortOrder(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		CategoryID:  category.ID,
		Content:     input.Content,
		Completed:   input.Completed,
		BulletColor: category.DefaultBulletColor,
		TextColor:   category.DefaultTextColor,
		SortOrder:   maxOrder + 1,
		CreatedAt:   now.UnixMilli(),
		UpdatedAt:   now.UnixMilli(),
	}
	if input.ScheduledTime != nil {
		ms := input.ScheduledTime.UnixMilli()
		task.ScheduledTime = &ms
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, taskID int64) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if isNotFound(err) {
		return nil, nil
	}
	return task, err
}

// List returns one category's tasks in display order.
func (s *TaskService) List(ctx context.Context, categoryID int64) ([]model.Task, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return OrderTasks(tasks, category.Ordering()), nil
}

// SetCompleted toggles the completed flag. It returns nil when the task does
// not exist.
func (s *TaskService) SetCompleted(ctx context.Context, taskID int64, completed bool, now time.Time) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task %d: %w", taskID, err)
	}

	task.Completed = completed
	task.UpdatedAt = now.UnixMilli()
	if err := s.tasks.Update(ctx, task); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// Reorder sets a task's sort order inside its current category. It returns
// nil when the task does not exist.
func (s *TaskService) Reorder(ctx context.Context, taskID int64, sortOrder int, now time.Time) (*Placement, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task %d: %w", taskID, err)
	}

	unlock := s.locks.Lock(task.CategoryID)
	defer unlock()

	return s.place(ctx, *task, task.CategoryID, sortOrder, now)
}

// Move places a task into another category at the given sort order. It
// returns nil when the task or the target category does not exist.
func (s *TaskService) Move(ctx context.Context, taskID, targetCategoryID int64, sortOrder int, now time.Time) (*Placement, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task %d: %w", taskID, err)
	}

	if _, err := s.categories.GetByID(ctx, targetCategoryID); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load category %d: %w", targetCategoryID, err)
	}

	unlock := s.locks.Lock(task.CategoryID, targetCategoryID)
	defer unlock()

	return s.place(ctx, *task, targetCategoryID, sortOrder, now)
}

func (s *TaskService) place(ctx context.Context, task model.Task, categoryID int64, sortOrder int, now time.Time) (*Placement, error) {
	err := s.tasks.UpdatePlacement(ctx, task.ID, categoryID, sortOrder, now.UnixMilli())
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Placement{
		TaskID:       task.ID,
		FromCategory: task.CategoryID,
		ToCategory:   categoryID,
		SortOrder:    sortOrder,
	}, nil
}
