package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"widget-planner/internal/model"
)

// naturalOrder is the store's natural task order: timed entries by time, then
// untimed, each group by sort order with the id as the final tie-break.
const naturalOrder = "scheduled_time IS NULL, scheduled_time ASC, sort_order ASC, id ASC"

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update writes the full row.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", task.ID).
		Select("*").Omit("id").Updates(task)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePlacement changes category and sort order in a single statement.
func (r *TaskRepository) UpdatePlacement(ctx context.Context, id, categoryID int64, sortOrder int, updatedAt int64) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"category_id": categoryID,
		"sort_order":  sortOrder,
		"updated_at":  updatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("update task placement: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// ListByCategory returns a category's tasks in natural order.
func (r *TaskRepository) ListByCategory(ctx context.Context, categoryID int64) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).
		Order(naturalOrder).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// MaxSortOrder returns the highest sort order in a category, or -1 when the
// category has no tasks.
func (r *TaskRepository) MaxSortOrder(ctx context.Context, categoryID int64) (int, error) {
	var maxOrder int
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return maxOrder, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
