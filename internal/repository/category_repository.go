package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"widget-planner/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) ListSyncEnabled(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("sync_with_calendar = ?", true).
		Order("position ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list sync categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) ListNotifyEnabled(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("notify_enabled = ?", true).
		Order("position ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list notify categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category together with its tasks, routines, dismissals and
// widget assignments. Trash entries keep their snapshot and are left alone.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete category tasks: %w", err)
		}
		if err := tx.Where("category_id = ?", id).Delete(&model.Routine{}).Error; err != nil {
			return fmt.Errorf("delete category routines: %w", err)
		}
		if err := tx.Where("category_id = ?", id).Delete(&model.CalendarDismissed{}).Error; err != nil {
			return fmt.Errorf("delete category dismissals: %w", err)
		}
		if err := tx.Where("category_id = ?", id).Delete(&model.WidgetCategory{}).Error; err != nil {
			return fmt.Errorf("delete category widgets: %w", err)
		}
		res := tx.Delete(&model.Category{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return err
}
