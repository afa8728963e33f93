package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"widget-planner/internal/model"
)

// WidgetRepository manages widget configs and widget-category assignments.
type WidgetRepository struct {
	db *gorm.DB
}

func NewWidgetRepository(db *gorm.DB) *WidgetRepository {
	return &WidgetRepository{db: db}
}

// SaveConfig inserts or replaces a widget config.
func (r *WidgetRepository) SaveConfig(ctx context.Context, cfg *model.WidgetConfig) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(cfg).Error; err != nil {
		return fmt.Errorf("save widget config: %w", err)
	}
	return nil
}

func (r *WidgetRepository) GetConfig(ctx context.Context, widgetID int64) (*model.WidgetConfig, error) {
	var cfg model.WidgetConfig
	if err := r.db.WithContext(ctx).Where("widget_id = ?", widgetID).First(&cfg).Error; err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

// DeleteConfig removes a widget and its assignments.
func (r *WidgetRepository) DeleteConfig(ctx context.Context, widgetID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("widget_id = ?", widgetID).Delete(&model.WidgetCategory{}).Error; err != nil {
			return fmt.Errorf("delete widget assignments: %w", err)
		}
		if err := tx.Where("widget_id = ?", widgetID).Delete(&model.WidgetConfig{}).Error; err != nil {
			return fmt.Errorf("delete widget config: %w", err)
		}
		return nil
	})
}

// Assign inserts or replaces one widget-category assignment.
func (r *WidgetRepository) Assign(ctx context.Context, assignment *model.WidgetCategory) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(assignment).Error; err != nil {
		return fmt.Errorf("assign widget category: %w", err)
	}
	return nil
}

func (r *WidgetRepository) Unassign(ctx context.Context, widgetID, categoryID int64) error {
	if err := r.db.WithContext(ctx).Where("widget_id = ? AND category_id = ?", widgetID, categoryID).
		Delete(&model.WidgetCategory{}).Error; err != nil {
		return fmt.Errorf("unassign widget category: %w", err)
	}
	return nil
}

// AssignmentsForWidget returns a widget's assignments ordered by sort order.
func (r *WidgetRepository) AssignmentsForWidget(ctx context.Context, widgetID int64) ([]model.WidgetCategory, error) {
	var rows []model.WidgetCategory
	if err := r.db.WithContext(ctx).Where("widget_id = ?", widgetID).
		Order("sort_order ASC, category_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list widget assignments: %w", err)
	}
	return rows, nil
}

// WidgetIDsForCategory returns the distinct widget ids a category is assigned to.
func (r *WidgetRepository) WidgetIDsForCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.WidgetCategory{}).Where("category_id = ?", categoryID).
		Distinct().Order("widget_id ASC").Pluck("widget_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list category widgets: %w", err)
	}
	return ids, nil
}

// WidgetIDsUsingPreset returns the widgets rendering a preset's assignments.
func (r *WidgetRepository) WidgetIDsUsingPreset(ctx context.Context, presetID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.WidgetConfig{}).Where("preset_id = ?", presetID).
		Order("widget_id ASC").Pluck("widget_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list preset widgets: %w", err)
	}
	return ids, nil
}
