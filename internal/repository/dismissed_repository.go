package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"widget-planner/internal/model"
)

// DismissedRepository keeps the permanent calendar suppression list.
type DismissedRepository struct {
	db *gorm.DB
}

func NewDismissedRepository(db *gorm.DB) *DismissedRepository {
	return &DismissedRepository{db: db}
}

// Add records a dismissal. Adding an existing (category, title) pair is a no-op.
func (r *DismissedRepository) Add(ctx context.Context, categoryID int64, title string) error {
	row := model.CalendarDismissed{CategoryID: categoryID, EventTitle: title}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("add dismissal: %w", err)
	}
	return nil
}

// TitlesForCategory returns the dismissed event titles of one category.
func (r *DismissedRepository) TitlesForCategory(ctx context.Context, categoryID int64) ([]string, error) {
	var titles []string
	if err := r.db.WithContext(ctx).Model(&model.CalendarDismissed{}).Where("category_id = ?", categoryID).
		Order("id ASC").Pluck("event_title", &titles).Error; err != nil {
		return nil, fmt.Errorf("list dismissals: %w", err)
	}
	return titles, nil
}
