package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"widget-planner/internal/model"
)

// StateRepository stores engine bookkeeping values such as the last sync time.
type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the stored value and whether the key exists.
func (r *StateRepository) Get(ctx context.Context, key string) (int64, bool, error) {
	var row model.AppState
	err := r.db.WithContext(ctx).Where("name = ?", key).First(&row).Error
	switch {
	case err == nil:
		return row.Value, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("get state %q: %w", key, err)
	}
}

func (r *StateRepository) Set(ctx context.Context, key string, value int64) error {
	row := model.AppState{Name: key, Value: value}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}
