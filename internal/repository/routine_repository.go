package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"widget-planner/internal/model"
)

// RoutineRepository handles CRUD for routines.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) Create(ctx context.Context, routine *model.Routine) error {
	if err := routine.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

// List returns every routine in id order.
func (r *RoutineRepository) List(ctx context.Context) ([]model.Routine, error) {
	var routines []model.Routine
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}

func (r *RoutineRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Routine{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete routine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
