package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"widget-planner/internal/model"
)

var ErrEmptyName = errors.New("service: category name is required")

// CategoryService manages categories and the routines attached to them.
type CategoryService struct {
	categories CategoryStore
	routines   RoutineStore
	widgets    WidgetStore
}

func NewCategoryService(categories CategoryStore, routines RoutineStore, widgets WidgetStore) *CategoryService {
	return &CategoryService{categories: categories, routines: routines, widgets: widgets}
}

// Create stores a new category at the end of the category list.
func (s *CategoryService) Create(ctx context.Context, category model.Category, now time.Time) (*model.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, ErrEmptyName
	}
	if category.DisplayMode == "" {
		category.DisplayMode = model.DisplayCheckbox
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if category.Position == 0 && len(existing) > 0 {
		category.Position = existing[len(existing)-1].Position + 1
	}

	category.ID = 0
	category.CreatedAt = now.UnixMilli()
	category.UpdatedAt = now.UnixMilli()
	if err := s.categories.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

// Delete removes a category. The store cascades to its tasks, routines and
// widget assignments. It returns the widgets that displayed the category, or
// nil when it did not exist.
func (s *CategoryService) Delete(ctx context.Context, categoryID int64) (WidgetSet, error) {
	widgets, err := widgetsForCategories(ctx, s.widgets, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return widgets, nil
}

// AddRoutine validates and stores a routine for an existing category. It
// returns nil when the category does not exist.
func (s *CategoryService) AddRoutine(ctx context.Context, routine model.Routine, now time.Time) (*model.Routine, error) {
	if err := routine.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, routine.CategoryID); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	routine.ID = 0
	routine.CreatedAt = now.UnixMilli()
	routine.UpdatedAt = now.UnixMilli()
	if err := s.routines.Create(ctx, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (s *CategoryService) Routines(ctx context.Context) ([]model.Routine, error) {
	return s.routines.List(ctx)
}

// DeleteRoutine removes a routine. It reports false when it did not exist.
func (s *CategoryService) DeleteRoutine(ctx context.Context, routineID int64) (bool, error) {
	if err := s.routines.Delete(ctx, routineID); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
