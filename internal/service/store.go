package service

import (
	"context"
	"errors"

	"widget-planner/internal/model"
	"widget-planner/internal/repository"
)

// The engine talks to the entity store through these interfaces. The gorm
// repositories in internal/repository satisfy them.

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	UpdatePlacement(ctx context.Context, id, categoryID int64, sortOrder int, updatedAt int64) error
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]model.Task, error)
	MaxSortOrder(ctx context.Context, categoryID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	ListSyncEnabled(ctx context.Context) ([]model.Category, error)
	ListNotifyEnabled(ctx context.Context) ([]model.Category, error)
	Delete(ctx context.Context, id int64) error
}

type RoutineStore interface {
	Create(ctx context.Context, routine *model.Routine) error
	List(ctx context.Context) ([]model.Routine, error)
	Delete(ctx context.Context, id int64) error
}

type TrashStore interface {
	Create(ctx context.Context, entry *model.TrashEntry) error
	GetByID(ctx context.Context, id int64) (*model.TrashEntry, error)
	List(ctx context.Context) ([]model.TrashEntry, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)
}

type DismissalStore interface {
	Add(ctx context.Context, categoryID int64, title string) error
	TitlesForCategory(ctx context.Context, categoryID int64) ([]string, error)
}

type WidgetStore interface {
	SaveConfig(ctx context.Context, cfg *model.WidgetConfig) error
	GetConfig(ctx context.Context, widgetID int64) (*model.WidgetConfig, error)
	DeleteConfig(ctx context.Context, widgetID int64) error
	Assign(ctx context.Context, assignment *model.WidgetCategory) error
	Unassign(ctx context.Context, widgetID, categoryID int64) error
	AssignmentsForWidget(ctx context.Context, widgetID int64) ([]model.WidgetCategory, error)
	WidgetIDsForCategory(ctx context.Context, categoryID int64) ([]int64, error)
	WidgetIDsUsingPreset(ctx context.Context, presetID int64) ([]int64, error)
}

type StateStore interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, value int64) error
}

// Stores bundles every store the engine needs.
type Stores struct {
	Tasks      TaskStore
	Categories CategoryStore
	Routines   RoutineStore
	Trash      TrashStore
	Dismissed  DismissalStore
	Widgets    WidgetStore
	State      StateStore
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
