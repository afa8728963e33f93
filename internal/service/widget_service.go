package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"widget-planner/internal/model"
)

// RenderItem is the render-ready view of one task.
type RenderItem struct {
	ID               int64
	Content          string
	Completed        bool
	BulletColor      int64
	TextColor        int64
	ScheduledTime    *int64
	SortOrder        int
	FromCalendarSync bool
}

// CategoryBlock is one category section of a widget.
type CategoryBlock struct {
	CategoryID         int64
	Name               string
	DisplayMode        model.DisplayMode
	DefaultBulletColor int64
	DefaultTextColor   int64
	Items              []RenderItem
}

// WidgetRenderModel is everything a surface needs to draw one widget.
type WidgetRenderModel struct {
	Config     model.WidgetConfig
	Categories []CategoryBlock
}

// WidgetService projects the live store into widget render models.
type WidgetService struct {
	widgets    WidgetStore
	categories CategoryStore
	tasks      TaskStore
}

func NewWidgetService(widgets WidgetStore, categories CategoryStore, tasks TaskStore) *WidgetService {
	return &WidgetService{widgets: widgets, categories: categories, tasks: tasks}
}

// Project builds the render model of a widget from current store state. It
// returns nil when the widget has no config. Hidden assignments and
// assignments to deleted categories are left out.
func (s *WidgetService) Project(ctx context.Context, widgetID int64) (*WidgetRenderModel, error) {
	cfg, err := s.widgets.GetConfig(ctx, widgetID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load widget %d: %w", widgetID, err)
	}

	assignments, err := s.widgets.AssignmentsForWidget(ctx, cfg.AssignmentSource())
	if err != nil {
		return nil, err
	}

	visible := make([]model.WidgetCategory, 0, len(assignments))
	for _, a := range assignments {
		if a.Visible {
			visible = append(visible, a)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].SortOrder < visible[j].SortOrder })

	out := &WidgetRenderModel{Config: *cfg, Categories: []CategoryBlock{}}
	for _, a := range visible {
		category, err := s.categories.GetByID(ctx, a.CategoryID)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load category %d: %w", a.CategoryID, err)
		}

		tasks, err := s.tasks.ListByCategory(ctx, category.ID)
		if err != nil {
			return nil, err
		}

		block := CategoryBlock{
			CategoryID:         category.ID,
			Name:               category.Name,
			DisplayMode:        category.DisplayMode,
			DefaultBulletColor: category.DefaultBulletColor,
			DefaultTextColor:   category.DefaultTextColor,
			Items:              []RenderItem{},
		}
		for _, task := range OrderTasks(tasks, category.Ordering()) {
			if cfg.HideCompleted && task.Completed {
				continue
			}
			block.Items = append(block.Items, RenderItem{
				ID:               task.ID,
				Content:          task.Content,
				Completed:        task.Completed,
				BulletColor:      task.BulletColor,
				TextColor:        task.TextColor,
				ScheduledTime:    task.ScheduledTime,
				SortOrder:        task.SortOrder,
				FromCalendarSync: task.FromCalendarSync,
			})
		}
		out.Categories = append(out.Categories, block)
	}
	return out, nil
}

// Configure stores a widget config.
func (s *WidgetService) Configure(ctx context.Context, cfg model.WidgetConfig, now time.Time) error {
	if cfg.CreatedAt == 0 {
		cfg.CreatedAt = now.UnixMilli()
	}
	cfg.UpdatedAt = now.UnixMilli()
	return s.widgets.SaveConfig(ctx, &cfg)
}

// Assign shows or hides a category on a widget at the given position.
func (s *WidgetService) Assign(ctx context.Context, widgetID, categoryID int64, sortOrder int, visible bool) error {
	return s.widgets.Assign(ctx, &model.WidgetCategory{
		WidgetID:   widgetID,
		CategoryID: categoryID,
		SortOrder:  sortOrder,
		Visible:    visible,
	})
}

func (s *WidgetService) Unassign(ctx context.Context, widgetID, categoryID int64) error {
	return s.widgets.Unassign(ctx, widgetID, categoryID)
}

// Remove deletes a widget config together with its assignments.
func (s *WidgetService) Remove(ctx context.Context, widgetID int64) error {
	return s.widgets.DeleteConfig(ctx, widgetID)
}
