package service

import (
	"context"
	"fmt"
	"sort"
)

// WidgetSet is a set of widget ids that need a render refresh.
type WidgetSet map[int64]struct{}

func NewWidgetSet(ids ...int64) WidgetSet {
	s := make(WidgetSet, len(ids))
	s.Add(ids...)
	return s
}

func (s WidgetSet) Add(ids ...int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s WidgetSet) Union(other WidgetSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

func (s WidgetSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s WidgetSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// widgetsForCategories collects the widgets displaying any of the categories.
// A preset assignment is expanded to the physical widgets using the preset;
// the negative preset id itself is never returned.
func widgetsForCategories(ctx context.Context, store WidgetStore, categoryIDs ...int64) (WidgetSet, error) {
	out := NewWidgetSet()
	for _, categoryID := range categoryIDs {
		ids, err := store.WidgetIDsForCategory(ctx, categoryID)
		if err != nil {
			return out, fmt.Errorf("widgets for category %d: %w", categoryID, err)
		}
		for _, id := range ids {
			if id >= 0 {
				out.Add(id)
				continue
			}
			users, err := store.WidgetIDsUsingPreset(ctx, id)
			if err != nil {
				return out, fmt.Errorf("widgets for preset %d: %w", id, err)
			}
			out.Add(users...)
		}
	}
	return out, nil
}
