package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"widget-planner/internal/model"
)

func TestCategoryCreateAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := f.engine.Categories()

	first, err := svc.Create(f.ctx, model.Category{Name: " Work "}, at(2, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, "Work", first.Name)
	assert.Equal(t, model.DisplayCheckbox, first.DisplayMode)

	second, err := svc.Create(f.ctx, model.Category{Name: "Home"}, at(2, 9, 0))
	require.NoError(t, err)
	assert.Greater(t, second.Position, first.Position)

	_, err = svc.Create(f.ctx, model.Category{Name: " "}, at(2, 9, 0))
	assert.ErrorIs(t, err, ErrEmptyName)

	f.widget(3, first.ID)
	f.task(first.ID, "t", 0)

	widgets, err := svc.Delete(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, widgets.Sorted())
	assert.Empty(t, f.tasksIn(first.ID))

	widgets, err = svc.Delete(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, widgets)
}

func TestAddRoutine(t *testing.T) {
	f := newFixture(t)
	cat := f.category("A")
	svc := f.engine.Categories()

	routine, err := svc.AddRoutine(f.ctx, model.Routine{
		CategoryID:        cat.ID,
		Frequency:         model.FrequencyWeekly,
		Hour:              7,
		ScheduleDayOfWeek: ptr(1),
		IncompleteAction:  model.ActionDelete,
		CompletedAction:   model.ActionComplete,
	}, at(2, 9, 0))
	require.NoError(t, err)
	require.NotNil(t, routine)
	assert.NotZero(t, routine.ID)

	_, err = svc.AddRoutine(f.ctx, model.Routine{
		CategoryID:       cat.ID,
		Frequency:        model.FrequencyDaily,
		IncompleteAction: model.ActionMove,
		CompletedAction:  model.ActionDelete,
	}, at(2, 9, 0))
	assert.Error(t, err, "a move needs a target")

	missing, err := svc.AddRoutine(f.ctx, model.Routine{
		CategoryID:       404,
		Frequency:        model.FrequencyDaily,
		IncompleteAction: model.ActionDelete,
		CompletedAction:  model.ActionDelete,
	}, at(2, 9, 0))
	require.NoError(t, err)
	assert.Nil(t, missing)

	routines, err := svc.Routines(f.ctx)
	require.NoError(t, err)
	assert.Len(t, routines, 1)
}

func TestDeleteRoutine(t *testing.T) {
	f := newFixture(t)
	cat := f.category("A")
	r := f.routine(model.Routine{
		CategoryID: cat.ID, Frequency: model.FrequencyDaily, Hour: 8,
		IncompleteAction: model.ActionDelete, CompletedAction: model.ActionDelete,
	})

	ok, err := f.engine.Categories().DeleteRoutine(f.ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.engine.Categories().DeleteRoutine(f.ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
