package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"widget-planner/internal/calendar"
	"widget-planner/internal/model"
)

var (
	_ EventSource = (*calendar.FileSource)(nil)
	_ EventSource = (*calendar.Static)(nil)
)

func syncEnabled(c *model.Category) { c.SyncWithCalendar = true }

func TestCalendarSyncInsertsAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	cat := f.category("Agenda", syncEnabled)
	f.category("Manual")
	f.task(cat.ID, "existing", 3)
	f.widget(7, cat.ID)

	start := at(2, 9, 30).UnixMilli()
	f.source.Events = []calendar.Event{
		{ID: "1", Title: " Dentist ", StartMillis: start},
		{ID: "2", Title: "Holiday", StartMillis: start, AllDay: true},
		{ID: "3", Title: "Dentist", StartMillis: start},
		{ID: "4", Title: "existing", StartMillis: start},
		{ID: "5", Title: "   ", StartMillis: start},
	}

	now := at(2, 8, 0)
	report, err := f.engine.SyncCalendar(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, []int64{7}, report.Widgets.Sorted())
	assert.Equal(t, 1, f.source.LastDaysAhead())

	tasks := f.tasksIn(cat.ID)
	require.Len(t, tasks, 3)

	byTitle := map[string]model.Task{}
	for _, task := range tasks {
		byTitle[task.Title()] = task
	}

	dentist := byTitle["Dentist"]
	assert.True(t, dentist.FromCalendarSync)
	require.NotNil(t, dentist.ScheduledTime)
	assert.Equal(t, start, *dentist.ScheduledTime)
	assert.Equal(t, 4, dentist.SortOrder)
	assert.Equal(t, cat.DefaultBulletColor, dentist.BulletColor)
	assert.Equal(t, cat.DefaultTextColor, dentist.TextColor)

	holiday := byTitle["Holiday"]
	assert.Nil(t, holiday.ScheduledTime)
	assert.Equal(t, 5, holiday.SortOrder)

	second, err := f.engine.SyncCalendar(f.ctx, at(2, 8, 15))
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Empty(t, second.Widgets)
	assert.Len(t, f.tasksIn(cat.ID), 3)

	last, ok, err := f.engine.Calendar().LastSync(f.ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, at(2, 8, 15).UnixMilli(), last.UnixMilli())
}

func TestCalendarSyncRespectsDismissals(t *testing.T) {
	f := newFixture(t)
	cat := f.category("Agenda", syncEnabled)
	f.widget(3, cat.ID)
	require.NoError(t, f.stores.Dismissed.Add(f.ctx, cat.ID, "Dentist"))

	f.source.Events = []calendar.Event{{Title: "Dentist", StartMillis: at(2, 10, 0).UnixMilli()}}

	report, err := f.engine.SyncCalendar(f.ctx, at(2, 8, 0))
	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Empty(t, report.Widgets)
	assert.Empty(t, f.tasksIn(cat.ID))
}

func TestCalendarDeletedByRoutineIsNotReimported(t *testing.T) {
	f := newFixture(t)
	cat := f.category("Agenda", syncEnabled)
	f.source.Events = []calendar.Event{{Title: "Standup", StartMillis: at(2, 9, 0).UnixMilli()}}

	_, err := f.engine.SyncCalendar(f.ctx, at(2, 8, 0))
	require.NoError(t, err)
	require.Len(t, f.tasksIn(cat.ID), 1)

	f.routine(model.Routine{
		CategoryID:       cat.ID,
		Frequency:        model.FrequencyDaily,
		Hour:             20,
		IncompleteAction: model.ActionDelete,
		CompletedAction:  model.ActionDelete,
	})
	_, err = f.engine.RunDueRoutines(f.ctx, at(2, 20, 0))
	require.NoError(t, err)
	require.Empty(t, f.tasksIn(cat.ID))

	report, err := f.engine.SyncCalendar(f.ctx, at(2, 20, 15))
	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Empty(t, f.tasksIn(cat.ID))
}

func TestCalendarSyncWithoutPermission(t *testing.T) {
	f := newFixture(t)
	cat := f.category("Agenda", syncEnabled)
	f.source.Denied = true
	f.source.Events = []calendar.Event{{Title: "Dentist"}}

	report, err := f.engine.SyncCalendar(f.ctx, at(2, 8, 0))
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Zero(t, f.source.Reads)
	assert.Empty(t, f.tasksIn(cat.ID))

	_, ok, err := f.engine.Calendar().LastSync(f.ctx)
	require.NoError(t, err)
	assert.False(t, ok, "last sync must not be recorded without permission")
}

func TestCalendarSyncWithoutEnrolledCategories(t *testing.T) {
	f := newFixture(t)
	f.category("Manual")
	f.source.Events = []calendar.Event{{Title: "Dentist"}}

	report, err := f.engine.SyncCalendar(f.ctx, at(2, 8, 0))
	require.NoError(t, err)
	assert.Empty(t, report.Widgets)
	assert.Zero(t, f.source.Reads)

	last, ok, err := f.engine.Calendar().LastSync(f.ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, at(2, 8, 0).UnixMilli(), last.UnixMilli())
}

func TestCalendarSyncIsPerCategory(t *testing.T) {
	f := newFixture(t)
	a := f.category("A", syncEnabled)
	b := f.category("B", syncEnabled)
	f.task(b.ID, "Gym", 0)
	f.widget(1, a.ID)
	f.widget(2, b.ID)
	f.source.Events = []calendar.Event{{Title: "Gym", StartMillis: at(2, 18, 0).UnixMilli()}}

	report, err := f.engine.SyncCalendar(f.ctx, at(2, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, []int64{1}, report.Widgets.Sorted())
	assert.Len(t, f.tasksIn(a.ID), 1)
	assert.Len(t, f.tasksIn(b.ID), 1)
}
