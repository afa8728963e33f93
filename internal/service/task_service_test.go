package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"widget-planner/internal/model"
)

func TestTaskCreateAppends(t *testing.T) {
	f := newFixture(t)
	cat := f.category("Inbox")
	svc := f.engine.Tasks()

	first, err := svc.Create(f.ctx, TaskInput{CategoryID: cat.ID, Content: "one"}, at(2, 9, 0))
	require.NoError(t, err)
	when := at(3, 10, 0)
	second, err := svc.Create(f.ctx, TaskInput{CategoryID: cat.ID, Content: "two", ScheduledTime: &when}, at(2, 9, 1))
	require.NoError(t, err)

	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)
	assert.Equal(t, cat.DefaultBulletColor, first.BulletColor)
	require.NotNil(t, second.ScheduledTime)
	assert.Equal(t, when.UnixMilli(), *second.ScheduledTime)

	_, err = svc.Create(f.ctx, TaskInput{CategoryID: cat.ID, Content: "  "}, at(2, 9, 2))
	assert.ErrorIs(t, err, ErrEmptyContent)

	missing, err := svc.Create(f.ctx, TaskInput{CategoryID: 999, Content: "x"}, at(2, 9, 2))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReorderAndMove(t *testing.T) {
	f := newFixture(t)
	a := f.category("A")
	b := f.category("B")
	f.widget(1, a.ID)
	f.widget(2, b.ID)
	task := f.task(a.ID, "shift", 0)

	ok, err := f.engine.ReorderTask(f.ctx, task.ID, 9, at(2, 9, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{1}, f.sink.last())

	got, err := f.stores.Tasks.GetByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.SortOrder)

	ok, err = f.engine.MoveTask(f.ctx, task.ID, b.ID, 2, at(2, 9, 5))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{1, 2}, f.sink.last())

	got, err = f.stores.Tasks.GetByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.CategoryID)
	assert.Equal(t, 2, got.SortOrder)
	assert.Equal(t, at(2, 9, 5).UnixMilli(), got.UpdatedAt)
}

func TestReorderAndMoveNotFound(t *testing.T) {
	f := newFixture(t)
	a := f.category("A")
	task := f.task(a.ID, "x", 0)

	ok, err := f.engine.ReorderTask(f.ctx, 404, 1, at(2, 9, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.engine.MoveTask(f.ctx, 404, a.ID, 1, at(2, 9, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.engine.MoveTask(f.ctx, task.ID, 404, 1, at(2, 9, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := f.stores.Tasks.GetByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.CategoryID)
}

func TestTaskListUsesCategoryOrdering(t *testing.T) {
	f := newFixture(t)
	cat := f.category("Timed", func(c *model.Category) {
		c.AutoSortTimedEntries = true
		c.TimedEntriesAscending = true
	})
	f.task(cat.ID, "later", 0, scheduledAt(200))
	f.task(cat.ID, "plain", 1)
	f.task(cat.ID, "sooner", 2, scheduledAt(100))

	tasks, err := f.engine.Tasks().List(f.ctx, cat.ID)
	require.NoError(t, err)

	var contents []string
	for _, task := range tasks {
		contents = append(contents, task.Content)
	}
	assert.Equal(t, []string{"plain", "sooner", "later"}, contents)
}

func TestSetCompleted(t *testing.T) {
	f := newFixture(t)
	cat := f.category("A")
	task := f.task(cat.ID, "x", 0)

	got, err := f.engine.Tasks().SetCompleted(f.ctx, task.ID, true, at(2, 9, 0))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Completed)

	got, err = f.engine.Tasks().SetCompleted(f.ctx, 404, true, at(2, 9, 0))
	require.NoError(t, err)
	assert.Nil(t, got)
}
