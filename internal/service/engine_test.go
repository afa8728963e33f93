package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleTaskRefreshesWidgets(t *testing.T) {
	f := newFixture(t)
	cat := f.category("A")
	f.widget(6, cat.ID)
	task := f.task(cat.ID, "flip", 0)

	ok, err := f.engine.ToggleTask(f.ctx, task.ID, at(2, 9, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{6}, f.sink.last())

	got, err := f.stores.Tasks.GetByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	ok, err = f.engine.ToggleTask(f.ctx, task.ID, at(2, 9, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = f.stores.Tasks.GetByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	ok, err = f.engine.ToggleTask(f.ctx, 404, at(2, 9, 2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListTrash(t *testing.T) {
	f := newFixture(t)
	cat := f.category("A")
	task := f.task(cat.ID, "gone", 0)

	_, err := f.engine.DeleteTask(f.ctx, task.ID, at(2, 9, 0))
	require.NoError(t, err)

	entries, err := f.engine.ListTrash(f.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "gone", entries[0].Content)
}

func TestAttachReplacesSink(t *testing.T) {
	f := newFixture(t)
	cat := f.category("A")
	f.widget(3, cat.ID)
	task := f.task(cat.ID, "x", 0)

	replacement := &recordingSink{}
	f.engine.Attach(replacement, f.notifier)

	_, err := f.engine.DeleteTask(f.ctx, task.ID, at(2, 9, 0))
	require.NoError(t, err)

	assert.Nil(t, f.sink.last())
	assert.Equal(t, []int64{3}, replacement.last())
}

func TestCreateTaskAndDeleteCategoryRefresh(t *testing.T) {
	f := newFixture(t)
	cat := f.category("A")
	f.widget(8, cat.ID)

	task, err := f.engine.CreateTask(f.ctx, TaskInput{CategoryID: cat.ID, Content: "new"}, at(2, 9, 0))
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, []int64{8}, f.sink.last())

	missing, err := f.engine.CreateTask(f.ctx, TaskInput{CategoryID: 404, Content: "x"}, at(2, 9, 0))
	require.NoError(t, err)
	assert.Nil(t, missing)

	f.sink.calls = nil
	ok, err := f.engine.DeleteCategory(f.ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{8}, f.sink.last())
	assert.Empty(t, f.tasksIn(cat.ID))

	ok, err = f.engine.DeleteCategory(f.ctx, cat.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
