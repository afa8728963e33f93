package service

import (
	"sort"

	"widget-planner/internal/model"
)

// OrderTasks computes the display order of one category's tasks.
//
// With auto-sort off the input order is returned unchanged. Otherwise timed
// tasks are stably sorted by scheduled time (ascending or descending) and
// placed before or after the untimed ones, which keep their relative order.
// The input slice is never modified.
func OrderTasks(tasks []model.Task, settings model.OrderingSettings) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	if !settings.AutoSortTimedEntries {
		return append(out, tasks...)
	}

	var timed, untimed []model.Task
	for _, task := range tasks {
		if task.IsTimed() {
			timed = append(timed, task)
		} else {
			untimed = append(untimed, task)
		}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		a, b := *timed[i].ScheduledTime, *timed[j].ScheduledTime
		if settings.TimedEntriesAscending {
			return a < b
		}
		return a > b
	})

	if settings.TasksWithTimeFirst {
		out = append(out, timed...)
		return append(out, untimed...)
	}
	out = append(out, untimed...)
	return append(out, timed...)
}
