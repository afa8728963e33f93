package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"widget-planner/internal/calendar"
	"widget-planner/internal/config"
	"widget-planner/internal/repository"
	"widget-planner/internal/service"
)

type harness struct {
	t      *testing.T
	flags  *Flags
	source *calendar.Static
	stores service.Stores
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "cli.db"), zerolog.Nop())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Engine.Timezone = "UTC"

	stores := service.NewStores(db)
	source := &calendar.Static{}
	engine := service.NewEngine(stores, source, service.Options{Location: time.UTC, CalendarDaysAhead: 1}, zerolog.Nop())

	return &harness{
		t:      t,
		source: source,
		stores: stores,
		flags: &Flags{
			Config: &cfg,
			Engine: engine,
			Clock:  func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) },
		},
	}
}

// run executes one command line against a fresh command tree.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	var buf bytes.Buffer
	app := &cli.Command{Name: "widget-planner", Writer: &buf}
	NewCategoryCmd(h.flags).Register(app)
	NewTaskCmd(h.flags).Register(app)
	NewRoutineCmd(h.flags).Register(app)
	NewCalendarCmd(h.flags).Register(app)
	NewWidgetCmd(h.flags).Register(app)
	NewTrashCmd(h.flags).Register(app)
	NewRunCmd(h.flags).Register(app)

	err := app.Run(context.Background(), append([]string{"widget-planner"}, args...))
	return buf.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestCategoryAndTaskCommands(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("category", "add", "--time-first", "Today"), `Created category 1 "Today"`)
	assert.Contains(t, h.mustRun("category", "ls"), "Today")

	assert.Contains(t, h.mustRun("task", "add", "1", "buy", "milk"), "Created task 1")
	assert.Contains(t, h.mustRun("task", "add", "--at", "2026-03-02 08:30", "1", "standup"), "Created task 2")

	out := h.mustRun("task", "ls", "1")
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "2026-03-02 08:30")

	h.mustRun("task", "done", "1")
	got, err := h.stores.Tasks.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	_, err = h.run("task", "add", "9", "orphan")
	assert.ErrorContains(t, err, "category 9 not found")

	_, err = h.run("task", "done", "abc")
	assert.ErrorContains(t, err, "invalid task-id")
}

func TestTaskMoveAndTrashCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("category", "add", "A")
	h.mustRun("category", "add", "B")
	h.mustRun("task", "add", "1", "carry")

	h.mustRun("task", "mv", "--order", "4", "1", "2")
	got, err := h.stores.Tasks.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CategoryID)
	assert.Equal(t, 4, got.SortOrder)

	assert.Contains(t, h.mustRun("task", "rm", "1"), "trash restore 1")
	assert.Contains(t, h.mustRun("trash", "ls"), "carry")

	h.mustRun("trash", "restore", "1")
	assert.Contains(t, h.mustRun("trash", "ls"), "Trash is empty")

	restored, err := h.stores.Tasks.ListByCategory(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "carry", restored[0].Content)

	h.mustRun("task", "rm", strconv.FormatInt(restored[0].ID, 10))
	h.mustRun("trash", "clear")
	assert.Contains(t, h.mustRun("trash", "ls"), "Trash is empty")

	_, err = h.run("trash", "restore", "40")
	assert.Error(t, err)
}

func TestRoutineCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("category", "add", "Today")
	h.mustRun("category", "add", "Tomorrow")

	out := h.mustRun("routine", "add", "--category", "1", "--freq", "daily", "--at", "09:00",
		"--incomplete", "move:2", "--completed", "delete")
	assert.Contains(t, out, "Created routine 1")
	assert.Contains(t, h.mustRun("routine", "ls"), "move:2")

	h.mustRun("task", "add", "1", "carry over")
	h.mustRun("task", "add", "1", "done already")
	h.mustRun("task", "done", "2")

	out = h.mustRun("routine", "run")
	assert.Contains(t, out, "Fired 1 routine(s)")

	moved, err := h.stores.Tasks.ListByCategory(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "carry over", moved[0].Content)

	_, err = h.run("routine", "add", "--category", "1", "--incomplete", "explode", "--completed", "delete")
	assert.Error(t, err)

	h.mustRun("routine", "rm", "1")
	assert.Contains(t, h.mustRun("routine", "ls"), "No routines")
}

func TestCalendarCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("category", "add", "--sync", "Calendar")

	assert.Contains(t, h.mustRun("calendar", "status"), "never synced")

	h.source.Events = []calendar.Event{{ID: "e1", Title: "Dentist", StartMillis: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC).UnixMilli()}}
	assert.Contains(t, h.mustRun("calendar", "sync"), "Inserted 1 task(s)")
	assert.Contains(t, h.mustRun("calendar", "sync"), "Inserted 0 task(s)")
	assert.Contains(t, h.mustRun("calendar", "status"), "2026-03-02 09:00:00")

	h.source.Denied = true
	assert.Contains(t, h.mustRun("calendar", "sync"), "not available")
}

func TestWidgetCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("category", "add", "Today")
	h.mustRun("category", "add", "--bullet", "Notes")
	h.mustRun("task", "add", "--at", "2026-03-02 10:15", "1", "call mom")
	h.mustRun("task", "add", "2", "idea")

	h.mustRun("widget", "config", "--name", "Home", "7")
	h.mustRun("widget", "assign", "--order", "1", "7", "1")
	h.mustRun("widget", "assign", "--order", "0", "7", "2")

	out := h.mustRun("widget", "show", "7")
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "[ ] 10:15 call mom")
	assert.Contains(t, out, "- idea")
	assert.Less(t, bytes.Index([]byte(out), []byte("[Notes]")), bytes.Index([]byte(out), []byte("[Today]")))

	h.mustRun("widget", "unassign", "7", "2")
	assert.NotContains(t, h.mustRun("widget", "show", "7"), "[Notes]")

	_, err := h.run("widget", "config", "--preset", "3", "8")
	assert.ErrorContains(t, err, "preset ids are negative")

	h.mustRun("widget", "rm", "7")
	_, err = h.run("widget", "show", "7")
	assert.ErrorContains(t, err, "not configured")
}

func TestRunOnce(t *testing.T) {
	h := newHarness(t)
	h.mustRun("category", "add", "Today")

	out := h.mustRun("run", "--once")
	assert.Contains(t, out, "routines fired:    0")
	assert.Contains(t, out, "widgets refreshed: 0")
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw        string
		wantKind   string
		wantTarget *int64
		wantErr    bool
	}{
		{raw: "delete", wantKind: "DELETE"},
		{raw: "MOVE:3", wantKind: "MOVE", wantTarget: ptr(int64(3))},
		{raw: "complete", wantKind: "COMPLETE"},
		{raw: "uncomplete:-1", wantKind: "UNCOMPLETE", wantTarget: ptr(int64(-1))},
		{raw: "move:x", wantErr: true},
		{raw: "archive", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			kind, target, err := parseAction(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, string(kind))
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("2026-03-02 08:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), got)

	_, err = parseTime("tomorrow", time.UTC)
	assert.Error(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
