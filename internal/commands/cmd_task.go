package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"widget-planner/internal/service"
)

type TaskCmd struct {
	flags *Flags

	// add flags
	at        string
	completed bool

	// mv flags
	order int
}

// NewTaskCmd creates a new task command
func NewTaskCmd(flags *Flags) *TaskCmd {
	return &TaskCmd{flags: flags}
}

// Register adds the task command to the application
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Create, edit and delete tasks",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Append a task to a category",
				UsageText: "widget-planner task add [--at \"2026-03-02 09:30\"] <category-id> <content...>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "at", Usage: "scheduled time (YYYY-MM-DD HH:MM)", Destination: &cmd.at},
					&cli.BoolFlag{Name: "done", Usage: "create the task completed", Destination: &cmd.completed},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List a category's tasks in display order",
				UsageText: "widget-planner task ls <category-id>",
				Action:    cmd.runList,
			},
			{
				Name:      "done",
				Usage:     "Toggle a task's completed flag",
				UsageText: "widget-planner task done <task-id>",
				Action:    cmd.runToggle,
			},
			{
				Name:      "rm",
				Usage:     "Move a task to the trash",
				UsageText: "widget-planner task rm <task-id>",
				Action:    cmd.runDelete,
			},
			{
				Name:      "reorder",
				Usage:     "Set a task's sort order",
				UsageText: "widget-planner task reorder <task-id> <sort-order>",
				Action:    cmd.runReorder,
			},
			{
				Name:      "mv",
				Usage:     "Move a task into another category",
				UsageText: "widget-planner task mv [--order N] <task-id> <category-id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "order", Usage: "sort order in the target category", Destination: &cmd.order},
				},
				Action: cmd.runMove,
			},
		},
	})

	return app
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	categoryID, err := argID(c, 0, "category-id")
	if err != nil {
		return err
	}

	input := service.TaskInput{
		CategoryID: categoryID,
		Content:    strings.Join(c.Args().Slice()[1:], " "),
		Completed:  cmd.completed,
	}
	if cmd.at != "" {
		scheduled, err := parseTime(cmd.at, cmd.flags.location())
		if err != nil {
			return err
		}
		input.ScheduledTime = &scheduled
	}

	task, err := cmd.flags.Engine.CreateTask(ctx, input, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if task == nil {
		return fmt.Errorf("category %d not found", categoryID)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Created task %d\n", task.ID)
	return nil
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	categoryID, err := argID(c, 0, "category-id")
	if err != nil {
		return err
	}

	tasks, err := cmd.flags.Engine.Tasks().List(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	out := c.Root().Writer
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(out, "No tasks")
		return nil
	}

	loc := cmd.flags.location()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tORDER\tDONE\tTIME\tCONTENT")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%t\t%s\t%s\n", t.ID, t.SortOrder, t.Completed, formatMillis(t.ScheduledTime, loc), t.Title())
	}
	return w.Flush()
}

func (cmd *TaskCmd) runToggle(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "task-id")
	if err != nil {
		return err
	}

	ok, err := cmd.flags.Engine.ToggleTask(ctx, id, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Toggled task %d\n", id)
	return nil
}

func (cmd *TaskCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "task-id")
	if err != nil {
		return err
	}

	trashID, err := cmd.flags.Engine.DeleteTask(ctx, id, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if trashID == nil {
		return fmt.Errorf("task %d not found", id)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Moved task %d to trash (restore with: trash restore %d)\n", id, *trashID)
	return nil
}

func (cmd *TaskCmd) runReorder(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "task-id")
	if err != nil {
		return err
	}
	order, err := argInt(c, 1, "sort-order")
	if err != nil {
		return err
	}

	ok, err := cmd.flags.Engine.ReorderTask(ctx, id, order, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("reorder task: %w", err)
	}
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Task %d now at %d\n", id, order)
	return nil
}

func (cmd *TaskCmd) runMove(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "task-id")
	if err != nil {
		return err
	}
	target, err := argID(c, 1, "category-id")
	if err != nil {
		return err
	}

	ok, err := cmd.flags.Engine.MoveTask(ctx, id, target, cmd.order, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	if !ok {
		return fmt.Errorf("task %d or category %d not found", id, target)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Moved task %d to category %d\n", id, target)
	return nil
}
