package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"widget-planner/internal/model"
)

type CategoryCmd struct {
	flags *Flags

	// add flags
	bullet      bool
	timeFirst   bool
	ascending   bool
	autoSort    bool
	sync        bool
	notify      bool
	leadMinutes int
}

// NewCategoryCmd creates a new category command
func NewCategoryCmd(flags *Flags) *CategoryCmd {
	return &CategoryCmd{flags: flags}
}

// Register adds the category command to the application
func (cmd *CategoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "category",
		Aliases: []string{"cat"},
		Usage:   "Manage task categories",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a category",
				UsageText: "widget-planner category add [options] <name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "bullet", Usage: "render tasks as bullets instead of checkboxes", Destination: &cmd.bullet},
					&cli.BoolFlag{Name: "time-first", Usage: "place timed tasks before untimed ones", Destination: &cmd.timeFirst},
					&cli.BoolFlag{Name: "ascending", Usage: "order timed tasks earliest first", Destination: &cmd.ascending},
					&cli.BoolFlag{Name: "auto-sort", Usage: "sort timed tasks by time", Destination: &cmd.autoSort},
					&cli.BoolFlag{Name: "sync", Usage: "import calendar events into this category", Destination: &cmd.sync},
					&cli.BoolFlag{Name: "notify", Usage: "send reminders for timed tasks", Destination: &cmd.notify},
					&cli.IntFlag{Name: "lead", Usage: "reminder lead time in minutes", Destination: &cmd.leadMinutes},
				},
				Action: cmd.runAdd,
			},
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List categories",
				Action:  cmd.runList,
			},
			{
				Name:      "rm",
				Usage:     "Delete a category with its tasks and routines",
				UsageText: "widget-planner category rm <id>",
				Action:    cmd.runDelete,
			},
		},
	})

	return app
}

func (cmd *CategoryCmd) runAdd(ctx context.Context, c *cli.Command) error {
	category := model.Category{
		Name:                  c.Args().First(),
		DisplayMode:           model.DisplayCheckbox,
		TasksWithTimeFirst:    cmd.timeFirst,
		TimedEntriesAscending: cmd.ascending,
		AutoSortTimedEntries:  cmd.autoSort,
		SyncWithCalendar:      cmd.sync,
		NotifyEnabled:         cmd.notify,
		NotifyLeadMinutes:     cmd.leadMinutes,
	}
	if cmd.bullet {
		category.DisplayMode = model.DisplayBullet
	}

	created, err := cmd.flags.Engine.Categories().Create(ctx, category, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Created category %d %q\n", created.ID, created.Name)
	return nil
}

func (cmd *CategoryCmd) runList(ctx context.Context, c *cli.Command) error {
	categories, err := cmd.flags.Engine.Categories().List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	out := c.Root().Writer
	if len(categories) == 0 {
		_, _ = fmt.Fprintln(out, "No categories")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMODE\tSYNC\tNOTIFY")
	for _, cat := range categories {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", cat.ID, cat.Name, cat.DisplayMode, cat.SyncWithCalendar, cat.NotifyEnabled)
	}
	return w.Flush()
}

func (cmd *CategoryCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "id")
	if err != nil {
		return err
	}

	ok, err := cmd.flags.Engine.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if !ok {
		return fmt.Errorf("category %d not found", id)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Deleted category %d\n", id)
	return nil
}
