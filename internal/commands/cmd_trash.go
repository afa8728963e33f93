package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
)

type TrashCmd struct {
	flags *Flags
}

// NewTrashCmd creates a new trash command
func NewTrashCmd(flags *Flags) *TrashCmd {
	return &TrashCmd{flags: flags}
}

// Register adds the trash command to the application
func (cmd *TrashCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "trash",
		Usage: "Inspect and restore deleted tasks",
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List trash entries, newest first",
				Action:  cmd.runList,
			},
			{
				Name:      "restore",
				Usage:     "Put a deleted task back into its category",
				UsageText: "widget-planner trash restore <trash-id>",
				Action:    cmd.runRestore,
			},
			{
				Name:      "rm",
				Usage:     "Permanently delete one entry",
				UsageText: "widget-planner trash rm <trash-id>",
				Action:    cmd.runDelete,
			},
			{
				Name:   "clear",
				Usage:  "Permanently delete every entry",
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *TrashCmd) runList(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.flags.Engine.ListTrash(ctx)
	if err != nil {
		return fmt.Errorf("list trash: %w", err)
	}

	out := c.Root().Writer
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "Trash is empty")
		return nil
	}

	loc := cmd.flags.location()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDELETED\tCATEGORY\tCONTENT")
	for _, e := range entries {
		deleted := time.UnixMilli(e.DeletedAt).In(loc).Format("2006-01-02 15:04")
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, deleted, e.CategoryName, e.Content)
	}
	return w.Flush()
}

func (cmd *TrashCmd) runRestore(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "trash-id")
	if err != nil {
		return err
	}

	ok, err := cmd.flags.Engine.RestoreFromTrash(ctx, id, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("restore task: %w", err)
	}
	if !ok {
		return fmt.Errorf("trash entry %d not found", id)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Restored trash entry %d\n", id)
	return nil
}

func (cmd *TrashCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "trash-id")
	if err != nil {
		return err
	}

	ok, err := cmd.flags.Engine.Trash().PermanentDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete trash entry: %w", err)
	}
	if !ok {
		return fmt.Errorf("trash entry %d not found", id)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Deleted trash entry %d\n", id)
	return nil
}

func (cmd *TrashCmd) runClear(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Engine.Trash().ClearAll(ctx); err != nil {
		return fmt.Errorf("clear trash: %w", err)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, "Trash cleared")
	return nil
}
