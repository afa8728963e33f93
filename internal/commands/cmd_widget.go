package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"widget-planner/internal/model"
	"widget-planner/internal/service"
)

type WidgetCmd struct {
	flags *Flags

	// config flags
	name          string
	background    int64
	hideCompleted bool
	preset        int64

	// assign flags
	order  int
	hidden bool
}

// NewWidgetCmd creates a new widget command
func NewWidgetCmd(flags *Flags) *WidgetCmd {
	return &WidgetCmd{flags: flags}
}

// Register adds the widget command to the application
func (cmd *WidgetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "widget",
		Usage: "Configure and preview widgets",
		Description: `A widget shows an ordered list of category blocks. Negative widget ids
are presets: a widget configured with --preset renders the preset's categories.`,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print a widget's render model",
				UsageText: "widget-planner widget show <widget-id>",
				Action:    cmd.runShow,
			},
			{
				Name:      "config",
				Usage:     "Create or update a widget",
				UsageText: "widget-planner widget config [options] <widget-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "widget title", Destination: &cmd.name},
					&cli.Int64Flag{Name: "background", Usage: "background color as ARGB integer", Destination: &cmd.background},
					&cli.BoolFlag{Name: "hide-completed", Usage: "drop completed tasks", Destination: &cmd.hideCompleted},
					&cli.Int64Flag{Name: "preset", Usage: "render the categories of this preset id", Destination: &cmd.preset},
				},
				Action: cmd.runConfig,
			},
			{
				Name:      "assign",
				Usage:     "Show a category on a widget",
				UsageText: "widget-planner widget assign [--order N] [--hidden] <widget-id> <category-id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "order", Usage: "block position on the widget", Destination: &cmd.order},
					&cli.BoolFlag{Name: "hidden", Usage: "keep the assignment but hide the block", Destination: &cmd.hidden},
				},
				Action: cmd.runAssign,
			},
			{
				Name:      "unassign",
				Usage:     "Remove a category from a widget",
				UsageText: "widget-planner widget unassign <widget-id> <category-id>",
				Action:    cmd.runUnassign,
			},
			{
				Name:      "rm",
				Usage:     "Delete a widget and its assignments",
				UsageText: "widget-planner widget rm <widget-id>",
				Action:    cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *WidgetCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "widget-id")
	if err != nil {
		return err
	}

	view, err := cmd.flags.Engine.ProjectWidget(ctx, id)
	if err != nil {
		return fmt.Errorf("project widget: %w", err)
	}
	if view == nil {
		return fmt.Errorf("widget %d is not configured", id)
	}

	printWidget(c.Root().Writer, view, cmd.flags)
	return nil
}

func printWidget(out io.Writer, view *service.WidgetRenderModel, flags *Flags) {
	title := view.Config.Name
	if title == "" {
		title = fmt.Sprintf("Widget %d", view.Config.WidgetID)
	}
	_, _ = fmt.Fprintln(out, title)

	loc := flags.location()
	for _, block := range view.Categories {
		_, _ = fmt.Fprintf(out, "\n[%s]\n", block.Name)
		if len(block.Items) == 0 {
			_, _ = fmt.Fprintln(out, "  (empty)")
			continue
		}
		for _, item := range block.Items {
			mark := "-"
			if block.DisplayMode == model.DisplayCheckbox {
				mark = "[ ]"
				if item.Completed {
					mark = "[x]"
				}
			}
			when := ""
			if item.ScheduledTime != nil {
				when = formatMillis(item.ScheduledTime, loc)[11:] + " "
			}
			_, _ = fmt.Fprintf(out, "  %s %s%s (#%d)\n", mark, when, item.Content, item.ID)
		}
	}
}

func (cmd *WidgetCmd) runConfig(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "widget-id")
	if err != nil {
		return err
	}

	cfg := model.WidgetConfig{
		WidgetID:        id,
		Name:            cmd.name,
		BackgroundColor: cmd.background,
		HideCompleted:   cmd.hideCompleted,
	}
	if cmd.preset != 0 {
		if cmd.preset > 0 {
			return fmt.Errorf("preset ids are negative, got %d", cmd.preset)
		}
		preset := cmd.preset
		cfg.PresetID = &preset
	}

	if err := cmd.flags.Engine.Widgets().Configure(ctx, cfg, cmd.flags.Now()); err != nil {
		return fmt.Errorf("configure widget: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Configured widget %d\n", id)
	return nil
}

func (cmd *WidgetCmd) runAssign(ctx context.Context, c *cli.Command) error {
	widgetID, err := argID(c, 0, "widget-id")
	if err != nil {
		return err
	}
	categoryID, err := argID(c, 1, "category-id")
	if err != nil {
		return err
	}

	if err := cmd.flags.Engine.Widgets().Assign(ctx, widgetID, categoryID, cmd.order, !cmd.hidden); err != nil {
		return fmt.Errorf("assign category: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Assigned category %d to widget %d\n", categoryID, widgetID)
	return nil
}

func (cmd *WidgetCmd) runUnassign(ctx context.Context, c *cli.Command) error {
	widgetID, err := argID(c, 0, "widget-id")
	if err != nil {
		return err
	}
	categoryID, err := argID(c, 1, "category-id")
	if err != nil {
		return err
	}

	if err := cmd.flags.Engine.Widgets().Unassign(ctx, widgetID, categoryID); err != nil {
		return fmt.Errorf("unassign category: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Removed category %d from widget %d\n", categoryID, widgetID)
	return nil
}

func (cmd *WidgetCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "widget-id")
	if err != nil {
		return err
	}

	if err := cmd.flags.Engine.Widgets().Remove(ctx, id); err != nil {
		return fmt.Errorf("remove widget: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Removed widget %d\n", id)
	return nil
}
