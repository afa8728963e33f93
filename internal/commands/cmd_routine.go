package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"widget-planner/internal/model"
)

type RoutineCmd struct {
	flags *Flags

	// add flags
	name       string
	category   int64
	frequency  string
	at         string
	weekday    int
	dayOfMonth int
	month      int
	day        int
	incomplete string
	completed  string
}

// NewRoutineCmd creates a new routine command
func NewRoutineCmd(flags *Flags) *RoutineCmd {
	return &RoutineCmd{flags: flags}
}

// Register adds the routine command to the application
func (cmd *RoutineCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "routine",
		Usage: "Manage recurring routines",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a routine",
				UsageText: "widget-planner routine add --category 1 --freq daily --at 06:00 --incomplete move:2 --completed delete",
				Description: `Actions are delete, move:<category-id>, complete[:<category-id>]
and uncomplete[:<category-id>]. The incomplete action applies to tasks that
are not completed when the routine fires; the completed action to the rest.

Weekly routines use --weekday (1=Monday .. 7=Sunday), monthly --day-of-month,
yearly --month and --day.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "display name", Destination: &cmd.name},
					&cli.Int64Flag{Name: "category", Usage: "category the routine applies to", Required: true, Destination: &cmd.category},
					&cli.StringFlag{Name: "freq", Usage: "daily, weekly, monthly or yearly", Value: "daily", Destination: &cmd.frequency},
					&cli.StringFlag{Name: "at", Usage: "time of day (HH:MM)", Value: "00:00", Destination: &cmd.at},
					&cli.IntFlag{Name: "weekday", Usage: "ISO weekday for weekly routines", Destination: &cmd.weekday},
					&cli.IntFlag{Name: "day-of-month", Usage: "day for monthly routines", Destination: &cmd.dayOfMonth},
					&cli.IntFlag{Name: "month", Usage: "month for yearly routines", Destination: &cmd.month},
					&cli.IntFlag{Name: "day", Usage: "day for yearly routines", Destination: &cmd.day},
					&cli.StringFlag{Name: "incomplete", Usage: "action for incomplete tasks", Required: true, Destination: &cmd.incomplete},
					&cli.StringFlag{Name: "completed", Usage: "action for completed tasks", Required: true, Destination: &cmd.completed},
				},
				Action: cmd.runAdd,
			},
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List routines",
				Action:  cmd.runList,
			},
			{
				Name:      "rm",
				Usage:     "Delete a routine",
				UsageText: "widget-planner routine rm <id>",
				Action:    cmd.runDelete,
			},
			{
				Name:   "run",
				Usage:  "Apply every routine due now",
				Action: cmd.runDue,
			},
		},
	})

	return app
}

func (cmd *RoutineCmd) runAdd(ctx context.Context, c *cli.Command) error {
	hour, minute, err := model.ParseClock(cmd.at)
	if err != nil {
		return err
	}

	routine := model.Routine{
		CategoryID: cmd.category,
		Name:       cmd.name,
		Frequency:  model.Frequency(strings.ToUpper(cmd.frequency)),
		Hour:       hour,
		Minute:     minute,
	}
	switch routine.Frequency {
	case model.FrequencyWeekly:
		routine.ScheduleDayOfWeek = optional(cmd.weekday)
	case model.FrequencyMonthly:
		routine.ScheduleDayOfMonth = optional(cmd.dayOfMonth)
	case model.FrequencyYearly:
		routine.ScheduleMonth = optional(cmd.month)
		routine.ScheduleDay = optional(cmd.day)
	}

	if routine.IncompleteAction, routine.IncompleteTargetCategoryID, err = parseAction(cmd.incomplete); err != nil {
		return err
	}
	if routine.CompletedAction, routine.CompletedTargetCategoryID, err = parseAction(cmd.completed); err != nil {
		return err
	}

	created, err := cmd.flags.Engine.Categories().AddRoutine(ctx, routine, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	if created == nil {
		return fmt.Errorf("category %d not found", cmd.category)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Created routine %d %q\n", created.ID, created.DisplayName())
	return nil
}

func (cmd *RoutineCmd) runList(ctx context.Context, c *cli.Command) error {
	routines, err := cmd.flags.Engine.Categories().Routines(ctx)
	if err != nil {
		return fmt.Errorf("list routines: %w", err)
	}

	out := c.Root().Writer
	if len(routines) == 0 {
		_, _ = fmt.Fprintln(out, "No routines")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCATEGORY\tNAME\tINCOMPLETE\tCOMPLETED")
	for _, r := range routines {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", r.ID, r.CategoryID, r.DisplayName(),
			formatAction(r.IncompleteAction, r.IncompleteTargetCategoryID),
			formatAction(r.CompletedAction, r.CompletedTargetCategoryID))
	}
	return w.Flush()
}

func (cmd *RoutineCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "id")
	if err != nil {
		return err
	}

	ok, err := cmd.flags.Engine.Categories().DeleteRoutine(ctx, id)
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	if !ok {
		return fmt.Errorf("routine %d not found", id)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Deleted routine %d\n", id)
	return nil
}

func (cmd *RoutineCmd) runDue(ctx context.Context, c *cli.Command) error {
	report, err := cmd.flags.Engine.RunDueRoutines(ctx, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("run routines: %w", err)
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintf(out, "Fired %d routine(s), %d widget(s) to refresh\n", len(report.Fired), len(report.Widgets))
	for _, fault := range report.Faults {
		_, _ = fmt.Fprintf(out, "  fault: %v\n", fault)
	}
	return nil
}

// parseAction reads "kind" or "kind:target".
func parseAction(raw string) (model.ActionKind, *int64, error) {
	kindPart, targetPart, hasTarget := strings.Cut(strings.TrimSpace(raw), ":")
	kind := model.ActionKind(strings.ToUpper(kindPart))
	if !kind.IsValid() {
		return "", nil, fmt.Errorf("%w: %q", model.ErrInvalidActionKind, raw)
	}
	if !hasTarget {
		return kind, nil, nil
	}
	target, err := strconv.ParseInt(targetPart, 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid target category in %q", raw)
	}
	return kind, &target, nil
}

func formatAction(kind model.ActionKind, target *int64) string {
	s := strings.ToLower(string(kind))
	if target != nil {
		s += ":" + strconv.FormatInt(*target, 10)
	}
	return s
}

func optional(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
