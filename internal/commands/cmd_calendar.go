package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type CalendarCmd struct {
	flags *Flags
}

// NewCalendarCmd creates a new calendar command
func NewCalendarCmd(flags *Flags) *CalendarCmd {
	return &CalendarCmd{flags: flags}
}

// Register adds the calendar command to the application
func (cmd *CalendarCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "calendar",
		Usage: "Import calendar events into synced categories",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Merge upcoming events into every synced category",
				Description: `Reads the configured events file and inserts one timed task per event
into each category with calendar sync enabled. Events already present, and
events whose task was deleted by a routine, are not imported again.`,
				Action: cmd.runSync,
			},
			{
				Name:   "status",
				Usage:  "Show when the calendar was last merged",
				Action: cmd.runStatus,
			},
		},
	})

	return app
}

func (cmd *CalendarCmd) runSync(ctx context.Context, c *cli.Command) error {
	report, err := cmd.flags.Engine.SyncCalendar(ctx, cmd.flags.Now())
	if err != nil {
		return fmt.Errorf("sync calendar: %w", err)
	}

	out := c.Root().Writer
	if report.Skipped {
		_, _ = fmt.Fprintln(out, "Calendar not available, nothing merged")
		return nil
	}

	_, _ = fmt.Fprintf(out, "Inserted %d task(s), %d widget(s) to refresh\n", report.Inserted, len(report.Widgets))
	for _, fault := range report.Faults {
		_, _ = fmt.Fprintf(out, "  fault: %v\n", fault)
	}
	return nil
}

func (cmd *CalendarCmd) runStatus(ctx context.Context, c *cli.Command) error {
	last, ok, err := cmd.flags.Engine.Calendar().LastSync(ctx)
	if err != nil {
		return fmt.Errorf("read last sync: %w", err)
	}

	out := c.Root().Writer
	if !ok {
		_, _ = fmt.Fprintln(out, "Calendar never synced")
		return nil
	}
	_, _ = fmt.Fprintf(out, "Last sync: %s\n", last.In(cmd.flags.location()).Format("2006-01-02 15:04:05"))
	return nil
}
