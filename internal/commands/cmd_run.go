package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"widget-planner/internal/bot"
	"widget-planner/internal/service"
)

type RunCmd struct {
	flags *Flags

	once bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run the planner engine on a schedule",
		UsageText: "widget-planner run [--once]",
		Description: `Runs one engine pass every engine.tick_interval: due routines, the
calendar merge, reminders and the trash retention sweep. With trash.sweep_at
set the sweep runs once a day at that time instead.

When a Telegram token is configured the bot is started as well. It renders
widgets into the configured chat and delivers reminders.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "once",
				Usage:       "run a single pass and exit",
				Destination: &cmd.once,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.once {
		report, err := cmd.flags.Engine.Tick(ctx, cmd.flags.Now())
		printTick(c, report)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		telegram *bot.Bot
		api      *tgbotapi.BotAPI
	)
	if cfg := cmd.flags.Config; cfg.TelegramEnabled() {
		var err error
		telegram, api, err = bot.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, cmd.flags.Engine, cmd.flags.Messages, cfg.Location(), log.Logger)
		if err != nil {
			return err
		}
		cmd.flags.Engine.Attach(telegram, telegram)
	}

	scheduler := service.NewSchedulerService(cmd.flags.location(), log.Logger)
	if _, err := scheduler.ScheduleTick(cmd.flags.Config.Engine.TickInterval, func(now time.Time) {
		cmd.tick(ctx, now)
	}); err != nil {
		return fmt.Errorf("schedule tick: %w", err)
	}
	if cfg := cmd.flags.Config; cfg.DailyTrashSweep() {
		if _, err := scheduler.ScheduleDaily(cfg.Trash.SweepAt, func() {
			cmd.sweep(ctx, cmd.flags.Now())
		}); err != nil {
			return fmt.Errorf("schedule trash sweep: %w", err)
		}
	}

	cmd.tick(ctx, cmd.flags.Now())
	scheduler.Start()
	defer scheduler.Stop()

	log.Info().
		Dur("interval", cmd.flags.Config.Engine.TickInterval).
		Bool("telegram", cmd.flags.Config.TelegramEnabled()).
		Msg("planner started")

	if cmd.flags.Config.TelegramEnabled() {
		if err := bot.Start(ctx, api, telegram); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bot stopped: %w", err)
		}
	} else {
		<-ctx.Done()
	}

	log.Info().Msg("shutdown complete")
	return nil
}

// tick starts a pass unless shutdown began. A started pass is not cancelled
// by shutdown; scheduler.Stop waits for it.
func (cmd *RunCmd) tick(ctx context.Context, now time.Time) {
	if ctx.Err() != nil {
		return
	}
	if _, err := cmd.flags.Engine.Tick(context.WithoutCancel(ctx), now); err != nil {
		log.Error().Err(err).Msg("tick failed")
	}
}

func (cmd *RunCmd) sweep(ctx context.Context, now time.Time) {
	if ctx.Err() != nil {
		return
	}
	if _, err := cmd.flags.Engine.SweepTrash(context.WithoutCancel(ctx), now); err != nil {
		log.Error().Err(err).Msg("trash sweep failed")
	}
}

func printTick(c *cli.Command, report service.TickReport) {
	out := c.Root().Writer
	_, _ = fmt.Fprintf(out, "Run %s\n", report.RunID)
	_, _ = fmt.Fprintf(out, "  routines fired:    %d\n", len(report.Routines.Fired))
	_, _ = fmt.Fprintf(out, "  calendar inserted: %d\n", report.Calendar.Inserted)
	_, _ = fmt.Fprintf(out, "  reminders:         %d\n", report.Reminders)
	_, _ = fmt.Fprintf(out, "  trash purged:      %d\n", report.Purged)
	_, _ = fmt.Fprintf(out, "  widgets refreshed: %d\n", len(report.Widgets))
}
