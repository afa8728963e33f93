package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"widget-planner/internal/calendar"
	"widget-planner/internal/commands"
	"widget-planner/internal/config"
	"widget-planner/internal/logging"
	"widget-planner/internal/repository"
	"widget-planner/internal/service"
)

// Build information. Populated at build-time via -ldflags flag.
var (
	version = "dev"
	commit  = "HEAD"
)

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		database  *gorm.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "widget-planner",
		Usage:     "Run recurring task routines and render planner widgets",
		UsageText: "widget-planner [global options] command [command options]",
		Description: `Keeps categories of tasks tidy on a schedule: routines move, complete or
delete tasks, calendar events are merged in, and every affected widget is
redrawn. Deleted tasks go to a trash and can be restored.

Run 'widget-planner run' to start the scheduler (and the Telegram bot when
telegram.token is configured).`,
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PLANNER_LOG_LEVEL"),
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stdout)",
				Sources:     cli.EnvVars("PLANNER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PLANNER_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.LogLevel != "" {
				cfg.Log.Level = flags.LogLevel
			}
			if flags.LogFile != "" {
				cfg.Log.File = flags.LogFile
			}

			logger, closer, err := logging.New(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			database, err = repository.NewDB(cfg.Database.Path, logger)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			stores := service.NewStores(database)
			source := calendar.NewFileSource(cfg.Calendar.EventsFile)
			source.Now = func() time.Time { return time.Now().In(cfg.Location()) }

			flags.Config = cfg
			flags.Messages = stores.State
			flags.Engine = service.NewEngine(stores, source, service.Options{
				Location:          cfg.Location(),
				CalendarDaysAhead: cfg.Calendar.DaysAhead,
				TrashRetention:    cfg.Trash.Retention,
				DailyTrashSweep:   cfg.DailyTrashSweep(),
				ReminderLookback:  cfg.Engine.TickInterval,
			}, logging.Component("engine"))

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if database != nil {
				if sqlDB, err := database.DB(); err == nil {
					if err := sqlDB.Close(); err != nil {
						log.Error().Err(err).Msg("failed to close database")
						return err
					}
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewRoutineCmd(flags).Register(app)
	app = commands.NewCalendarCmd(flags).Register(app)
	app = commands.NewCategoryCmd(flags).Register(app)
	app = commands.NewTaskCmd(flags).Register(app)
	app = commands.NewWidgetCmd(flags).Register(app)
	app = commands.NewTrashCmd(flags).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
