// Package config loads runtime settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"widget-planner/internal/model"
)

// Config keeps runtime settings for the planner.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Engine   EngineConfig   `yaml:"engine"`
	Calendar CalendarConfig `yaml:"calendar"`
	Trash    TrashConfig    `yaml:"trash"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type EngineConfig struct {
	// TickInterval is how often the host runs routines, calendar sync and
	// reminders.
	TickInterval time.Duration `yaml:"tick_interval"`
	Timezone     string        `yaml:"timezone"`
}

type CalendarConfig struct {
	DaysAhead  int    `yaml:"days_ahead"`
	EventsFile string `yaml:"events_file"`
}

type TrashConfig struct {
	// Retention purges trash entries older than this. Zero keeps entries
	// until they are restored or cleared.
	Retention time.Duration `yaml:"retention"`
	// SweepAt moves the retention purge from every tick to once a day at
	// this HH:MM time.
	SweepAt string `yaml:"sweep_at"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "widget_planner.db"},
		Log:      LogConfig{Level: "info"},
		Engine:   EngineConfig{TickInterval: 15 * time.Minute, Timezone: "Local"},
		Calendar: CalendarConfig{DaysAhead: 1},
	}
}

// Load reads configuration from path, if it exists, then applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv overlays environment variables. TELEGRAM_TOKEN and DATABASE_URL
// keep the names the bot has always used.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("DATABASE_URL"); ok {
		c.Database.Path = v
	}
	if v, ok := get("PLANNER_DB_PATH"); ok {
		c.Database.Path = v
	}
	if v, ok := get("PLANNER_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("PLANNER_LOG_FILE"); ok {
		c.Log.File = v
	}
	if v, ok := get("PLANNER_TIMEZONE"); ok {
		c.Engine.Timezone = v
	}
	if v, ok := get("PLANNER_CALENDAR_EVENTS_FILE"); ok {
		c.Calendar.EventsFile = v
	}
	if v, ok := get("PLANNER_TRASH_SWEEP_AT"); ok {
		c.Trash.SweepAt = v
	}
	if v, ok := get("TELEGRAM_TOKEN"); ok {
		c.Telegram.Token = v
	}

	if v, ok := get("PLANNER_TICK_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PLANNER_TICK_INTERVAL: %w", err)
		}
		c.Engine.TickInterval = d
	}
	if v, ok := get("PLANNER_TRASH_RETENTION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PLANNER_TRASH_RETENTION: %w", err)
		}
		c.Trash.Retention = d
	}
	if v, ok := get("PLANNER_CALENDAR_DAYS_AHEAD"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANNER_CALENDAR_DAYS_AHEAD: %w", err)
		}
		c.Calendar.DaysAhead = n
	}
	if v, ok := get("TELEGRAM_CHAT_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Database.Path == "" {
		c.Database.Path = defaults.Database.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Engine.TickInterval == 0 {
		c.Engine.TickInterval = defaults.Engine.TickInterval
	}
	if c.Engine.Timezone == "" {
		c.Engine.Timezone = defaults.Engine.Timezone
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Engine.TickInterval < time.Second {
		return fmt.Errorf("engine.tick_interval must be at least 1s, got %s", c.Engine.TickInterval)
	}
	if _, err := time.LoadLocation(c.Engine.Timezone); err != nil {
		return fmt.Errorf("engine.timezone: %w", err)
	}
	if c.Calendar.DaysAhead < 0 {
		return fmt.Errorf("calendar.days_ahead must not be negative, got %d", c.Calendar.DaysAhead)
	}
	if c.Trash.Retention < 0 {
		return fmt.Errorf("trash.retention must not be negative, got %s", c.Trash.Retention)
	}
	if c.Trash.SweepAt != "" {
		if _, _, err := model.ParseClock(c.Trash.SweepAt); err != nil {
			return fmt.Errorf("trash.sweep_at: %w", err)
		}
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required when a telegram token is set")
	}
	return nil
}

// Location returns the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DailyTrashSweep reports whether the retention purge runs on its own daily
// schedule instead of every tick.
func (c *Config) DailyTrashSweep() bool {
	return c.Trash.Retention > 0 && c.Trash.SweepAt != ""
}

// TelegramEnabled reports whether the Telegram adapter should run.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}
