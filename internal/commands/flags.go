package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"widget-planner/internal/bot"
	"widget-planner/internal/config"
	"widget-planner/internal/service"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Engine is the planner engine every command drives
	Engine *service.Engine

	// Messages persists the Telegram message id of each rendered widget
	Messages bot.MessageStore

	// Clock overrides time.Now in tests
	Clock func() time.Time
}

// Now returns the current time in the configured timezone.
func (f *Flags) Now() time.Time {
	now := time.Now()
	if f.Clock != nil {
		now = f.Clock()
	}
	if f.Config != nil {
		now = now.In(f.Config.Location())
	}
	return now
}

func (f *Flags) location() *time.Location {
	if f.Config != nil {
		return f.Config.Location()
	}
	return time.Local
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "widget-planner", "config.yaml")
}

func argID(c *cli.Command, index int, name string) (int64, error) {
	raw := strings.TrimSpace(c.Args().Get(index))
	if raw == "" {
		return 0, fmt.Errorf("missing <%s> argument", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func argInt(c *cli.Command, index int, name string) (int, error) {
	id, err := argID(c, index, name)
	return int(id), err
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// parseTime reads a user supplied timestamp in loc.
func parseTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected YYYY-MM-DD HH:MM", raw)
}

func formatMillis(ms *int64, loc *time.Location) string {
	if ms == nil {
		return "-"
	}
	return time.UnixMilli(*ms).In(loc).Format("2006-01-02 15:04")
}
