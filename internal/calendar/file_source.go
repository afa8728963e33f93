package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileSource reads events from a YAML file:
//
//	events:
//	  - id: standup
//	    title: Standup
//	    start: 2026-03-02T09:30:00+01:00
//	    end: 2026-03-02T09:45:00+01:00
//	  - title: Holiday
//	    start: 2026-03-03T00:00:00Z
//	    all_day: true
//
// A missing file means no calendar access.
type FileSource struct {
	Path string
	// Now is used to compute the read window; defaults to time.Now.
	Now func() time.Time
}

type fileEvent struct {
	ID     string    `yaml:"id"`
	Title  string    `yaml:"title"`
	Start  time.Time `yaml:"start"`
	End    time.Time `yaml:"end"`
	AllDay bool      `yaml:"all_day"`
}

type eventsFile struct {
	Events []fileEvent `yaml:"events"`
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, Now: time.Now}
}

func (s *FileSource) HasPermission(context.Context) bool {
	if s.Path == "" {
		return false
	}
	_, err := os.Stat(s.Path)
	return err == nil
}

// ReadEvents returns events starting between the start of today and the end
// of the day daysAhead days from now, in file order.
func (s *FileSource) ReadEvents(ctx context.Context, daysAhead int) ([]Event, error) {
	if !s.HasPermission(ctx) {
		return nil, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read events file: %w", err)
	}

	var parsed eventsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse events file: %w", err)
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if daysAhead < 0 {
		daysAhead = 0
	}
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	until := from.AddDate(0, 0, daysAhead+1)

	events := make([]Event, 0, len(parsed.Events))
	for _, fe := range parsed.Events {
		if fe.Start.Before(from) || !fe.Start.Before(until) {
			continue
		}
		end := fe.End
		if end.IsZero() {
			end = fe.Start
		}
		events = append(events, Event{
			ID:          fe.ID,
			Title:       fe.Title,
			StartMillis: fe.Start.UnixMilli(),
			EndMillis:   end.UnixMilli(),
			AllDay:      fe.AllDay,
		})
	}
	return events, nil
}
