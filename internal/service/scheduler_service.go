package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"widget-planner/internal/model"
)

// SchedulerService wraps cron-based jobs. It is the host trigger for the
// engine; the engine itself never schedules anything.
type SchedulerService struct {
	cron *cron.Cron
	loc  *time.Location
}

// NewSchedulerService creates a scheduler in loc. A job still running when its
// next activation comes due is skipped, and panics are recovered and logged.
func NewSchedulerService(loc *time.Location, log zerolog.Logger) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	cronLog := log.With().Str("component", "scheduler").Logger()
	logger := cron.PrintfLogger(&cronLog)

	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		loc: loc,
	}
}

// ScheduleDaily registers a daily job at an HH:MM time in the scheduler's
// location.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	spec, err := buildIntervalSpec(interval)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleTick is ScheduleInterval for jobs that want the activation time,
// expressed in the scheduler's location.
func (s *SchedulerService) ScheduleTick(interval time.Duration, job func(now time.Time)) (cron.EntryID, error) {
	return s.ScheduleInterval(interval, func() {
		job(time.Now().In(s.loc))
	})
}

// Next returns the next activation time of an entry.
func (s *SchedulerService) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildIntervalSpec(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds), nil
}

func buildDailySpec(timeStr string) (string, error) {
	hour, minute, err := model.ParseClock(timeStr)
	if err != nil {
		return "", err
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
