package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidFrequency  = errors.New("model: invalid routine frequency")
	ErrInvalidActionKind = errors.New("model: invalid routine action")
	ErrInvalidTimeOfDay  = errors.New("model: invalid routine time of day")
)

type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// ActionKind is the persisted discriminator of a RoutineAction.
type ActionKind string

const (
	ActionDelete     ActionKind = "DELETE"
	ActionMove       ActionKind = "MOVE"
	ActionComplete   ActionKind = "COMPLETE"
	ActionUncomplete ActionKind = "UNCOMPLETE"
)

func (k ActionKind) IsValid() bool {
	switch k {
	case ActionDelete, ActionMove, ActionComplete, ActionUncomplete:
		return true
	default:
		return false
	}
}

// Routine is a user-defined recurring rule applied to one category's tasks.
//
// ScheduleDayOfWeek uses ISO numbering (1=Monday .. 7=Sunday). Only the
// schedule fields of the selected frequency are consulted.
type Routine struct {
	ID                         int64 `gorm:"primaryKey"`
	CategoryID                 int64 `gorm:"index;not null"`
	Name                       string
	Frequency                  Frequency `gorm:"not null"`
	Hour                       int
	Minute                     int
	ScheduleDayOfWeek          *int
	ScheduleDayOfMonth         *int
	ScheduleMonth              *int
	ScheduleDay                *int
	VisibilityMode             string
	IncompleteAction           ActionKind `gorm:"not null"`
	IncompleteTargetCategoryID *int64
	CompletedAction            ActionKind `gorm:"not null"`
	CompletedTargetCategoryID  *int64
	CreatedAt                  int64 `gorm:"autoCreateTime:false"`
	UpdatedAt                  int64 `gorm:"autoUpdateTime:false"`
}

func (r Routine) Validate() error {
	if !r.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, r.Hour, r.Minute)
	}
	if !r.IncompleteAction.IsValid() {
		return fmt.Errorf("%w: incomplete %q", ErrInvalidActionKind, r.IncompleteAction)
	}
	if !r.CompletedAction.IsValid() {
		return fmt.Errorf("%w: completed %q", ErrInvalidActionKind, r.CompletedAction)
	}
	if r.IncompleteAction == ActionMove && r.IncompleteTargetCategoryID == nil {
		return errors.New("model: incomplete move requires a target category")
	}
	if r.CompletedAction == ActionMove && r.CompletedTargetCategoryID == nil {
		return errors.New("model: completed move requires a target category")
	}
	return nil
}

// ParseClock parses an HH:MM time of day.
func ParseClock(raw string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q, expected HH:MM", ErrInvalidTimeOfDay, raw)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTimeOfDay, raw)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTimeOfDay, raw)
	}
	return hour, minute, nil
}

// DisplayName falls back to the schedule when the routine is unnamed.
func (r Routine) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return fmt.Sprintf("%s %02d:%02d", strings.ToLower(string(r.Frequency)), r.Hour, r.Minute)
}

// ActionForIncomplete returns the action applied to tasks that are not completed.
func (r Routine) ActionForIncomplete() RoutineAction {
	return NewRoutineAction(r.IncompleteAction, r.IncompleteTargetCategoryID)
}

// ActionForCompleted returns the action applied to completed tasks.
func (r Routine) ActionForCompleted() RoutineAction {
	return NewRoutineAction(r.CompletedAction, r.CompletedTargetCategoryID)
}
