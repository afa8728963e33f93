// Package calendar supplies external calendar events to the merge engine.
package calendar

import "context"

// Event is one calendar occurrence inside the read window.
type Event struct {
	ID          string
	Title       string
	StartMillis int64
	EndMillis   int64
	AllDay      bool
}

// Static is an in-memory event source, mainly for tests and dry runs. Denied
// reports missing read access and makes ReadEvents return nothing.
type Static struct {
	Events  []Event
	Denied  bool
	Reads   int
	lastArg int
}

func (s *Static) HasPermission(context.Context) bool {
	return !s.Denied
}

func (s *Static) ReadEvents(_ context.Context, daysAhead int) ([]Event, error) {
	s.Reads++
	s.lastArg = daysAhead
	if s.Denied {
		return nil, nil
	}
	return append([]Event(nil), s.Events...), nil
}

// LastDaysAhead is the window requested by the most recent read.
func (s *Static) LastDaysAhead() int {
	return s.lastArg
}
