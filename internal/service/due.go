package service

import (
	"time"

	"widget-planner/internal/model"
)

// dueWindowMinutes is how long after its scheduled minute a routine stays
// eligible. It must exceed the host tick interval.
const dueWindowMinutes = 30

// IsDue reports whether r should fire at now. The window is
// [hh:mm, hh:mm+29] in now's location and does not wrap past midnight, so a
// routine scheduled at 23:45 is only eligible until 23:59.
//
// Missing schedule fields and unknown frequencies are never due.
func IsDue(r model.Routine, now time.Time) bool {
	nowMinute := now.Hour()*60 + now.Minute()
	scheduled := r.Hour*60 + r.Minute
	if nowMinute < scheduled || nowMinute > scheduled+dueWindowMinutes-1 {
		return false
	}

	switch r.Frequency {
	case model.FrequencyDaily:
		return true
	case model.FrequencyWeekly:
		return r.ScheduleDayOfWeek != nil && *r.ScheduleDayOfWeek == isoWeekday(now)
	case model.FrequencyMonthly:
		return r.ScheduleDayOfMonth != nil && *r.ScheduleDayOfMonth == now.Day()
	case model.FrequencyYearly:
		return r.ScheduleMonth != nil && r.ScheduleDay != nil &&
			*r.ScheduleMonth == int(now.Month()) && *r.ScheduleDay == now.Day()
	default:
		return false
	}
}

// isoWeekday maps time.Weekday to 1=Monday .. 7=Sunday.
func isoWeekday(t time.Time) int {
	if wd := t.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}
