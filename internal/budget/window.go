// Package budget implements the budget calculation and evaluation engine.
//
// Everything in this package is a pure, synchronous function of its inputs:
// period windows are resolved against an explicit "now", spend is aggregated
// from in-memory transactions, and the resulting statuses, health scores,
// validation results and warnings are derived without any I/O.
package budget

import (
	"fmt"
	"time"

	"github.com/Veraticus/cashbook/internal/model"
)

// Window is a concrete evaluation date range. Both ends are inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window, inclusive on both ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ResolveWindow maps a period to the window that runs from the start of the
// current period up to now. The window always ends at now, not at the end of
// the week, month or year.
//
//   - weekly:  the most recent Sunday at 00:00 in now's location
//   - monthly: the first day of now's month at 00:00
//   - yearly:  January 1 of now's year at 00:00
//
// An unknown period is a programmer error and panics. Validate user input
// with model.Period.Validate before it reaches this function.
func ResolveWindow(period model.Period, now time.Time) Window {
	year, month, day := now.Date()
	loc := now.Location()

	var start time.Time
	switch period {
	case model.PeriodWeekly:
		// Calendar arithmetic rather than Add(-24h*n) keeps midnight correct across DST shifts.
		start = time.Date(year, month, day-int(now.Weekday()), 0, 0, 0, 0, loc)
	case model.PeriodMonthly:
		start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	case model.PeriodYearly:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	default:
		panic(fmt.Sprintf("budget: unknown period %q", string(period)))
	}

	return Window{Start: start, End: now}
}

// PeriodDisplayName returns the human label for the current window of a period.
func PeriodDisplayName(period model.Period) string {
	switch period {
	case model.PeriodWeekly:
		return "This Week"
	case model.PeriodMonthly:
		return "This Month"
	case model.PeriodYearly:
		return "This Year"
	default:
		return string(period)
	}
}
