package stats

import (
	"regexp"
	"strconv"
	"time"
)

// DefaultWrapDays is how far an end date that parses before its start is pushed forward.
const DefaultWrapDays = 15

const dayLayout = "2006-01-02"

// windowPattern matches "D.M - D.M" with '.', '/' or '-' inside a date and a hyphen or en dash between them.
var windowPattern = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})\s*[–-]\s*(\d{1,2})[./-](\d{1,2})`)

// SprintWindow is the inclusive calendar range of a sprint, inferred from its name.
type SprintWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseWindow extracts a window from a task-list name. Both dates are placed in referenceYear.
// An end date before the start is moved forward by wrapDays; if that still lands before the
// start the range crosses a year boundary and the end moves into the following year.
func ParseWindow(name string, referenceYear int, wrapDays int) (SprintWindow, bool) {
	m := windowPattern.FindStringSubmatch(name)
	if m == nil {
		return SprintWindow{}, false
	}

	start, ok := strictDate(referenceYear, m[1], m[2])
	if !ok {
		return SprintWindow{}, false
	}
	end, ok := strictDate(referenceYear, m[3], m[4])
	if !ok {
		return SprintWindow{}, false
	}

	if end.Before(start) {
		if wrapDays <= 0 {
			wrapDays = DefaultWrapDays
		}
		shifted := end.AddDate(0, 0, wrapDays)
		if shifted.After(start) {
			end = shifted
		} else if next, ok := strictDate(referenceYear+1, m[3], m[4]); ok {
			end = next
		} else {
			return SprintWindow{}, false
		}
	}

	return SprintWindow{Start: start, End: end}, true
}

func strictDate(year int, dayStr, monthStr string) (time.Time, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31.02 into March; reject instead.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// SnapToDay returns the calendar day of t (in t's own location) as UTC midnight.
func SnapToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a calendar day as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// Contains reports whether day falls within [Start, End].
func (w SprintWindow) Contains(day time.Time) bool {
	d := SnapToDay(day)
	return !d.Before(w.Start) && !d.After(w.End)
}

// BusinessDates lists the weekdays of the closed window in order.
func BusinessDates(w SprintWindow) []time.Time {
	var out []time.Time
	for d := SnapToDay(w.Start); !d.After(SnapToDay(w.End)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

// DaysLeft counts business dates on or after today.
func DaysLeft(dates []time.Time, today time.Time) int {
	t := SnapToDay(today)
	n := 0
	for _, d := range dates {
		if !d.Before(t) {
			n++
		}
	}
	return n
}

// ElapsedBusinessDays counts business dates strictly before today.
func ElapsedBusinessDays(dates []time.Time, today time.Time) int {
	return len(dates) - DaysLeft(dates, today)
}
