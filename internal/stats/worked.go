package stats

import (
	"time"

	"sprint-pulse/internal/productive"
)

// EntryFilter selects time entries by calendar day.
type EntryFilter func(day time.Time) bool

// AllDays accepts every entry.
func AllDays(time.Time) bool { return true }

// WithinWindow accepts entries dated inside w. A nil window accepts everything.
func WithinWindow(w *SprintWindow) EntryFilter {
	if w == nil {
		return AllDays
	}
	return w.Contains
}

// OnOrBefore accepts entries dated on or before day.
func OnOrBefore(day time.Time) EntryFilter {
	limit := SnapToDay(day)
	return func(d time.Time) bool { return !SnapToDay(d).After(limit) }
}

// Before accepts entries dated strictly before day.
func Before(day time.Time) EntryFilter {
	limit := SnapToDay(day)
	return func(d time.Time) bool { return SnapToDay(d).Before(limit) }
}

// WorkedByDate sums minutes per calendar day (DayKey) over the accepted entries.
func WorkedByDate(entries []productive.TimeEntry, accept EntryFilter) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		if !accept(e.Date) {
			continue
		}
		out[DayKey(e.Date)] += clampZero(e.Minutes)
	}
	return out
}

// WorkedByTask sums minutes per task id over the accepted entries.
func WorkedByTask(entries []productive.TimeEntry, accept EntryFilter) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		if e.TaskID == "" || !accept(e.Date) {
			continue
		}
		out[e.TaskID] += clampZero(e.Minutes)
	}
	return out
}

// WorkedByPerson sums minutes per worker (the person who logged the entry).
func WorkedByPerson(entries []productive.TimeEntry, res Resolver, accept EntryFilter) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		if !accept(e.Date) {
			continue
		}
		out[res.PersonName(e.PersonID)] += clampZero(e.Minutes)
	}
	return out
}

// WorkedByPersonByDate sums minutes per worker per calendar day.
func WorkedByPersonByDate(entries []productive.TimeEntry, res Resolver, accept EntryFilter) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, e := range entries {
		if !accept(e.Date) {
			continue
		}
		person := res.PersonName(e.PersonID)
		if out[person] == nil {
			out[person] = make(map[string]int)
		}
		out[person][DayKey(e.Date)] += clampZero(e.Minutes)
	}
	return out
}

// TotalWorked sums minutes over the accepted entries.
func TotalWorked(entries []productive.TimeEntry, accept EntryFilter) int {
	total := 0
	for _, e := range entries {
		if accept(e.Date) {
			total += clampZero(e.Minutes)
		}
	}
	return total
}

// TotalEstimate sums initial estimates, treating negatives as zero.
func TotalEstimate(tasks []productive.Task) int {
	total := 0
	for _, t := range tasks {
		total += clampZero(t.InitialEstimate)
	}
	return total
}
