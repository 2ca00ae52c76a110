package stats

import (
	"fmt"
	"sort"

	"sprint-pulse/internal/productive"
)

// StatusBucket is the worked and remaining minutes for one workflow status at sprint end.
// Tasks counts the planned tasks that still had remaining estimate in this status.
type StatusBucket struct {
	Status    string `json:"status"`
	Worked    int    `json:"worked_minutes"`
	Remaining int    `json:"remaining_minutes"`
	Tasks     int    `json:"tasks"`
}

// BreakdownByStatus buckets planned, estimated tasks by current status. Worked time is what was
// logged on the task inside the window; remaining is the estimate minus that, floored at zero.
// Returns nil without a window. Buckets follow order.
func BreakdownByStatus(tasks []productive.Task, entries []productive.TimeEntry, w *SprintWindow, res Resolver, order StatusOrder) []StatusBucket {
	if w == nil {
		return nil
	}
	worked := WorkedByTask(entries, WithinWindow(w))

	buckets := make(map[string]*StatusBucket)
	get := func(status string) *StatusBucket {
		b, ok := buckets[status]
		if !ok {
			b = &StatusBucket{Status: status}
			buckets[status] = b
		}
		return b
	}

	for _, t := range tasks {
		est := clampZero(t.InitialEstimate)
		if est == 0 || !IsPlanned(t, *w) {
			continue
		}
		inWindow := worked[t.ID]
		remainingAtEnd := max(est-inWindow, 0)
		status := res.StatusName(t)

		if inWindow > 0 {
			get(status).Worked += inWindow
		}
		if remainingAtEnd > 0 {
			b := get(status)
			b.Remaining += remainingAtEnd
			b.Tasks++
		}
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	out := make([]StatusBucket, 0, len(names))
	for _, name := range order.Sort(names) {
		out = append(out, *buckets[name])
	}
	return out
}

// BreakdownRow renders buckets as a wide row keyed "<status>::worked" and "<status>::remaining".
// A series is present only when it is nonzero.
func BreakdownRow(label string, buckets []StatusBucket) WideRow {
	row := NewWideRow("sprint", label)
	row.Counts = make(map[string]int)
	for _, b := range buckets {
		if b.Worked > 0 {
			row.Values[SeriesKey(b.Status, "worked")] = ToHours(b.Worked)
		}
		if b.Remaining > 0 {
			row.Values[SeriesKey(b.Status, "remaining")] = ToHours(b.Remaining)
			row.Counts[b.Status] = b.Tasks
		}
	}
	return row
}

// RemainingByStatus is the current-sprint table of task count and remaining time per status.
// Remaining minutes keep their sign.
type RemainingByStatus struct {
	Status           string `json:"status"`
	TaskCount        int    `json:"task_count"`
	RemainingMinutes int    `json:"remaining_minutes"`
	Remaining        string `json:"remaining"`
}

// ComputeRemainingByStatus groups every task by status. When hide is non-nil, statuses it
// contains are dropped. Rows are sorted by remaining minutes, largest first.
func ComputeRemainingByStatus(tasks []productive.Task, res Resolver, hide map[string]bool) []RemainingByStatus {
	agg := make(map[string]*RemainingByStatus)
	for _, t := range tasks {
		status := res.StatusName(t)
		if hide[status] {
			continue
		}
		r, ok := agg[status]
		if !ok {
			r = &RemainingByStatus{Status: status}
			agg[status] = r
		}
		r.TaskCount++
		r.RemainingMinutes += t.RemainingTime
	}

	out := make([]RemainingByStatus, 0, len(agg))
	for _, r := range agg {
		r.Remaining = FormatMinutes(r.RemainingMinutes)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RemainingMinutes != out[j].RemainingMinutes {
			return out[i].RemainingMinutes > out[j].RemainingMinutes
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// FormatMinutes renders minutes as H:MM, keeping a leading minus for negative values.
func FormatMinutes(m int) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d:%02d", sign, m/60, m%60)
}
