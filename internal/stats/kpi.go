package stats

import (
	"time"

	"sprint-pulse/internal/productive"
)

// DefaultCompleteStatuses are statuses that count as done when CountCompleteAsDone is set,
// even if their workflow category is not closed.
var DefaultCompleteStatuses = []string{
	"Not applicable",
	"Complete",
	"Approved for Production",
	"In Client Review",
	"Ready for Client Review",
	"Spillover",
}

// Ratio is an actual/total pair with the completion percentage.
type Ratio struct {
	Actual  float64 `json:"actual"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
}

func newRatio(actual, total float64) Ratio {
	r := Ratio{Actual: actual, Total: total}
	if total > 0 {
		r.Percent = Round1(actual / total * 100)
	}
	return r
}

// KPI summarizes the current sprint.
type KPI struct {
	Days  Ratio `json:"days"`
	Tasks Ratio `json:"tasks"`
	Hours Ratio `json:"hours"`
	Scope Scope `json:"scope"`

	ScopeInitialHours float64 `json:"scope_initial_hours"`
	ScopeAddedHours   float64 `json:"scope_added_hours"`
}

type KPIInput struct {
	Tasks          []productive.Task
	Entries        []productive.TimeEntry
	Window         *SprintWindow
	Dates          []time.Time
	Today          time.Time
	ClosedCategory int
	// Mode total counts every logged entry toward hours; sprint only those inside the window.
	Mode BurndownMode
	// DoneStatuses, when non-nil, also counts tasks in these statuses as done.
	DoneStatuses map[string]bool
}

// ComputeKPI derives days, tasks, hours and scope figures. Hours compare logged time to the
// total estimate; without a window every entry counts.
func ComputeKPI(in KPIInput, res Resolver) KPI {
	done := 0
	for _, t := range in.Tasks {
		if res.IsClosed(t, in.ClosedCategory) || in.DoneStatuses[res.StatusName(t)] {
			done++
		}
	}

	scope := ScopeSplit(in.Tasks, in.Window)
	accept := WithinWindow(in.Window)
	if in.Mode == ModeTotal {
		accept = AllDays
	}
	worked := TotalWorked(in.Entries, accept)

	return KPI{
		Days:              newRatio(float64(ElapsedBusinessDays(in.Dates, in.Today)), float64(len(in.Dates))),
		Tasks:             newRatio(float64(done), float64(len(in.Tasks))),
		Hours:             newRatio(ToHours(worked), ToHours(TotalEstimate(in.Tasks))),
		Scope:             scope,
		ScopeInitialHours: scope.InitialHours(),
		ScopeAddedHours:   scope.AddedHours(),
	}
}

// StatusSet builds a lookup from names.
func StatusSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
