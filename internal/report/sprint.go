package report

import (
	"time"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/stats"
	"sprint-pulse/internal/visuals"
)

// BurndownView is one burndown mode in hours.
type BurndownView struct {
	Mode       stats.BurndownMode  `json:"mode"`
	Rows       []stats.BurndownRow `json:"rows"`
	FloorHours float64             `json:"floor_hours"`
	AutoScale  bool                `json:"auto_scale"`

	raw stats.Burndown
}

func newBurndownView(b stats.Burndown) BurndownView {
	return BurndownView{
		Mode:       b.Mode,
		Rows:       b.Rows(),
		FloorHours: stats.Round1(b.Floor / 60),
		AutoScale:  b.AutoScale,
		raw:        b,
	}
}

// SprintReport is the current-sprint dashboard for one task list.
type SprintReport struct {
	TaskList      productive.TaskList `json:"task_list"`
	Window        *stats.SprintWindow `json:"window,omitempty"`
	BusinessDates []string            `json:"business_dates"`
	Today         string              `json:"today"`
	DaysLeft      int                 `json:"days_left"`

	// KPI is the selected mode; KPIs holds both.
	KPI  stats.KPI                        `json:"kpi"`
	KPIs map[stats.BurndownMode]stats.KPI `json:"kpis"`

	// Burndown is the selected mode; Burndowns holds both.
	Burndown  BurndownView                        `json:"burndown"`
	Burndowns map[stats.BurndownMode]BurndownView `json:"burndowns"`

	EffortSprint []stats.EffortRow `json:"effort_sprint"`
	EffortTotal  []stats.EffortRow `json:"effort_total"`

	Breakdown         []stats.StatusBucket      `json:"breakdown"`
	RemainingByStatus []stats.RemainingByStatus `json:"remaining_by_status"`
	Scope             stats.Scope               `json:"scope"`
	Risk              stats.RiskReport          `json:"risk"`

	Warnings []string          `json:"warnings,omitempty"`
	Charts   map[string]string `json:"charts,omitempty"`
}

// BuildSprintReport derives every current-sprint figure from a snapshot. It performs no I/O.
func BuildSprintReport(snap *Snapshot, opts Options) *SprintReport {
	opts = opts.normalized()
	res := stats.NewResolver(snap.Registry)
	w := opts.window(snap.TaskList.Name)

	var dates []time.Time
	if w != nil {
		dates = stats.BusinessDates(*w)
	}

	r := &SprintReport{
		TaskList:      snap.TaskList,
		Window:        w,
		BusinessDates: make([]string, 0, len(dates)),
		Today:         stats.DayKey(opts.Today),
		DaysLeft:      stats.DaysLeft(dates, opts.Today),
		Burndowns:     make(map[stats.BurndownMode]BurndownView, 2),
		KPIs:          make(map[stats.BurndownMode]stats.KPI, 2),
	}
	for _, d := range dates {
		r.BusinessDates = append(r.BusinessDates, stats.DayKey(d))
	}
	if w == nil {
		r.Warnings = append(r.Warnings, "sprint name has no recognizable date range; window-scoped figures are empty")
	}

	var done map[string]bool
	if opts.CountCompleteAsDone {
		done = stats.StatusSet(opts.CompleteStatuses)
	}
	for _, mode := range []stats.BurndownMode{stats.ModeSprint, stats.ModeTotal} {
		r.KPIs[mode] = stats.ComputeKPI(stats.KPIInput{
			Tasks:          snap.Tasks,
			Entries:        snap.Entries,
			Window:         w,
			Dates:          dates,
			Today:          opts.Today,
			ClosedCategory: opts.ClosedCategory,
			Mode:           mode,
			DoneStatuses:   done,
		}, res)
	}
	r.KPI = r.KPIs[opts.Mode]
	r.Scope = r.KPI.Scope

	estimate := stats.TotalEstimate(snap.Tasks)
	for _, mode := range []stats.BurndownMode{stats.ModeSprint, stats.ModeTotal} {
		in := stats.BurndownInput{
			Mode:             mode,
			EstimatedMinutes: estimate,
			Dates:            dates,
			WorkedByDate:     stats.WorkedByDate(snap.Entries, stats.WithinWindow(w)),
			Today:            opts.Today,
		}
		if mode == stats.ModeTotal && w != nil {
			in.WorkedByDate = stats.WorkedByDate(snap.Entries, stats.AllDays)
			in.WorkedBeforeStart = stats.TotalWorked(snap.Entries, stats.Before(w.Start))
		}
		r.Burndowns[mode] = newBurndownView(stats.ComputeBurndown(in))
	}
	r.Burndown = r.Burndowns[opts.Mode]

	totalFilter := stats.AllDays
	if w != nil {
		totalFilter = stats.OnOrBefore(w.End)
	}
	r.EffortSprint = stats.EffortRows(stats.EffortByPerson(snap.Tasks, stats.WorkedByTask(snap.Entries, stats.WithinWindow(w)), res))
	r.EffortTotal = stats.EffortRows(stats.EffortByPerson(snap.Tasks, stats.WorkedByTask(snap.Entries, totalFilter), res))

	r.Breakdown = stats.BreakdownByStatus(snap.Tasks, snap.Entries, w, res, opts.StatusOrder)
	r.RemainingByStatus = stats.ComputeRemainingByStatus(snap.Tasks, res, done)
	r.Risk = stats.ComputeRisk(snap.Tasks, res, dates, opts.Today, opts.CapacityPerDay)
	return r
}

// AttachCharts renders the Mermaid charts for the report.
func (r *SprintReport) AttachCharts() {
	r.Charts = make(map[string]string)
	add := func(name, chart string) {
		if chart != "" {
			r.Charts[name] = chart
		}
	}
	add("burndown", visuals.GenerateBurndownChart(r.Burndown.raw))
	add("breakdown", visuals.GenerateBreakdownChart(r.Breakdown))
	add("remaining_by_status", visuals.GenerateRemainingPie(r.RemainingByStatus))
	add("risk", visuals.GenerateRiskChart(r.Risk))
}
