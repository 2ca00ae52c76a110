package report

import (
	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/stats"
	"sprint-pulse/internal/visuals"
)

// SprintSummary identifies one sprint in a multi-sprint report.
type SprintSummary struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Window *stats.SprintWindow `json:"window,omitempty"`
}

// HistoryReport compares several sprints. Wide rows are keyed by sprint name.
type HistoryReport struct {
	Sprints          []SprintSummary        `json:"sprints"`
	TeamVelocity     []stats.VelocityPoint  `json:"team_velocity"`
	PersonVelocity   []stats.WideRow        `json:"person_velocity"`
	Accuracy         []stats.WideRow        `json:"accuracy"`
	AccuracyAverages []stats.PersonAccuracy `json:"accuracy_averages"`
	Breakdown        []stats.WideRow        `json:"breakdown"`
	StatusColumns    []string               `json:"status_columns"`

	Warnings []string          `json:"warnings,omitempty"`
	Charts   map[string]string `json:"charts,omitempty"`

	velocities []stats.PersonVelocity
	totals     []stats.StatusBucket
}

// BuildHistoryReport aggregates snapshots already in display order. Names resolve against the
// union of every sprint's registry.
func BuildHistoryReport(snaps []*Snapshot, opts Options) *HistoryReport {
	opts = opts.normalized()

	reg := productive.NewNameRegistry()
	for _, s := range snaps {
		reg.Merge(s.Registry)
	}
	res := stats.NewResolver(reg)

	r := &HistoryReport{Sprints: make([]SprintSummary, 0, len(snaps))}
	data := make([]stats.SprintData, 0, len(snaps))
	totals := make(map[string]*stats.StatusBucket)
	for _, s := range snaps {
		w := opts.window(s.TaskList.Name)
		if w == nil {
			r.Warnings = append(r.Warnings, s.TaskList.Name+": no recognizable date range")
		}
		r.Sprints = append(r.Sprints, SprintSummary{ID: s.TaskList.ID, Name: s.TaskList.Name, Window: w})
		data = append(data, s.Data(w))

		buckets := stats.BreakdownByStatus(s.Tasks, s.Entries, w, res, opts.StatusOrder)
		if buckets == nil {
			r.Breakdown = append(r.Breakdown, stats.BreakdownRow(s.TaskList.Name, nil))
			continue
		}
		r.Breakdown = append(r.Breakdown, stats.BreakdownRow(s.TaskList.Name, buckets))
		for _, b := range buckets {
			t, ok := totals[b.Status]
			if !ok {
				t = &stats.StatusBucket{Status: b.Status}
				totals[b.Status] = t
			}
			t.Worked += b.Worked
			t.Remaining += b.Remaining
			t.Tasks += b.Tasks
		}
	}

	r.TeamVelocity = stats.TeamVelocity(data)
	r.velocities = stats.VelocityByPerson(data, res)
	r.PersonVelocity = stats.VelocityRows(r.velocities)

	names := make([]string, len(data))
	for i, d := range data {
		names[i] = d.Name
	}
	samples := stats.AccuracySamples(data, res)
	r.Accuracy = stats.AccuracyRows(samples, names)
	r.AccuracyAverages = stats.AverageAccuracy(samples)

	statuses := make([]string, 0, len(totals))
	for status := range totals {
		statuses = append(statuses, status)
	}
	r.StatusColumns = opts.StatusOrder.Sort(statuses)
	for _, status := range r.StatusColumns {
		r.totals = append(r.totals, *totals[status])
	}
	if r.Breakdown == nil {
		r.Breakdown = []stats.WideRow{}
	}

	return r
}

// AttachCharts renders the Mermaid charts for the report.
func (r *HistoryReport) AttachCharts() {
	sprints := make([]string, len(r.Sprints))
	for i, s := range r.Sprints {
		sprints[i] = s.Name
	}

	r.Charts = make(map[string]string)
	add := func(name, chart string) {
		if chart != "" {
			r.Charts[name] = chart
		}
	}
	add("team_velocity", visuals.GenerateTeamVelocityChart(r.TeamVelocity))
	add("person_velocity", visuals.GeneratePersonVelocityChart(r.velocities, sprints))
	add("breakdown", visuals.GenerateBreakdownChart(r.totals))
	add("accuracy", visuals.GenerateAccuracyChart(r.AccuracyAverages))
}
