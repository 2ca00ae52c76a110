package stats

import (
	"sprint-pulse/internal/productive"
)

// SprintData is one task list's tasks and its own time entries. Entries are fetched per task
// list, so no entry belongs to two sprints.
type SprintData struct {
	ID      string
	Name    string
	Window  *SprintWindow
	Tasks   []productive.Task
	Entries []productive.TimeEntry
}

// VelocityPoint is the team-level planned, added and completed hours for one sprint.
type VelocityPoint struct {
	SprintID         string  `json:"sprint_id"`
	Sprint           string  `json:"sprint"`
	PlannedHours     float64 `json:"planned_hours"`
	ScopeChangeHours float64 `json:"scope_change_hours"`
	CompletedHours   float64 `json:"completed_hours"`
}

// TeamVelocity computes one point per sprint, in the order given.
func TeamVelocity(sprints []SprintData) []VelocityPoint {
	out := make([]VelocityPoint, 0, len(sprints))
	for _, s := range sprints {
		scope := ScopeSplit(s.Tasks, s.Window)
		out = append(out, VelocityPoint{
			SprintID:         s.ID,
			Sprint:           s.Name,
			PlannedHours:     scope.InitialHours(),
			ScopeChangeHours: scope.AddedHours(),
			CompletedHours:   ToHours(TotalWorked(s.Entries, WithinWindow(s.Window))),
		})
	}
	return out
}

// PersonVelocity is one person's hours per sprint and their mean across all selected sprints.
type PersonVelocity struct {
	Person  string             `json:"person"`
	Hours   map[string]float64 `json:"hours"`
	Average float64            `json:"average"`
}

// VelocityByPerson sums each worker's window-scoped minutes per sprint. The average divides by
// the number of selected sprints, so sprints where a person logged nothing count as zero.
func VelocityByPerson(sprints []SprintData, res Resolver) []PersonVelocity {
	minutes := make(map[string]map[string]int)
	for _, s := range sprints {
		for person, m := range WorkedByPerson(s.Entries, res, WithinWindow(s.Window)) {
			if minutes[person] == nil {
				minutes[person] = make(map[string]int)
			}
			minutes[person][s.Name] += m
		}
	}

	people := make([]string, 0, len(minutes))
	for p := range minutes {
		people = append(people, p)
	}
	SortNatural(people)

	out := make([]PersonVelocity, 0, len(people))
	for _, p := range people {
		pv := PersonVelocity{Person: p, Hours: make(map[string]float64)}
		total := 0.0
		for _, s := range sprints {
			h := ToHours(minutes[p][s.Name])
			pv.Hours[s.Name] = h
			total += h
		}
		if len(sprints) > 0 {
			pv.Average = Round1(total / float64(len(sprints)))
		}
		out = append(out, pv)
	}
	return out
}

// VelocityRows renders person velocity as wide rows with one column per sprint plus "average".
func VelocityRows(velocities []PersonVelocity) []WideRow {
	rows := make([]WideRow, 0, len(velocities))
	for _, v := range velocities {
		row := NewWideRow("person", v.Person)
		for sprint, h := range v.Hours {
			row.Values[sprint] = h
		}
		row.Values["average"] = v.Average
		rows = append(rows, row)
	}
	return rows
}

// AccuracySamples pairs each person's estimate (tasks attributed to them as responsible, with
// a nonzero estimate) with the minutes they logged inside the sprint window.
func AccuracySamples(sprints []SprintData, res Resolver) map[string][]AccuracySample {
	out := make(map[string][]AccuracySample)
	for _, s := range sprints {
		estimate := make(map[string]int)
		for _, t := range s.Tasks {
			if est := clampZero(t.InitialEstimate); est > 0 {
				estimate[res.ResponsibleOrAssignee(t)] += est
			}
		}
		worked := WorkedByPerson(s.Entries, res, WithinWindow(s.Window))

		people := make(map[string]bool)
		for p := range estimate {
			people[p] = true
		}
		for p := range worked {
			people[p] = true
		}
		for p := range people {
			out[p] = append(out[p], AccuracySample{Sprint: s.Name, Estimate: estimate[p], Worked: worked[p]})
		}
	}
	return out
}

// AccuracyRows renders samples as wide person rows keyed "<sprint>::Worked|Remaining|Overrun".
// Every person gets columns for every sprint in sprints, zero where they have no sample.
func AccuracyRows(samples map[string][]AccuracySample, sprints []string) []WideRow {
	rows := make([]WideRow, 0, len(samples))
	for person, ss := range samples {
		row := NewWideRow("person", person)
		for _, sprint := range sprints {
			row.Values[SeriesKey(sprint, "Worked")] = 0
			row.Values[SeriesKey(sprint, "Remaining")] = 0
			row.Values[SeriesKey(sprint, "Overrun")] = 0
		}
		for _, s := range ss {
			split := SplitAccuracy(s.Worked, s.Estimate)
			row.Values[SeriesKey(s.Sprint, "Worked")] = ToHours(split.Worked)
			row.Values[SeriesKey(s.Sprint, "Remaining")] = ToHours(split.Remaining)
			row.Values[SeriesKey(s.Sprint, "Overrun")] = ToHours(split.Overrun)
		}
		rows = append(rows, row)
	}
	SortRowsByLabel(rows)
	return rows
}
