package stats

import (
	"sort"

	"github.com/maruel/natural"

	"sprint-pulse/internal/productive"
)

// Effort is one person's estimate, logged work and remaining time, in minutes.
// Remaining may be negative when tasks were over-completed upstream.
type Effort struct {
	Person    string `json:"person"`
	Initial   int    `json:"initial_minutes"`
	Worked    int    `json:"worked_minutes"`
	Remaining int    `json:"remaining_minutes"`
}

// EffortByPerson attributes each task to its responsible dev and sums estimate, remaining and
// the task's worked minutes from workedByTask. Rows are sorted by estimate, largest first.
func EffortByPerson(tasks []productive.Task, workedByTask map[string]int, res Resolver) []Effort {
	byPerson := make(map[string]*Effort)
	for _, t := range tasks {
		person := res.ResponsibleOrAssignee(t)
		e, ok := byPerson[person]
		if !ok {
			e = &Effort{Person: person}
			byPerson[person] = e
		}
		e.Initial += clampZero(t.InitialEstimate)
		e.Remaining += t.RemainingTime
		e.Worked += workedByTask[t.ID]
	}

	out := make([]Effort, 0, len(byPerson))
	for _, e := range byPerson {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Initial != out[j].Initial {
			return out[i].Initial > out[j].Initial
		}
		return natural.Less(out[i].Person, out[j].Person)
	})
	return out
}

// EffortRow is an Effort in hours.
type EffortRow struct {
	Person    string  `json:"person"`
	Initial   float64 `json:"initial_hours"`
	Worked    float64 `json:"worked_hours"`
	Remaining float64 `json:"remaining_hours"`
}

func EffortRows(efforts []Effort) []EffortRow {
	rows := make([]EffortRow, 0, len(efforts))
	for _, e := range efforts {
		rows = append(rows, EffortRow{
			Person:    e.Person,
			Initial:   ToHours(e.Initial),
			Worked:    ToHours(e.Worked),
			Remaining: ToHours(e.Remaining),
		})
	}
	return rows
}
