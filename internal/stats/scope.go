package stats

import "sprint-pulse/internal/productive"

// IsPlanned reports whether a task existed by the first day of the window.
// Tasks without a creation time are treated as added.
func IsPlanned(t productive.Task, w SprintWindow) bool {
	if t.CreatedAt == nil {
		return false
	}
	return !SnapToDay(*t.CreatedAt).After(w.Start)
}

// Scope splits estimated work into what was planned at sprint start and what was added later.
type Scope struct {
	InitialMinutes int `json:"initial_minutes"`
	AddedMinutes   int `json:"added_minutes"`
	InitialTasks   int `json:"initial_tasks"`
	AddedTasks     int `json:"added_tasks"`
}

// ScopeSplit counts only tasks with an estimate. Without a window everything is planned.
func ScopeSplit(tasks []productive.Task, w *SprintWindow) Scope {
	var s Scope
	for _, t := range tasks {
		est := clampZero(t.InitialEstimate)
		if est == 0 {
			continue
		}
		if w == nil || IsPlanned(t, *w) {
			s.InitialMinutes += est
			s.InitialTasks++
		} else {
			s.AddedMinutes += est
			s.AddedTasks++
		}
	}
	return s
}

func (s Scope) InitialHours() float64 { return ToHours(s.InitialMinutes) }
func (s Scope) AddedHours() float64   { return ToHours(s.AddedMinutes) }
