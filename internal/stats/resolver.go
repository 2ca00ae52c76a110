package stats

import (
	"sprint-pulse/internal/productive"
)

// Unassigned labels work with no person id at all.
const Unassigned = "Unassigned"

// ClosedCategoryID is the workflow status category Productive uses for closed tasks.
const ClosedCategoryID = 3

// Resolver turns ids on tasks and time entries into display names.
type Resolver struct {
	registry *productive.NameRegistry
}

func NewResolver(registry *productive.NameRegistry) Resolver {
	return Resolver{registry: registry}
}

// PersonName resolves id to a name, a "Person #<id>" placeholder, or Unassigned.
func (r Resolver) PersonName(id string) string {
	if id == "" {
		return Unassigned
	}
	if name, ok := r.registry.PersonName(id); ok {
		return name
	}
	return "Person #" + id
}

// ResponsibleOrAssignee picks the person a task is attributed to. A resolved name wins over a
// placeholder, and the responsible field wins over the assignee at each step.
func (r Resolver) ResponsibleOrAssignee(t productive.Task) string {
	for _, id := range []string{t.ResponsibleID, t.AssigneeID} {
		if name, ok := r.registry.PersonName(id); ok {
			return name
		}
	}
	for _, id := range []string{t.ResponsibleID, t.AssigneeID} {
		if id != "" {
			return "Person #" + id
		}
	}
	return Unassigned
}

// StatusName resolves the task's workflow status, or productive.UnknownStatus.
func (r Resolver) StatusName(t productive.Task) string {
	return r.registry.StatusName(t.WorkflowStatusID)
}

// IsClosed reports whether the task's status sits in the closed workflow category.
func (r Resolver) IsClosed(t productive.Task, closedCategory int) bool {
	s, ok := r.registry.Status(t.WorkflowStatusID)
	return ok && s.CategoryID == closedCategory
}
