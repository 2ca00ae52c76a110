package productive

import "sort"

// UnknownStatus is the label for a missing or unresolved workflow status.
const UnknownStatus = "Unknown"

// NameRegistry merges identity data from included payloads and supplemental fetches.
type NameRegistry struct {
	People   map[string]Person
	Statuses map[string]WorkflowStatus
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		People:   make(map[string]Person),
		Statuses: make(map[string]WorkflowStatus),
	}
}

// DisplayName is first name, then last name, then email. Empty when none is known.
func (p Person) DisplayName() string {
	switch {
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	default:
		return p.Email
	}
}

func (p Person) completeness() int {
	switch {
	case p.FirstName != "":
		return 3
	case p.LastName != "":
		return 2
	case p.Email != "":
		return 1
	}
	return 0
}

// AddPeople records people, keeping an existing entry when the new one is less complete.
func (nr *NameRegistry) AddPeople(people []Person) {
	if nr.People == nil {
		nr.People = make(map[string]Person)
	}
	for _, p := range people {
		if p.ID == "" {
			continue
		}
		if cur, ok := nr.People[p.ID]; ok && cur.completeness() >= p.completeness() {
			continue
		}
		nr.People[p.ID] = p
	}
}

func (nr *NameRegistry) AddStatuses(statuses []WorkflowStatus) {
	if nr.Statuses == nil {
		nr.Statuses = make(map[string]WorkflowStatus)
	}
	for _, s := range statuses {
		if s.ID == "" {
			continue
		}
		if cur, ok := nr.Statuses[s.ID]; ok && cur.Name != "" && s.Name == "" {
			continue
		}
		nr.Statuses[s.ID] = s
	}
}

// PersonName returns the resolved display name for id.
func (nr *NameRegistry) PersonName(id string) (string, bool) {
	if nr == nil || id == "" {
		return "", false
	}
	p, ok := nr.People[id]
	if !ok {
		return "", false
	}
	name := p.DisplayName()
	return name, name != ""
}

// Status returns the workflow status for id.
func (nr *NameRegistry) Status(id string) (WorkflowStatus, bool) {
	if nr == nil || id == "" {
		return WorkflowStatus{}, false
	}
	s, ok := nr.Statuses[id]
	return s, ok
}

// StatusName returns the status name or UnknownStatus.
func (nr *NameRegistry) StatusName(id string) string {
	if s, ok := nr.Status(id); ok && s.Name != "" {
		return s.Name
	}
	return UnknownStatus
}

// MissingPeople returns the distinct ids, in sorted order, that have no resolved name yet.
func (nr *NameRegistry) MissingPeople(ids []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := nr.PersonName(id); !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ReferencedPeople lists the responsible and assignee ids of tasks.
func ReferencedPeople(tasks []Task) []string {
	var ids []string
	for _, t := range tasks {
		if t.ResponsibleID != "" {
			ids = append(ids, t.ResponsibleID)
		}
		if t.AssigneeID != "" {
			ids = append(ids, t.AssigneeID)
		}
	}
	return ids
}

// Merge copies other's people and statuses into nr under the same no-downgrade rule.
func (nr *NameRegistry) Merge(other *NameRegistry) {
	if other == nil {
		return
	}
	people := make([]Person, 0, len(other.People))
	for _, p := range other.People {
		people = append(people, p)
	}
	statuses := make([]WorkflowStatus, 0, len(other.Statuses))
	for _, s := range other.Statuses {
		statuses = append(statuses, s)
	}
	nr.AddPeople(people)
	nr.AddStatuses(statuses)
}
