package productive

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	typePeople           = "people"
	typeWorkflowStatuses = "workflow_statuses"
)

// MapTask transforms a task resource into a domain Task.
func MapTask(r Resource, responsibleFieldID string) (Task, error) {
	var attrs taskAttributes
	if err := decodeAttributes(r, &attrs); err != nil {
		return Task{}, err
	}

	task := Task{
		ID:              r.ID,
		Title:           attrs.Title,
		InitialEstimate: minutes(attrs.InitialEstimate),
		RemainingTime:   minutes(attrs.RemainingTime),
	}
	if task.InitialEstimate < 0 {
		task.InitialEstimate = 0
	}

	if attrs.CreatedAt != "" {
		if t, err := ParseTime(attrs.CreatedAt); err == nil {
			task.CreatedAt = &t
		}
	}

	if responsibleFieldID != "" {
		task.ResponsibleID = customFieldID(attrs.CustomFields[responsibleFieldID])
	}
	task.AssigneeID, _ = r.RelationshipID("assignee")
	task.WorkflowStatusID, _ = r.RelationshipID("workflow_status")
	task.TaskListID, _ = r.RelationshipID("task_list")

	return task, nil
}

// MapTimeEntry transforms a time entry resource. The task id falls back to the task_id attribute.
func MapTimeEntry(r Resource) (TimeEntry, error) {
	var attrs timeEntryAttributes
	if err := decodeAttributes(r, &attrs); err != nil {
		return TimeEntry{}, err
	}

	day, err := ParseDate(attrs.Date)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("%w: time entry %s: %v", ErrMalformedResponse, r.ID, err)
	}

	entry := TimeEntry{
		ID:      r.ID,
		Date:    day,
		Minutes: minutes(attrs.Time),
	}
	if entry.Minutes < 0 {
		entry.Minutes = 0
	}

	entry.PersonID, _ = r.RelationshipID("person")
	if id, ok := r.RelationshipID("task"); ok {
		entry.TaskID = id
	} else {
		entry.TaskID = customFieldID(attrs.TaskID)
	}
	return entry, nil
}

func MapPerson(r Resource) (Person, error) {
	var attrs personAttributes
	if err := decodeAttributes(r, &attrs); err != nil {
		return Person{}, err
	}
	return Person{
		ID:        r.ID,
		FirstName: strings.TrimSpace(attrs.FirstName),
		LastName:  strings.TrimSpace(attrs.LastName),
		Email:     strings.TrimSpace(attrs.Email),
	}, nil
}

func MapWorkflowStatus(r Resource) (WorkflowStatus, error) {
	var attrs workflowStatusAttributes
	if err := decodeAttributes(r, &attrs); err != nil {
		return WorkflowStatus{}, err
	}
	s := WorkflowStatus{ID: r.ID, Name: attrs.Name}
	if attrs.CategoryID != nil {
		s.CategoryID = *attrs.CategoryID
	}
	return s, nil
}

func MapTaskList(r Resource) (TaskList, error) {
	var attrs namedAttributes
	if err := decodeAttributes(r, &attrs); err != nil {
		return TaskList{}, err
	}
	tl := TaskList{ID: r.ID, Name: attrs.Name}
	tl.BoardID, _ = r.RelationshipID("board")
	tl.FolderID, _ = r.RelationshipID("folder")
	return tl, nil
}

// SplitIncluded picks people and workflow statuses out of a sideloaded collection.
// Records of other types are ignored.
func SplitIncluded(included []Resource) ([]Person, []WorkflowStatus, error) {
	var people []Person
	var statuses []WorkflowStatus
	for _, r := range included {
		switch r.Type {
		case typePeople:
			p, err := MapPerson(r)
			if err != nil {
				return nil, nil, err
			}
			people = append(people, p)
		case typeWorkflowStatuses:
			s, err := MapWorkflowStatus(r)
			if err != nil {
				return nil, nil, err
			}
			statuses = append(statuses, s)
		}
	}
	return people, statuses, nil
}

// ParseTime handles the timestamp layouts Productive emits.
func ParseTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000-07:00",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// ParseDate parses a YYYY-MM-DD calendar day as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

func decodeAttributes(r Resource, v any) error {
	if len(r.Attributes) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Attributes, v); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, r.Type, r.ID, err)
	}
	return nil
}

func minutes(v *float64) int {
	if v == nil {
		return 0
	}
	return int(math.Round(*v))
}

// customFieldID normalizes a custom field value (string, number, or single-element list) to an id.
func customFieldID(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatInt(int64(val), 10)
	case json.Number:
		return val.String()
	case []any:
		if len(val) > 0 {
			return customFieldID(val[0])
		}
	}
	return ""
}
