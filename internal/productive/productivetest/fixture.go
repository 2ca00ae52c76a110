package productivetest

import (
	"time"

	"sprint-pulse/internal/productive"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func created(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	return &t
}

// Statuses used by the fixture.
var Statuses = []productive.WorkflowStatus{
	{ID: "s1", Name: "Not Started", CategoryID: 1},
	{ID: "s2", Name: "In Progress", CategoryID: 2},
	{ID: "s3", Name: "Complete", CategoryID: 3},
	{ID: "s4", Name: "In Client Review", CategoryID: 2},
}

// Fixture returns two sprints on board "b1":
//
//	101 "Sprint 29.07 - 09.08" (2024): Ana's task planned 2h with 1.5h worked in the window and
//	0.5h before it, Ben's task added mid-sprint (1h), and a closed task.
//	102 "Sprint 12.08 - 23.08" (2024): one task of Ana's, 3h estimate, 4h worked.
//
// Ben only comes back through GetPeople; tasks include Ana alone.
func Fixture() *Client {
	return &Client{
		Projects: []productive.Project{{ID: "p1", Name: "Webshop"}},
		Boards:   []productive.Board{{ID: "b1", Name: "Sprints", ProjectID: "p1"}},
		Folders:  []productive.Folder{{ID: "f1", Name: "2024", ProjectID: "p1"}},
		TaskLists: []productive.TaskList{
			{ID: "101", Name: "Sprint 29.07 - 09.08", BoardID: "b1"},
			{ID: "102", Name: "Sprint 12.08 - 23.08", BoardID: "b1"},
		},
		Tasks: map[string]*productive.TaskBatch{
			"101": {
				Tasks: []productive.Task{
					{ID: "1", Title: "Checkout", InitialEstimate: 120, RemainingTime: 30, CreatedAt: created(2024, 7, 22), WorkflowStatusID: "s2", ResponsibleID: "1", TaskListID: "101"},
					{ID: "2", Title: "Invoices", InitialEstimate: 60, RemainingTime: 60, CreatedAt: created(2024, 8, 2), WorkflowStatusID: "s1", ResponsibleID: "2", TaskListID: "101"},
					{ID: "3", Title: "Logo", CreatedAt: created(2024, 7, 20), WorkflowStatusID: "s3", AssigneeID: "1", TaskListID: "101"},
				},
				People:   []productive.Person{{ID: "1", FirstName: "Ana", LastName: "Lopez"}},
				Statuses: Statuses,
			},
			"102": {
				Tasks: []productive.Task{
					{ID: "4", Title: "Search", InitialEstimate: 180, RemainingTime: -60, CreatedAt: created(2024, 8, 5), WorkflowStatusID: "s4", ResponsibleID: "1", TaskListID: "102"},
				},
				People:   []productive.Person{{ID: "1", FirstName: "Ana"}},
				Statuses: Statuses,
			},
		},
		Entries: map[string][]productive.TimeEntry{
			"1": {
				{ID: "e1", Date: day(2024, 7, 26), Minutes: 30, PersonID: "1", TaskID: "1"},
				{ID: "e2", Date: day(2024, 7, 31), Minutes: 90, PersonID: "1", TaskID: "1"},
			},
			"4": {
				{ID: "e3", Date: day(2024, 8, 13), Minutes: 240, PersonID: "1", TaskID: "4"},
			},
		},
		EntryPeople: []productive.Person{{ID: "1", Email: "ana@example.com"}},
		People:      []productive.Person{{ID: "2", FirstName: "Ben"}},
	}
}
