// Package productivetest provides an in-memory productive.Client for tests.
package productivetest

import (
	"context"
	"sync"

	"sprint-pulse/internal/productive"
)

// Client serves a fixed dataset. Errors keyed by method name are returned instead of data.
// Calls are counted per method and safe for concurrent use.
type Client struct {
	Projects  []productive.Project
	Boards    []productive.Board
	Folders   []productive.Folder
	TaskLists []productive.TaskList

	// Tasks maps a task list id to its batch.
	Tasks map[string]*productive.TaskBatch
	// Entries maps a task id to its time entries.
	Entries map[string][]productive.TimeEntry
	// EntryPeople are returned as included people with every time entry page.
	EntryPeople []productive.Person
	// People answers GetPeople lookups.
	People []productive.Person

	Errors map[string]error

	mu    sync.Mutex
	calls map[string]int
	args  map[string][][]string
}

func (c *Client) record(method string, args ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
		c.args = make(map[string][][]string)
	}
	c.calls[method]++
	c.args[method] = append(c.args[method], args)
	return c.Errors[method]
}

// Calls returns how often method was invoked.
func (c *Client) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Args returns the argument lists method was invoked with.
func (c *Client) Args(method string) [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.args[method]...)
}

func (c *Client) ListProjects(ctx context.Context) ([]productive.Project, error) {
	if err := c.record("ListProjects"); err != nil {
		return nil, err
	}
	return c.Projects, ctx.Err()
}

func (c *Client) ListBoards(ctx context.Context, projectID string) ([]productive.Board, error) {
	if err := c.record("ListBoards", projectID); err != nil {
		return nil, err
	}
	var out []productive.Board
	for _, b := range c.Boards {
		if projectID == "" || b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, ctx.Err()
}

func (c *Client) ListFolders(ctx context.Context, projectID string) ([]productive.Folder, error) {
	if err := c.record("ListFolders", projectID); err != nil {
		return nil, err
	}
	var out []productive.Folder
	for _, f := range c.Folders {
		if projectID == "" || f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	return out, ctx.Err()
}

func (c *Client) ListTaskLists(ctx context.Context, filter productive.TaskListFilter) ([]productive.TaskList, error) {
	if err := c.record("ListTaskLists", filter.ProjectID, filter.BoardID); err != nil {
		return nil, err
	}
	var out []productive.TaskList
	for _, tl := range c.TaskLists {
		if filter.BoardID == "" || tl.BoardID == filter.BoardID {
			out = append(out, tl)
		}
	}
	return out, ctx.Err()
}

func (c *Client) GetTaskLists(ctx context.Context, ids []string) ([]productive.TaskList, error) {
	if err := c.record("GetTaskLists", ids...); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []productive.TaskList
	for _, tl := range c.TaskLists {
		if want[tl.ID] {
			out = append(out, tl)
		}
	}
	return out, ctx.Err()
}

func (c *Client) ListTasks(ctx context.Context, taskListID string) (*productive.TaskBatch, error) {
	if err := c.record("ListTasks", taskListID); err != nil {
		return nil, err
	}
	if b, ok := c.Tasks[taskListID]; ok {
		cp := *b
		return &cp, ctx.Err()
	}
	return &productive.TaskBatch{}, ctx.Err()
}

func (c *Client) ListTimeEntries(ctx context.Context, taskIDs []string) (*productive.TimeEntryBatch, error) {
	if err := c.record("ListTimeEntries", taskIDs...); err != nil {
		return nil, err
	}
	batch := &productive.TimeEntryBatch{}
	for _, id := range taskIDs {
		batch.Entries = append(batch.Entries, c.Entries[id]...)
	}
	if len(batch.Entries) > 0 {
		batch.People = c.EntryPeople
	}
	return batch, ctx.Err()
}

func (c *Client) GetPeople(ctx context.Context, ids []string) ([]productive.Person, error) {
	if err := c.record("GetPeople", ids...); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []productive.Person
	for _, p := range c.People {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, ctx.Err()
}

var _ productive.Client = (*Client)(nil)
