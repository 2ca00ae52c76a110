package productive

import (
	"context"
	"time"
)

// DefaultBaseURL is the public Productive API root.
const DefaultBaseURL = "https://api.productive.io/api/v2"

// DefaultResponsibleFieldID is the task custom field holding the responsible person id.
const DefaultResponsibleFieldID = "45468"

// Task is the subset of a Productive task needed for sprint reporting.
type Task struct {
	ID               string
	Title            string
	InitialEstimate  int // minutes, 0 when not estimated
	RemainingTime    int // minutes, negative means over-completion
	CreatedAt        *time.Time
	ResponsibleID    string
	AssigneeID       string
	WorkflowStatusID string
	TaskListID       string
}

// DisplayTitle returns the title or a synthesized label.
func (t Task) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return "Task " + t.ID
}

// TimeEntry is one logged block of work.
type TimeEntry struct {
	ID       string
	Date     time.Time // calendar day, UTC midnight
	Minutes  int
	PersonID string
	TaskID   string
}

type Person struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

type WorkflowStatus struct {
	ID         string
	Name       string
	CategoryID int
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Board struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id,omitempty"`
}

type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id,omitempty"`
}

// TaskList is a sprint. Its date range lives in the name.
type TaskList struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BoardID  string `json:"board_id,omitempty"`
	FolderID string `json:"folder_id,omitempty"`
}

// TaskBatch is the task collection of one task list plus whatever came back sideloaded.
type TaskBatch struct {
	Tasks    []Task
	People   []Person
	Statuses []WorkflowStatus
}

// TimeEntryBatch holds time entries and the people included with them.
type TimeEntryBatch struct {
	Entries []TimeEntry
	People  []Person
}

// TaskListFilter narrows ListTaskLists.
type TaskListFilter struct {
	ProjectID string
	BoardID   string
}

// Client is the read-only interface to the Productive API.
type Client interface {
	ListProjects(ctx context.Context) ([]Project, error)
	ListBoards(ctx context.Context, projectID string) ([]Board, error)
	ListFolders(ctx context.Context, projectID string) ([]Folder, error)
	ListTaskLists(ctx context.Context, filter TaskListFilter) ([]TaskList, error)
	GetTaskLists(ctx context.Context, ids []string) ([]TaskList, error)
	ListTasks(ctx context.Context, taskListID string) (*TaskBatch, error)
	ListTimeEntries(ctx context.Context, taskIDs []string) (*TimeEntryBatch, error)
	GetPeople(ctx context.Context, ids []string) ([]Person, error)
}

// Config holds connection settings for the Productive API.
type Config struct {
	BaseURL        string
	Token          string
	OrganizationID string

	// Custom field on tasks that names the responsible dev.
	ResponsibleFieldID string

	// Performance Settings
	PageSize     int
	Timeout      time.Duration
	RequestDelay time.Duration
}

// NewClient creates a new Productive client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewHTTPClient(cfg)
}
