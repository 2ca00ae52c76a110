package productive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Config{
		BaseURL:            srv.URL,
		Token:              "secret",
		OrganizationID:     "42",
		ResponsibleFieldID: DefaultResponsibleFieldID,
		Timeout:            5 * time.Second,
	})
}

func TestHTTPClient_AuthHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Auth-Token"); got != "secret" {
			t.Errorf("Expected X-Auth-Token secret, got %q", got)
		}
		if got := r.Header.Get("X-Organization-Id"); got != "42" {
			t.Errorf("Expected X-Organization-Id 42, got %q", got)
		}
		if r.URL.Path != "/projects" {
			t.Errorf("Expected /projects, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("filter[project_type]") != "2" || q.Get("filter[status]") != "1" {
			t.Errorf("Unexpected project filters: %v", q)
		}
		w.Write([]byte(`{"data":[{"id":"1","type":"projects","attributes":{"name":"Website"}}]}`))
	})

	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Website" {
		t.Errorf("Expected one project named Website, got %+v", projects)
	}
}

func TestHTTPClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.ListBoards(context.Background(), "1")

			var fe *UpstreamFetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected UpstreamFetchError, got %v", err)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, fe.StatusCode)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestHTTPClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [`))
	})
	_, err := c.ListFolders(context.Background(), "1")
	if !errors.Is(err, ErrMalformedResponse) || !IsUpstream(err) {
		t.Errorf("Expected malformed upstream error, got %v", err)
	}
}

func TestHTTPClient_ListTasks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("filter[task_list_id]") != "77" {
			t.Errorf("Expected task list filter 77, got %q", q.Get("filter[task_list_id]"))
		}
		if q.Get("include") != "workflow_status,assignee" {
			t.Errorf("Unexpected include %q", q.Get("include"))
		}
		w.Write([]byte(`{
			"data": [{
				"id": "t1", "type": "tasks",
				"attributes": {
					"title": "Login page", "initial_estimate": 120, "remaining_time": -15,
					"created_at": "2024-07-20T09:30:00.000+02:00",
					"custom_fields": {"45468": "301"}
				},
				"relationships": {
					"assignee": {"data": {"id": "302", "type": "people"}},
					"workflow_status": {"data": {"id": "5", "type": "workflow_statuses"}},
					"subscribers": {"data": []}
				}
			}],
			"included": [
				{"id": "302", "type": "people", "attributes": {"first_name": "Ivo"}},
				{"id": "5", "type": "workflow_statuses", "attributes": {"name": "In Progress", "category_id": 2}}
			]
		}`))
	})

	batch, err := c.ListTasks(context.Background(), "77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(batch.Tasks))
	}
	task := batch.Tasks[0]
	if task.InitialEstimate != 120 || task.RemainingTime != -15 {
		t.Errorf("Expected estimate 120 remaining -15, got %d/%d", task.InitialEstimate, task.RemainingTime)
	}
	if task.ResponsibleID != "301" || task.AssigneeID != "302" || task.WorkflowStatusID != "5" {
		t.Errorf("Unexpected relationship ids: %+v", task)
	}
	if task.TaskListID != "77" {
		t.Errorf("Expected task list fallback 77, got %q", task.TaskListID)
	}
	if task.CreatedAt == nil || task.CreatedAt.Day() != 20 {
		t.Errorf("Expected created_at on the 20th, got %v", task.CreatedAt)
	}
	if len(batch.People) != 1 || len(batch.Statuses) != 1 || batch.Statuses[0].CategoryID != 2 {
		t.Errorf("Unexpected includes: people=%v statuses=%v", batch.People, batch.Statuses)
	}
}

func TestHTTPClient_ListTimeEntries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter[task_id]"); got != "t1,t2" {
			t.Errorf("Expected task filter t1,t2, got %q", got)
		}
		w.Write([]byte(`{
			"data": [
				{"id": "e1", "type": "time_entries", "attributes": {"date": "2024-07-29", "time": 90},
				 "relationships": {"person": {"data": {"id": "302", "type": "people"}}, "task": {"data": {"id": "t1", "type": "tasks"}}}},
				{"id": "e2", "type": "time_entries", "attributes": {"date": "2024-07-30", "time": 30, "task_id": 2},
				 "relationships": {"person": {"data": null}}}
			]
		}`))
	})

	batch, err := c.ListTimeEntries(context.Background(), []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(batch.Entries))
	}
	if e := batch.Entries[0]; e.TaskID != "t1" || e.PersonID != "302" || e.Minutes != 90 {
		t.Errorf("Unexpected first entry %+v", e)
	}
	if e := batch.Entries[1]; e.TaskID != "2" || e.PersonID != "" {
		t.Errorf("Expected attribute task id fallback and no person, got %+v", e)
	}
	if want := time.Date(2024, 7, 29, 0, 0, 0, 0, time.UTC); !batch.Entries[0].Date.Equal(want) {
		t.Errorf("Expected date %v, got %v", want, batch.Entries[0].Date)
	}
}

func TestHTTPClient_EmptyIDListsSkipRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	if people, err := c.GetPeople(context.Background(), nil); err != nil || people != nil {
		t.Errorf("Expected no people and no error, got %v, %v", people, err)
	}
	if batch, err := c.ListTimeEntries(context.Background(), nil); err != nil || len(batch.Entries) != 0 {
		t.Errorf("Expected empty batch, got %v, %v", batch, err)
	}
}

func TestHTTPClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetPeople(ctx, []string{"1"})
	if !IsUpstream(err) {
		t.Fatalf("Expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "people") {
		t.Errorf("Expected endpoint in error, got %q", err.Error())
	}
}
