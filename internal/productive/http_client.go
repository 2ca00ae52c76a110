package productive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// HTTPClient talks to the Productive JSON:API over net/http.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
}

// NewHTTPClient builds a client against cfg.BaseURL, filling in defaults.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *HTTPClient) throttle(ctx context.Context) error {
	if c.cfg.RequestDelay <= 0 {
		return nil
	}
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Productive request")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *HTTPClient) authenticateRequest(req *http.Request) {
	req.Header.Set("X-Auth-Token", c.cfg.Token)
	req.Header.Set("X-Organization-Id", c.cfg.OrganizationID)
	req.Header.Set("Content-Type", "application/vnd.api+json")
	req.Header.Set("Accept", "application/vnd.api+json")
}

// FetchPage performs a single GET against a collection endpoint.
func (c *HTTPClient) FetchPage(ctx context.Context, endpoint string, params url.Values) (*Document, error) {
	page, _ := strconv.Atoi(params.Get("page[number]"))
	fail := func(status int, err error) (*Document, error) {
		return nil, &UpstreamFetchError{Endpoint: endpoint, Page: page, StatusCode: status, Err: err}
	}

	if err := c.throttle(ctx); err != nil {
		return fail(0, err)
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.cfg.BaseURL, strings.TrimLeft(endpoint, "/"), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(0, err)
	}
	c.authenticateRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fail(resp.StatusCode, fmt.Errorf("%w: check PRODUCTIVE_API_TOKEN", ErrUnauthorized))
		case http.StatusForbidden:
			return fail(resp.StatusCode, fmt.Errorf("%w: check PRODUCTIVE_ORG_ID and token scope", ErrForbidden))
		case http.StatusNotFound:
			return fail(resp.StatusCode, ErrNotFound)
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				return fail(resp.StatusCode, fmt.Errorf("%w: retry after %s seconds", ErrRateLimited, retryAfter))
			}
			return fail(resp.StatusCode, ErrRateLimited)
		default:
			return fail(resp.StatusCode, fmt.Errorf("productive API returned status %d", resp.StatusCode))
		}
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("page", page).
		Int("count", len(doc.Data)).
		Int("included", len(doc.Included)).
		Dur("took", time.Since(start)).
		Msg("Fetched page")
	return &doc, nil
}

func (c *HTTPClient) fetchAll(ctx context.Context, endpoint string, params url.Values) ([]Resource, error) {
	return FetchAll(ctx, c, endpoint, params, c.cfg.PageSize)
}

func (c *HTTPClient) fetchAllWithIncluded(ctx context.Context, endpoint string, params url.Values) ([]Resource, []Resource, error) {
	return FetchAllWithIncluded(ctx, c, endpoint, params, c.cfg.PageSize)
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]Project, error) {
	params := url.Values{}
	params.Set("filter[project_type]", "2")
	params.Set("filter[status]", "1")

	res, err := c.fetchAll(ctx, "projects", params)
	if err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(res))
	for _, r := range res {
		var attrs namedAttributes
		if err := decodeAttributes(r, &attrs); err != nil {
			return nil, malformed(r.Type, err)
		}
		out = append(out, Project{ID: r.ID, Name: attrs.Name})
	}
	return out, nil
}

func (c *HTTPClient) ListBoards(ctx context.Context, projectID string) ([]Board, error) {
	params := url.Values{}
	params.Set("filter[project_id]", projectID)
	params.Set("filter[status]", "1")

	res, err := c.fetchAll(ctx, "boards", params)
	if err != nil {
		return nil, err
	}
	out := make([]Board, 0, len(res))
	for _, r := range res {
		var attrs namedAttributes
		if err := decodeAttributes(r, &attrs); err != nil {
			return nil, malformed(r.Type, err)
		}
		b := Board{ID: r.ID, Name: attrs.Name, ProjectID: projectID}
		if id, ok := r.RelationshipID("project"); ok {
			b.ProjectID = id
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *HTTPClient) ListFolders(ctx context.Context, projectID string) ([]Folder, error) {
	params := url.Values{}
	params.Set("filter[project_id]", projectID)

	res, err := c.fetchAll(ctx, "folders", params)
	if err != nil {
		return nil, err
	}
	out := make([]Folder, 0, len(res))
	for _, r := range res {
		var attrs namedAttributes
		if err := decodeAttributes(r, &attrs); err != nil {
			return nil, malformed(r.Type, err)
		}
		out = append(out, Folder{ID: r.ID, Name: attrs.Name, ProjectID: projectID})
	}
	return out, nil
}

func (c *HTTPClient) ListTaskLists(ctx context.Context, filter TaskListFilter) ([]TaskList, error) {
	params := url.Values{}
	if filter.ProjectID != "" {
		params.Set("filter[project_id]", filter.ProjectID)
	}
	if filter.BoardID != "" {
		params.Set("filter[board_id]", filter.BoardID)
	}
	params.Set("filter[status]", "1")
	return c.taskLists(ctx, params)
}

func (c *HTTPClient) GetTaskLists(ctx context.Context, ids []string) ([]TaskList, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("filter[id]", strings.Join(ids, ","))
	return c.taskLists(ctx, params)
}

func (c *HTTPClient) taskLists(ctx context.Context, params url.Values) ([]TaskList, error) {
	res, err := c.fetchAll(ctx, "task_lists", params)
	if err != nil {
		return nil, err
	}
	out := make([]TaskList, 0, len(res))
	for _, r := range res {
		tl, err := MapTaskList(r)
		if err != nil {
			return nil, malformed(r.Type, err)
		}
		out = append(out, tl)
	}
	return out, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context, taskListID string) (*TaskBatch, error) {
	params := url.Values{}
	params.Set("filter[task_list_id]", taskListID)
	params.Set("include", "workflow_status,assignee")
	params.Set("fields[tasks]", "title,initial_estimate,remaining_time,created_at,custom_fields,workflow_status,assignee,task_list")
	params.Set("fields[workflow_statuses]", "name,category_id")
	params.Set("fields[people]", "first_name,last_name,email")

	data, included, err := c.fetchAllWithIncluded(ctx, "tasks", params)
	if err != nil {
		return nil, err
	}

	batch := &TaskBatch{Tasks: make([]Task, 0, len(data))}
	for _, r := range data {
		t, err := MapTask(r, c.cfg.ResponsibleFieldID)
		if err != nil {
			return nil, malformed(r.Type, err)
		}
		if t.TaskListID == "" {
			t.TaskListID = taskListID
		}
		batch.Tasks = append(batch.Tasks, t)
	}
	if batch.People, batch.Statuses, err = SplitIncluded(included); err != nil {
		return nil, malformed("tasks", err)
	}
	return batch, nil
}

func (c *HTTPClient) ListTimeEntries(ctx context.Context, taskIDs []string) (*TimeEntryBatch, error) {
	if len(taskIDs) == 0 {
		return &TimeEntryBatch{}, nil
	}
	params := url.Values{}
	params.Set("filter[task_id]", strings.Join(taskIDs, ","))
	params.Set("include", "person,task")

	data, included, err := c.fetchAllWithIncluded(ctx, "time_entries", params)
	if err != nil {
		return nil, err
	}

	batch := &TimeEntryBatch{Entries: make([]TimeEntry, 0, len(data))}
	for _, r := range data {
		e, err := MapTimeEntry(r)
		if err != nil {
			return nil, malformed("time_entries", err)
		}
		batch.Entries = append(batch.Entries, e)
	}
	if batch.People, _, err = SplitIncluded(included); err != nil {
		return nil, malformed("time_entries", err)
	}
	return batch, nil
}

func (c *HTTPClient) GetPeople(ctx context.Context, ids []string) ([]Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("filter[id]", strings.Join(ids, ","))

	res, err := c.fetchAll(ctx, "people", params)
	if err != nil {
		return nil, err
	}
	out := make([]Person, 0, len(res))
	for _, r := range res {
		p, err := MapPerson(r)
		if err != nil {
			return nil, malformed(r.Type, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func malformed(endpoint string, err error) error {
	return &UpstreamFetchError{Endpoint: endpoint, Err: err}
}
