package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/report"
	"sprint-pulse/internal/stats"
)

type Handlers struct {
	svc *report.Service
}

func NewHandlers(svc *report.Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// fail maps an error to its status code: 400 for bad input, 502 for upstream failures.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var upstream *productive.UpstreamFetchError
	switch {
	case errors.Is(err, report.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
	}
	body := gin.H{"error": err.Error()}
	if id, ok := c.Get("request_id"); ok {
		body["request_id"] = id
	}
	c.JSON(status, body)
}

func (h *Handlers) Projects(c *gin.Context) {
	projects, err := h.svc.Client().ListProjects(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handlers) Boards(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		fail(c, fmt.Errorf("%w: project_id is required", report.ErrInvalidInput))
		return
	}
	boards, err := h.svc.Client().ListBoards(c.Request.Context(), projectID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

func (h *Handlers) Folders(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		fail(c, fmt.Errorf("%w: project_id is required", report.ErrInvalidInput))
		return
	}
	folders, err := h.svc.Client().ListFolders(c.Request.Context(), projectID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

func (h *Handlers) TaskLists(c *gin.Context) {
	ids := splitIDs(c.QueryArray("id"))
	var (
		lists []productive.TaskList
		err   error
	)
	if len(ids) > 0 {
		lists, err = h.svc.Client().GetTaskLists(c.Request.Context(), ids)
	} else {
		lists, err = h.svc.Client().ListTaskLists(c.Request.Context(), productive.TaskListFilter{
			ProjectID: c.Query("project_id"),
			BoardID:   c.Query("board_id"),
		})
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *Handlers) SprintReport(c *gin.Context) {
	opts, err := h.options(c)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.svc.Sprint(c.Request.Context(), c.Query("task_list_id"), opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// SprintHistory accepts ids as repeated or comma separated task_list_id parameters.
func (h *Handlers) SprintHistory(c *gin.Context) {
	opts, err := h.options(c)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.svc.History(c.Request.Context(), splitIDs(c.QueryArray("task_list_id")), opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handlers) Risks(c *gin.Context) {
	opts, err := h.options(c)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.svc.Risk(c.Request.Context(), c.Query("task_list_id"), opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// options reads mode, capacity, today and year query overrides.
func (h *Handlers) options(c *gin.Context) (report.Options, error) {
	opts := h.svc.Defaults()
	if v := c.Query("mode"); v != "" {
		m, err := stats.ParseBurndownMode(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", report.ErrInvalidInput, err)
		}
		opts.Mode = m
	}
	if v := c.Query("capacity"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("%w: capacity must be a number, got %q", report.ErrInvalidInput, v)
		}
		opts.CapacityPerDay = f
	}
	if v := c.Query("today"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, fmt.Errorf("%w: today must be YYYY-MM-DD, got %q", report.ErrInvalidInput, v)
		}
		opts.Today = t
	}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%w: year must be an integer, got %q", report.ErrInvalidInput, v)
		}
		opts.ReferenceYear = y
	}
	return opts, nil
}

func splitIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
