package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/report"
	"sprint-pulse/internal/stats"
)

type ListProjectsInput struct{}

// reportOptions applies per-call overrides on top of the service defaults.
func (s *Server) reportOptions(mode string, capacity float64, today string, year int) (report.Options, error) {
	opts := s.reports.Defaults()
	if mode != "" {
		m, err := stats.ParseBurndownMode(mode)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", report.ErrInvalidInput, err)
		}
		opts.Mode = m
	}
	if capacity != 0 {
		opts.CapacityPerDay = capacity
	}
	if today != "" {
		t, err := time.Parse("2006-01-02", today)
		if err != nil {
			return opts, fmt.Errorf("%w: today must be YYYY-MM-DD, got %q", report.ErrInvalidInput, today)
		}
		opts.Today = t
	}
	if year != 0 {
		opts.ReferenceYear = year
	}
	return opts, nil
}

func (s *Server) handleListProjects(ctx context.Context, _ *mcp.CallToolRequest, _ ListProjectsInput) (*mcp.CallToolResult, any, error) {
	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return errorResult("list_projects", err), nil, nil
	}
	res, err := WrapResponse(projects, []string{"Call 'list_boards' with a project id to find its sprint boards."}, nil, nil)
	return res, nil, err
}

func (s *Server) handleListBoards(ctx context.Context, _ *mcp.CallToolRequest, in ListBoardsInput) (*mcp.CallToolResult, any, error) {
	boards, err := s.client.ListBoards(ctx, in.ProjectID)
	if err != nil {
		return errorResult("list_boards", err), nil, nil
	}
	res, err := WrapResponse(boards, []string{"Call 'list_task_lists' with a board id to list its sprints."}, nil, nil)
	return res, nil, err
}

func (s *Server) handleListFolders(ctx context.Context, _ *mcp.CallToolRequest, in ListFoldersInput) (*mcp.CallToolResult, any, error) {
	folders, err := s.client.ListFolders(ctx, in.ProjectID)
	if err != nil {
		return errorResult("list_folders", err), nil, nil
	}
	res, err := WrapResponse(folders, nil, nil, nil)
	return res, nil, err
}

func (s *Server) handleListTaskLists(ctx context.Context, _ *mcp.CallToolRequest, in ListTaskListsInput) (*mcp.CallToolResult, any, error) {
	lists, err := s.client.ListTaskLists(ctx, productive.TaskListFilter{ProjectID: in.ProjectID, BoardID: in.BoardID})
	if err != nil {
		return errorResult("list_task_lists", err), nil, nil
	}

	type taskListView struct {
		productive.TaskList
		Window *stats.SprintWindow `json:"window,omitempty"`
	}
	opts := s.reports.Defaults()
	year := opts.ReferenceYear
	if year == 0 {
		year = time.Now().Year()
	}
	views := make([]taskListView, 0, len(lists))
	for _, tl := range lists {
		v := taskListView{TaskList: tl}
		if w, ok := stats.ParseWindow(tl.Name, year, opts.WrapDays); ok {
			v.Window = &w
		}
		views = append(views, v)
	}

	res, err := WrapResponse(views, []string{
		"Use 'sprint_report' for the current sprint and 'sprint_history' with several ids for trends.",
	}, nil, nil)
	return res, nil, err
}

func (s *Server) handleSprintReport(ctx context.Context, _ *mcp.CallToolRequest, in SprintReportInput) (*mcp.CallToolResult, any, error) {
	opts, err := s.reportOptions(in.Mode, in.CapacityPerDay, in.Today, in.ReferenceYear)
	if err != nil {
		return errorResult("sprint_report", err), nil, nil
	}
	r, err := s.reports.Sprint(ctx, in.TaskListID, opts)
	if err != nil {
		return errorResult("sprint_report", err), nil, nil
	}

	guidance := []string{
		"Hours are rounded to one decimal; remaining values may be negative when tasks were over-completed.",
		"Scope 'added' counts estimated tasks created after the first sprint day.",
	}
	if len(r.Risk.Tasks) > 0 {
		guidance = append(guidance, "Some devs are at risk; call 'sprint_risks' to explore other capacity assumptions.")
	}
	res, err := WrapResponse(r, guidance, r.Warnings, r.Charts)
	return res, nil, err
}

func (s *Server) handleSprintHistory(ctx context.Context, _ *mcp.CallToolRequest, in SprintHistoryInput) (*mcp.CallToolResult, any, error) {
	opts, err := s.reportOptions("", 0, in.Today, in.ReferenceYear)
	if err != nil {
		return errorResult("sprint_history", err), nil, nil
	}
	r, err := s.reports.History(ctx, in.TaskListIDs, opts)
	if err != nil {
		return errorResult("sprint_history", err), nil, nil
	}

	guidance := []string{
		"Person velocity averages over every selected sprint, counting sprints without logged time as zero.",
		"Accuracy columns are '<sprint>::Worked|Remaining|Overrun' in hours; averages are sorted by distance from 100%.",
	}
	res, err := WrapResponse(r, guidance, r.Warnings, r.Charts)
	return res, nil, err
}

func (s *Server) handleSprintRisks(ctx context.Context, _ *mcp.CallToolRequest, in SprintRisksInput) (*mcp.CallToolResult, any, error) {
	opts, err := s.reportOptions("", in.CapacityPerDay, in.Today, in.ReferenceYear)
	if err != nil {
		return errorResult("sprint_risks", err), nil, nil
	}
	r, err := s.reports.Risk(ctx, in.TaskListID, opts)
	if err != nil {
		return errorResult("sprint_risks", err), nil, nil
	}

	var warnings []string
	if r.Window == nil {
		warnings = append(warnings, "sprint name has no recognizable date range; no capacity is left")
	}
	var charts map[string]string
	if r.Chart != "" {
		charts = map[string]string{"risk": r.Chart}
	}
	res, err := WrapResponse(r, []string{
		"A dev is 'risk' when remaining hours reach the capacity left, 'warning' from 80% of it.",
	}, warnings, charts)
	return res, nil, err
}

var roadmaps = map[string]map[string]any{
	"sprint_status": {
		"title": "Where does the current sprint stand?",
		"steps": []map[string]any{
			{"step": 1, "tool": "list_task_lists", "description": "Find the active sprint on the team's board."},
			{"step": 2, "tool": "sprint_report", "description": "Read KPIs and the burndown; compare sprint and total modes when work started early."},
			{"step": 3, "tool": "sprint_risks", "description": "Check which devs cannot finish their remaining work in the days left."},
		},
	},
	"retrospective": {
		"title": "How did recent sprints go?",
		"steps": []map[string]any{
			{"step": 1, "tool": "list_task_lists", "description": "Pick the last few sprints of the board."},
			{"step": 2, "tool": "sprint_history", "description": "Compare planned vs completed hours and scope change per sprint."},
			{"step": 3, "tool": "sprint_history", "description": "Review estimation accuracy per person and work left by status."},
		},
	},
	"capacity_planning": {
		"title": "Can the team take on more?",
		"steps": []map[string]any{
			{"step": 1, "tool": "sprint_history", "description": "Use velocity per person as the realistic hours per sprint."},
			{"step": 2, "tool": "sprint_risks", "description": "Try capacity_per_day values to see where the current sprint tips into risk."},
		},
	},
}

func (s *Server) handleRoadmap(_ context.Context, _ *mcp.CallToolRequest, in RoadmapInput) (*mcp.CallToolResult, any, error) {
	rm, ok := roadmaps[in.Goal]
	if !ok {
		return errorResult("get_reporting_roadmap", fmt.Errorf("%w: unknown goal %q. Available goals: sprint_status, retrospective, capacity_planning", report.ErrInvalidInput, in.Goal)), nil, nil
	}
	res, err := WrapResponse(rm, nil, nil, nil)
	return res, nil, err
}
