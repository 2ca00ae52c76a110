package mcp

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sprint-pulse/internal/stats"
)

type ListBoardsInput struct {
	ProjectID string `json:"project_id" jsonschema:"The Productive project id"`
}

type ListFoldersInput struct {
	ProjectID string `json:"project_id" jsonschema:"The Productive project id"`
}

type ListTaskListsInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Optional project id"`
	BoardID   string `json:"board_id,omitempty" jsonschema:"Optional board id"`
}

type SprintReportInput struct {
	TaskListID     string  `json:"task_list_id" jsonschema:"The task list (sprint) id"`
	Mode           string  `json:"mode,omitempty" jsonschema:"Burndown mode: sprint (default) or total"`
	CapacityPerDay float64 `json:"capacity_per_day,omitempty" jsonschema:"Hours of capacity per dev per business day, clamped to 1-10"`
	Today          string  `json:"today,omitempty" jsonschema:"Override the current date (YYYY-MM-DD)"`
	ReferenceYear  int     `json:"reference_year,omitempty" jsonschema:"Year the sprint name dates belong to; defaults to the year of today"`
}

type SprintHistoryInput struct {
	TaskListIDs   []string `json:"task_list_ids" jsonschema:"Task list (sprint) ids to compare"`
	Today         string   `json:"today,omitempty" jsonschema:"Override the current date (YYYY-MM-DD)"`
	ReferenceYear int      `json:"reference_year,omitempty" jsonschema:"Year the sprint name dates belong to; defaults to the year of today"`
}

type SprintRisksInput struct {
	TaskListID     string  `json:"task_list_id" jsonschema:"The task list (sprint) id"`
	CapacityPerDay float64 `json:"capacity_per_day,omitempty" jsonschema:"Hours of capacity per dev per business day, clamped to 1-10"`
	Today          string  `json:"today,omitempty" jsonschema:"Override the current date (YYYY-MM-DD)"`
	ReferenceYear  int     `json:"reference_year,omitempty" jsonschema:"Year the sprint name dates belong to; defaults to the year of today"`
}

type RoadmapInput struct {
	Goal string `json:"goal" jsonschema:"The reporting goal"`
}

// reportSchema adds the mode enum and the capacity default and bounds to a generated input schema.
func reportSchema[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}
	if p, ok := schema.Properties["mode"]; ok {
		p.Enum = []any{string(stats.ModeSprint), string(stats.ModeTotal)}
		p.Default = json.RawMessage(`"sprint"`)
	}
	if p, ok := schema.Properties["capacity_per_day"]; ok {
		lo, hi := stats.MinCapacityPerDay, stats.MaxCapacityPerDay
		p.Default = json.RawMessage(`6`)
		p.Minimum = &lo
		p.Maximum = &hi
	}
	return schema
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_projects",
		Description: "List active client projects in Productive. Guidance: call 'list_boards' next to find the sprint board.",
	}, s.handleListProjects)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_boards",
		Description: "List active boards of a project. Guidance: call 'list_task_lists' with the board id to find sprints.",
	}, s.handleListBoards)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_folders",
		Description: "List folders of a project.",
	}, s.handleListFolders)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "list_task_lists",
		Description: "List active task lists (sprints), optionally filtered by project and board. " +
			"Sprint dates are read from names like 'Sprint 29.07 - 09.08'.",
	}, s.handleListTaskLists)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "sprint_report",
		Description: "Current-sprint dashboard for one task list: KPIs, burndown in both modes, effort per person, " +
			"work by status, remaining by status, scope change and capacity risk.\n\n" +
			"All figures are computed fresh from Productive on every call. If the sprint name has no date range, " +
			"window-scoped figures are empty and a warning explains why.",
		InputSchema: reportSchema[SprintReportInput](),
	}, s.handleSprintReport)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "sprint_history",
		Description: "Compare several sprints: team velocity, velocity per person, estimation accuracy and work by status. " +
			"Sprints are ordered by name; duplicate names get their id appended.",
		InputSchema: reportSchema[SprintHistoryInput](),
	}, s.handleSprintHistory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "sprint_risks",
		Description: "Capacity risk for one sprint: remaining hours per dev against days left times capacity per day, " +
			"plus the tasks that dominate an at-risk dev's remaining work.",
		InputSchema: reportSchema[SprintRisksInput](),
	}, s.handleSprintRisks)

	roadmap, err := jsonschema.For[RoadmapInput](nil)
	if err != nil {
		panic(err)
	}
	roadmap.Properties["goal"].Enum = []any{"sprint_status", "retrospective", "capacity_planning"}
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_reporting_roadmap",
		Description: "Returns the recommended sequence of tools for a reporting goal. Use this first when unsure which report answers the question.",
		InputSchema: roadmap,
	}, s.handleRoadmap)
}
