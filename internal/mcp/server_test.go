package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/productive/productivetest"
	"sprint-pulse/internal/report"
)

func connect(t *testing.T, client productive.Client, charts bool) *mcp.ClientSession {
	t.Helper()
	opts := report.DefaultOptions()
	opts.Today = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	opts.ReferenceYear = 2024

	server := NewServer(report.NewService(client, opts, charts), "test")
	ct, st := mcp.NewInMemoryTransports()

	ctx := context.Background()
	ss, err := server.Connect(ctx, st)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	c := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := c.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult, i int) string {
	t.Helper()
	if len(res.Content) <= i {
		t.Fatalf("Expected at least %d content blocks, got %d", i+1, len(res.Content))
	}
	tc, ok := res.Content[i].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[i])
	}
	return tc.Text
}

func decode(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal([]byte(text(t, res, 0)), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestListTools(t *testing.T) {
	cs := connect(t, productivetest.Fixture(), false)
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"list_projects": true, "list_boards": true, "list_folders": true, "list_task_lists": true,
		"sprint_report": true, "sprint_history": true, "sprint_risks": true, "get_reporting_roadmap": true,
	}
	for _, tool := range res.Tools {
		delete(want, tool.Name)
	}
	if len(want) > 0 {
		t.Errorf("Missing tools: %v", want)
	}
}

func TestReportSchema(t *testing.T) {
	risks := reportSchema[SprintRisksInput]()
	capacity := risks.Properties["capacity_per_day"]
	if capacity == nil || capacity.Minimum == nil || capacity.Maximum == nil {
		t.Fatalf("Expected capacity bounds, got %+v", capacity)
	}
	if *capacity.Minimum != 1 || *capacity.Maximum != 10 {
		t.Errorf("Expected bounds 1..10, got %v..%v", *capacity.Minimum, *capacity.Maximum)
	}

	history := reportSchema[SprintHistoryInput]()
	for _, name := range []string{"mode", "capacity_per_day"} {
		if _, ok := history.Properties[name]; ok {
			t.Errorf("Expected sprint_history to take no %s", name)
		}
	}
	if _, ok := history.Properties["task_list_ids"]; !ok {
		t.Error("Expected task_list_ids on sprint_history")
	}
}

func TestListTaskLists_ParsesWindows(t *testing.T) {
	cs := connect(t, productivetest.Fixture(), false)
	res := call(t, cs, "list_task_lists", map[string]any{"board_id": "b1"})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", text(t, res, 0))
	}

	data := decode(t, res)["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("Expected 2 task lists, got %d", len(data))
	}
	first := data[0].(map[string]any)
	if first["id"] != "101" || first["window"] == nil {
		t.Errorf("Expected flattened task list with window, got %v", first)
	}
}

func TestSprintReportTool(t *testing.T) {
	cs := connect(t, productivetest.Fixture(), true)
	res := call(t, cs, "sprint_report", map[string]any{"task_list_id": "101", "mode": "total"})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", text(t, res, 0))
	}

	data := decode(t, res)["data"].(map[string]any)
	burndown := data["burndown"].(map[string]any)
	if burndown["mode"] != "total" {
		t.Errorf("Expected total mode selected, got %v", burndown["mode"])
	}
	kpi := data["kpi"].(map[string]any)
	if hours := kpi["hours"].(map[string]any); hours["actual"] != 1.5 {
		t.Errorf("Expected 1.5 worked hours, got %v", hours["actual"])
	}

	// Envelope plus one block per chart.
	if len(res.Content) != 5 {
		t.Errorf("Expected 5 content blocks, got %d", len(res.Content))
	}
	if !strings.HasPrefix(text(t, res, 1), "```mermaid") {
		t.Errorf("Expected chart block, got %q", text(t, res, 1))
	}
}

func TestSprintReportTool_InvalidToday(t *testing.T) {
	cs := connect(t, productivetest.Fixture(), false)
	res := call(t, cs, "sprint_report", map[string]any{"task_list_id": "101", "today": "01.08.2024"})
	if !res.IsError || !strings.Contains(text(t, res, 0), "Invalid arguments") {
		t.Errorf("Expected invalid argument error, got %+v", res)
	}
}

func TestSprintReportTool_UpstreamError(t *testing.T) {
	client := productivetest.Fixture()
	client.Errors = map[string]error{
		"ListTasks": &productive.UpstreamFetchError{Endpoint: "tasks", Page: 1, StatusCode: 401, Err: productive.ErrUnauthorized},
	}
	cs := connect(t, client, false)

	res := call(t, cs, "sprint_report", map[string]any{"task_list_id": "101"})
	if !res.IsError {
		t.Fatal("Expected an error result")
	}
	msg := text(t, res, 0)
	if !strings.Contains(msg, "no partial report") || !strings.Contains(msg, "PRODUCTIVE_API_TOKEN") {
		t.Errorf("Unexpected error message %q", msg)
	}
}

func TestSprintHistoryTool(t *testing.T) {
	cs := connect(t, productivetest.Fixture(), false)
	res := call(t, cs, "sprint_history", map[string]any{"task_list_ids": []string{"101", "102"}})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", text(t, res, 0))
	}

	data := decode(t, res)["data"].(map[string]any)
	sprints := data["sprints"].([]any)
	if len(sprints) != 2 || sprints[0].(map[string]any)["id"] != "102" {
		t.Errorf("Expected natural order, got %v", sprints)
	}
	rows := data["person_velocity"].([]any)
	if row := rows[0].(map[string]any); row["person"] != "Ana" || row["average"] != 2.8 {
		t.Errorf("Unexpected velocity row %v", row)
	}
}

func TestSprintRisksTool_CapacityClamped(t *testing.T) {
	cs := connect(t, productivetest.Fixture(), false)
	res := call(t, cs, "sprint_risks", map[string]any{"task_list_id": "101", "capacity_per_day": 25})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", text(t, res, 0))
	}
	risk := decode(t, res)["data"].(map[string]any)["risk"].(map[string]any)
	if risk["capacity_per_day_hours"] != 10.0 || risk["capacity_left_hours"] != 70.0 {
		t.Errorf("Expected capacity clamped to 10h/day over 7 days, got %v", risk)
	}
}

func TestRoadmapTool(t *testing.T) {
	cs := connect(t, productivetest.Fixture(), false)
	res := call(t, cs, "get_reporting_roadmap", map[string]any{"goal": "retrospective"})
	if res.IsError {
		t.Fatalf("Unexpected error: %s", text(t, res, 0))
	}
	if !strings.Contains(text(t, res, 0), "sprint_history") {
		t.Error("Expected retrospective roadmap to use sprint_history")
	}
}
