package report

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/productive/productivetest"
	"sprint-pulse/internal/stats"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Today = time.Date(2024, 8, 1, 15, 0, 0, 0, time.UTC)
	opts.ReferenceYear = 2024
	return opts
}

func TestService_Sprint(t *testing.T) {
	client := productivetest.Fixture()
	svc := NewService(client, testOptions(), false)

	r, err := svc.Sprint(context.Background(), "101", testOptions())
	if err != nil {
		t.Fatalf("Sprint: %v", err)
	}

	if r.TaskList.Name != "Sprint 29.07 - 09.08" || r.Window == nil {
		t.Fatalf("Expected parsed sprint window, got %+v", r)
	}
	if len(r.BusinessDates) != 10 || r.DaysLeft != 7 {
		t.Errorf("Expected 10 business dates and 7 days left, got %d/%d", len(r.BusinessDates), r.DaysLeft)
	}

	if r.KPI.Days.Actual != 3 || r.KPI.Tasks.Actual != 1 || r.KPI.Tasks.Total != 3 {
		t.Errorf("Unexpected KPI days/tasks: %+v %+v", r.KPI.Days, r.KPI.Tasks)
	}
	if r.KPI.Hours.Actual != 1.5 || r.KPI.Hours.Total != 3 || r.KPI.Hours.Percent != 50 {
		t.Errorf("Unexpected KPI hours: %+v", r.KPI.Hours)
	}
	if r.Scope.InitialMinutes != 120 || r.Scope.AddedMinutes != 60 {
		t.Errorf("Unexpected scope: %+v", r.Scope)
	}

	actual := func(v BurndownView) []float64 {
		var out []float64
		for _, row := range v.Rows {
			if row.Actual != nil {
				out = append(out, *row.Actual)
			}
		}
		return out
	}
	if got := actual(r.Burndowns[stats.ModeSprint]); !reflect.DeepEqual(got, []float64{3, 3, 1.5, 1.5}) {
		t.Errorf("Sprint burndown actual = %v", got)
	}
	if got := actual(r.Burndowns[stats.ModeTotal]); !reflect.DeepEqual(got, []float64{2.5, 2.5, 1, 1}) {
		t.Errorf("Total burndown actual = %v", got)
	}
	if r.Burndown.Mode != stats.ModeSprint {
		t.Errorf("Expected selected sprint mode, got %s", r.Burndown.Mode)
	}
	if h := r.KPIs[stats.ModeTotal].Hours; h.Actual != 2 || h.Percent != 66.7 {
		t.Errorf("Expected 2.0h of 3.0h in total mode, got %+v", h)
	}

	if len(r.EffortSprint) != 2 || r.EffortSprint[0].Person != "Ana" || r.EffortSprint[0].Worked != 1.5 {
		t.Errorf("Unexpected sprint effort %+v", r.EffortSprint)
	}
	if r.EffortTotal[0].Worked != 2 {
		t.Errorf("Expected total effort to include pre-sprint work, got %+v", r.EffortTotal[0])
	}
	if r.EffortSprint[1].Person != "Ben" {
		t.Errorf("Expected Ben resolved through supplemental fetch, got %+v", r.EffortSprint[1])
	}

	wantRemaining := []string{"Not Started", "In Progress"}
	var gotRemaining []string
	for _, row := range r.RemainingByStatus {
		gotRemaining = append(gotRemaining, row.Status)
	}
	if !reflect.DeepEqual(gotRemaining, wantRemaining) {
		t.Errorf("Remaining by status = %v, want %v", gotRemaining, wantRemaining)
	}

	if len(r.Breakdown) != 1 || r.Breakdown[0].Status != "In Progress" || r.Breakdown[0].Worked != 90 || r.Breakdown[0].Remaining != 30 {
		t.Errorf("Unexpected breakdown %+v", r.Breakdown)
	}

	if r.Risk.CapacityLeftHours != 42 || len(r.Risk.Devs) != 2 {
		t.Errorf("Unexpected risk %+v", r.Risk)
	}
	if r.Charts != nil {
		t.Error("Expected no charts when disabled")
	}
}

func TestService_SprintFetchOrder(t *testing.T) {
	client := productivetest.Fixture()
	svc := NewService(client, testOptions(), false)

	if _, err := svc.Sprint(context.Background(), "101", testOptions()); err != nil {
		t.Fatalf("Sprint: %v", err)
	}

	for _, method := range []string{"GetTaskLists", "ListTasks", "ListTimeEntries", "GetPeople"} {
		if n := client.Calls(method); n != 1 {
			t.Errorf("Expected one %s call, got %d", method, n)
		}
	}
	if got := client.Args("GetPeople")[0]; !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("Expected supplemental lookup for unresolved id only, got %v", got)
	}
	if got := client.Args("ListTimeEntries")[0]; !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("Expected entries for every task id, got %v", got)
	}
}

func TestService_SprintUpstreamFailure(t *testing.T) {
	client := productivetest.Fixture()
	client.Errors = map[string]error{
		"ListTimeEntries": &productive.UpstreamFetchError{Endpoint: "time_entries", Page: 2, Err: productive.ErrRateLimited},
	}
	svc := NewService(client, testOptions(), false)

	r, err := svc.Sprint(context.Background(), "101", testOptions())
	if err == nil || r != nil {
		t.Fatalf("Expected failure without partial report, got %+v", r)
	}
	if !errors.Is(err, productive.ErrRateLimited) {
		t.Errorf("Expected rate limit cause, got %v", err)
	}
}

func TestService_SprintRequiresID(t *testing.T) {
	svc := NewService(productivetest.Fixture(), testOptions(), false)
	if _, err := svc.Sprint(context.Background(), "", testOptions()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestService_SprintWithoutWindow(t *testing.T) {
	client := productivetest.Fixture()
	client.TaskLists[0].Name = "Backlog"
	svc := NewService(client, testOptions(), true)

	r, err := svc.Sprint(context.Background(), "101", testOptions())
	if err != nil {
		t.Fatalf("Sprint: %v", err)
	}
	if r.Window != nil || len(r.BusinessDates) != 0 || r.Breakdown != nil {
		t.Errorf("Expected degraded report, got %+v", r)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("Expected a warning, got %v", r.Warnings)
	}
	// Every task is planned without a window.
	if r.Scope.AddedMinutes != 0 || r.Scope.InitialMinutes != 180 {
		t.Errorf("Unexpected scope %+v", r.Scope)
	}
	if _, ok := r.Charts["burndown"]; ok {
		t.Error("Expected no burndown chart without business dates")
	}
}

func TestService_SprintCharts(t *testing.T) {
	svc := NewService(productivetest.Fixture(), testOptions(), true)
	r, err := svc.Sprint(context.Background(), "101", testOptions())
	if err != nil {
		t.Fatalf("Sprint: %v", err)
	}
	for _, name := range []string{"burndown", "breakdown", "remaining_by_status", "risk"} {
		if !strings.Contains(r.Charts[name], "```mermaid") {
			t.Errorf("Expected %s chart, got %q", name, r.Charts[name])
		}
	}
}

func TestService_History(t *testing.T) {
	client := productivetest.Fixture()
	svc := NewService(client, testOptions(), true)

	r, err := svc.History(context.Background(), []string{"101", "102", "101"}, testOptions())
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	var order []string
	for _, s := range r.Sprints {
		order = append(order, s.ID)
	}
	if !reflect.DeepEqual(order, []string{"102", "101"}) {
		t.Errorf("Expected natural name order 102, 101, got %v", order)
	}
	if client.Calls("GetTaskLists") != 1 || client.Calls("ListTasks") != 2 {
		t.Errorf("Expected one metadata call and one task fetch per sprint, got %d/%d",
			client.Calls("GetTaskLists"), client.Calls("ListTasks"))
	}

	byName := make(map[string]stats.VelocityPoint)
	for _, p := range r.TeamVelocity {
		byName[p.SprintID] = p
	}
	if p := byName["101"]; p.PlannedHours != 2 || p.ScopeChangeHours != 1 || p.CompletedHours != 1.5 {
		t.Errorf("Unexpected velocity for 101: %+v", p)
	}
	if p := byName["102"]; p.PlannedHours != 3 || p.CompletedHours != 4 {
		t.Errorf("Unexpected velocity for 102: %+v", p)
	}

	if len(r.PersonVelocity) != 1 || r.PersonVelocity[0].Label != "Ana" || r.PersonVelocity[0].Values["average"] != 2.8 {
		t.Errorf("Unexpected person velocity %+v", r.PersonVelocity)
	}

	if len(r.AccuracyAverages) != 2 || r.AccuracyAverages[0].Person != "Ana" || r.AccuracyAverages[0].AveragePct != 87.5 {
		t.Errorf("Unexpected accuracy averages %+v", r.AccuracyAverages)
	}

	if !reflect.DeepEqual(r.StatusColumns, []string{"In Progress", "In Client Review"}) {
		t.Errorf("Unexpected status columns %v", r.StatusColumns)
	}
	if len(r.Breakdown) != 2 {
		t.Errorf("Expected a breakdown row per sprint, got %d", len(r.Breakdown))
	}

	// Ben only has work in 101 but still gets zero columns for 102.
	var ben stats.WideRow
	for _, row := range r.Accuracy {
		if row.Label == "Ben" {
			ben = row
		}
	}
	for _, series := range []string{"Worked", "Remaining", "Overrun"} {
		key := stats.SeriesKey("Sprint 12.08 - 23.08", series)
		if v, ok := ben.Values[key]; !ok || v != 0 {
			t.Errorf("Expected Ben %s = 0, got %v (present=%v)", key, v, ok)
		}
	}

	for _, name := range []string{"team_velocity", "person_velocity", "breakdown", "accuracy"} {
		if r.Charts[name] == "" {
			t.Errorf("Expected %s chart", name)
		}
	}
}

func TestService_SprintTotalModeKPI(t *testing.T) {
	opts := testOptions()
	opts.Mode = stats.ModeTotal
	svc := NewService(productivetest.Fixture(), opts, false)

	r, err := svc.Sprint(context.Background(), "101", opts)
	if err != nil {
		t.Fatalf("Sprint: %v", err)
	}
	// Total mode counts the 30 minutes logged before the sprint started.
	if r.KPI.Hours.Actual != 2 || r.KPI.Hours.Total != 3 {
		t.Errorf("Expected 2.0h of 3.0h, got %+v", r.KPI.Hours)
	}
	if r.KPIs[stats.ModeSprint].Hours.Actual != 1.5 {
		t.Errorf("Expected sprint mode to keep 1.5h, got %+v", r.KPIs[stats.ModeSprint].Hours)
	}
	if r.Burndown.Mode != stats.ModeTotal {
		t.Errorf("Expected selected total mode, got %s", r.Burndown.Mode)
	}
}

func TestService_HistoryKeepsUndatedSprints(t *testing.T) {
	client := productivetest.Fixture()
	client.TaskLists = append(client.TaskLists, productive.TaskList{ID: "103", Name: "Backlog", BoardID: "b1"})
	svc := NewService(client, testOptions(), false)

	r, err := svc.History(context.Background(), []string{"101", "102", "103"}, testOptions())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(r.Sprints) != 3 || len(r.Breakdown) != 3 {
		t.Fatalf("Expected a breakdown row per sprint, got %d sprints and %d rows", len(r.Sprints), len(r.Breakdown))
	}

	var backlog *stats.WideRow
	for i := range r.Breakdown {
		if r.Breakdown[i].Label == "Backlog" {
			backlog = &r.Breakdown[i]
		}
	}
	if backlog == nil {
		t.Fatalf("Expected an empty breakdown row for Backlog, got %+v", r.Breakdown)
	}
	if len(backlog.Values) != 0 || backlog.Counts == nil || len(backlog.Counts) != 0 {
		t.Errorf("Expected empty values and counts, got %+v", backlog)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "Backlog") {
		t.Errorf("Expected a warning for Backlog, got %v", r.Warnings)
	}
}

func TestService_HistoryFailsWhole(t *testing.T) {
	client := productivetest.Fixture()
	client.Errors = map[string]error{"GetPeople": productive.ErrUnauthorized}
	svc := NewService(client, testOptions(), false)

	if _, err := svc.History(context.Background(), []string{"101", "102"}, testOptions()); !errors.Is(err, productive.ErrUnauthorized) {
		t.Errorf("Expected unauthorized, got %v", err)
	}
}

func TestService_HistoryRequiresIDs(t *testing.T) {
	svc := NewService(productivetest.Fixture(), testOptions(), false)
	if _, err := svc.History(context.Background(), []string{"", ""}, testOptions()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Risk(t *testing.T) {
	opts := testOptions()
	opts.CapacityPerDay = 0.1
	svc := NewService(productivetest.Fixture(), opts, false)

	r, err := svc.Risk(context.Background(), "102", opts)
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}
	// Capacity clamps to 1h/day; sprint 102 has not started so all 10 days remain.
	if r.Risk.CapacityPerDay != 1 || r.Risk.DaysLeft != 10 {
		t.Errorf("Unexpected risk header %+v", r.Risk)
	}
}

func TestDisambiguateNames(t *testing.T) {
	snaps := []*Snapshot{
		{TaskList: productive.TaskList{ID: "7", Name: "Sprint 1.7 - 12.7"}},
		{TaskList: productive.TaskList{ID: "3", Name: "Sprint 1.7 - 12.7"}},
		{TaskList: productive.TaskList{ID: "9", Name: "Sprint 15.7 - 26.7"}},
	}
	sortSnapshots(snaps)
	disambiguateNames(snaps)

	want := []string{"Sprint 1.7 - 12.7 (#3)", "Sprint 1.7 - 12.7 (#7)", "Sprint 15.7 - 26.7"}
	for i, s := range snaps {
		if s.TaskList.Name != want[i] {
			t.Errorf("snaps[%d] = %q, want %q", i, s.TaskList.Name, want[i])
		}
	}
}

func TestPickTaskListPlaceholder(t *testing.T) {
	if got := pickTaskList(nil, "42"); got.Name != "Task list #42" {
		t.Errorf("Expected placeholder name, got %q", got.Name)
	}
}
