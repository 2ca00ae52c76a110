package watch

import (
	"context"
	"testing"
	"time"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/productive/productivetest"
	"sprint-pulse/internal/report"
)

func newService(client productive.Client) *report.Service {
	opts := report.DefaultOptions()
	opts.Today = time.Date(2024, 8, 9, 0, 0, 0, 0, time.UTC)
	opts.ReferenceYear = 2024
	opts.CapacityPerDay = 1
	return report.NewService(client, opts, false)
}

func TestRunOnce_RaisesCallouts(t *testing.T) {
	w, err := New(newService(productivetest.Fixture()), []string{"101"}, "", time.UTC)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	alerts := w.RunOnce(context.Background())
	// Last sprint day with 1h capacity: Ben's 1h task fills his capacity.
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %+v", alerts)
	}
	if a := alerts[0]; a.Person != "Ben" || a.Level != "risk" || a.Hours != 1 {
		t.Errorf("Unexpected dev alert %+v", a)
	}
	if a := alerts[1]; a.TaskID != "2" || a.Level != "critical" {
		t.Errorf("Unexpected task alert %+v", a)
	}
}

func TestRunOnce_SkipsFailingTaskList(t *testing.T) {
	client := productivetest.Fixture()
	client.Errors = map[string]error{"ListTasks": productive.ErrNotFound}
	w, err := New(newService(client), []string{"101", "102"}, "", time.UTC)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if alerts := w.RunOnce(context.Background()); len(alerts) != 0 {
		t.Errorf("Expected no alerts, got %+v", alerts)
	}
	if n := client.Calls("ListTasks"); n != 2 {
		t.Errorf("Expected both task lists attempted, got %d", n)
	}
}

func TestNew_Validation(t *testing.T) {
	svc := newService(productivetest.Fixture())
	if _, err := New(svc, nil, "", nil); err == nil {
		t.Error("Expected error without task lists")
	}
	if _, err := New(svc, []string{"101"}, "every monday", nil); err == nil {
		t.Error("Expected error for an invalid schedule")
	}
}

func TestStartStop(t *testing.T) {
	w, err := New(newService(productivetest.Fixture()), []string{"101"}, "*/5 * * * *", time.UTC)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	w.Stop()
}
