package productive

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMapTask_ResponsibleField(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
		want  string
	}{
		{"string value", `{"custom_fields": {"45468": "12"}}`, "12"},
		{"numeric value", `{"custom_fields": {"45468": 12}}`, "12"},
		{"list value", `{"custom_fields": {"45468": ["12", "13"]}}`, "12"},
		{"other field only", `{"custom_fields": {"1": "12"}}`, ""},
		{"no custom fields", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := MapTask(Resource{ID: "t", Type: "tasks", Attributes: json.RawMessage(tt.attrs)}, DefaultResponsibleFieldID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if task.ResponsibleID != tt.want {
				t.Errorf("Expected responsible %q, got %q", tt.want, task.ResponsibleID)
			}
		})
	}
}

func TestMapTask_NumericGuards(t *testing.T) {
	task, err := MapTask(Resource{ID: "t", Attributes: json.RawMessage(`{"initial_estimate": -30, "remaining_time": -45}`)}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.InitialEstimate != 0 {
		t.Errorf("Expected negative estimate clamped to 0, got %d", task.InitialEstimate)
	}
	if task.RemainingTime != -45 {
		t.Errorf("Expected negative remaining preserved, got %d", task.RemainingTime)
	}
	if task.DisplayTitle() != "Task t" {
		t.Errorf("Expected synthesized title, got %q", task.DisplayTitle())
	}
}

func TestMapTask_MalformedAttributes(t *testing.T) {
	_, err := MapTask(Resource{ID: "t", Type: "tasks", Attributes: json.RawMessage(`{"title": 5}`)}, "")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestMapTimeEntry_BadDate(t *testing.T) {
	_, err := MapTimeEntry(Resource{ID: "e", Attributes: json.RawMessage(`{"date": "yesterday", "time": 10}`)})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestParseTime(t *testing.T) {
	inputs := []string{
		"2024-07-20T09:30:00.000+02:00",
		"2024-07-20T09:30:00Z",
		"2024-07-20T09:30:00",
		"2024-07-20",
	}
	for _, in := range inputs {
		got, err := ParseTime(in)
		if err != nil {
			t.Errorf("ParseTime(%q) failed: %v", in, err)
			continue
		}
		if got.Year() != 2024 || got.Month() != 7 || got.Day() != 20 {
			t.Errorf("ParseTime(%q) = %v", in, got)
		}
	}
	if _, err := ParseTime("20/07/2024"); err == nil {
		t.Error("Expected error for unsupported layout")
	}
}

func TestSplitIncluded_IgnoresOtherTypes(t *testing.T) {
	people, statuses, err := SplitIncluded([]Resource{
		{ID: "1", Type: "people", Attributes: json.RawMessage(`{"first_name": " Ana "}`)},
		{ID: "2", Type: "tasks"},
		{ID: "3", Type: "workflow_statuses", Attributes: json.RawMessage(`{"name": "Complete", "category_id": 3}`)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(people) != 1 || people[0].FirstName != "Ana" {
		t.Errorf("Expected trimmed person Ana, got %+v", people)
	}
	if len(statuses) != 1 || statuses[0].CategoryID != 3 {
		t.Errorf("Expected closed status, got %+v", statuses)
	}
}
