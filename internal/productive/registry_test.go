package productive

import (
	"reflect"
	"testing"
)

func TestNameRegistry_StatusName(t *testing.T) {
	nr := NewNameRegistry()
	nr.AddStatuses([]WorkflowStatus{
		{ID: "1", Name: "Not Started", CategoryID: 1},
		{ID: "2", Name: "In Progress", CategoryID: 2},
		{ID: "3", Name: "Complete", CategoryID: 3},
	})

	tests := []struct {
		id   string
		want string
	}{
		{"1", "Not Started"},
		{"2", "In Progress"},
		{"3", "Complete"},
		{"99", UnknownStatus},
		{"", UnknownStatus},
	}

	for _, tt := range tests {
		if got := nr.StatusName(tt.id); got != tt.want {
			t.Errorf("StatusName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNameRegistry_NilRegistry(t *testing.T) {
	var nr *NameRegistry
	if got := nr.StatusName("1"); got != UnknownStatus {
		t.Errorf("StatusName on nil registry = %q, want %q", got, UnknownStatus)
	}
	if _, ok := nr.PersonName("1"); ok {
		t.Error("PersonName on nil registry should not resolve")
	}
}

func TestNameRegistry_PersonDisplayName(t *testing.T) {
	nr := NewNameRegistry()
	nr.AddPeople([]Person{
		{ID: "1", FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com"},
		{ID: "2", LastName: "Novak", Email: "novak@example.com"},
		{ID: "3", Email: "only@example.com"},
		{ID: "4"},
	})

	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"1", "Ana", true},
		{"2", "Novak", true},
		{"3", "only@example.com", true},
		{"4", "", false},
		{"5", "", false},
	}

	for _, tt := range tests {
		got, ok := nr.PersonName(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PersonName(%q) = (%q, %v), want (%q, %v)", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNameRegistry_NoDowngrade(t *testing.T) {
	nr := NewNameRegistry()
	nr.AddPeople([]Person{{ID: "7", FirstName: "Mia", Email: "mia@example.com"}})
	// A later payload with only an email must not replace the first name.
	nr.AddPeople([]Person{{ID: "7", Email: "mia@example.com"}})

	if got, _ := nr.PersonName("7"); got != "Mia" {
		t.Errorf("Expected Mia after downgrade attempt, got %q", got)
	}

	// A more complete record upgrades.
	nr.AddPeople([]Person{{ID: "8", Email: "x@example.com"}})
	nr.AddPeople([]Person{{ID: "8", FirstName: "Xavi"}})
	if got, _ := nr.PersonName("8"); got != "Xavi" {
		t.Errorf("Expected Xavi after upgrade, got %q", got)
	}
}

func TestNameRegistry_MissingPeople(t *testing.T) {
	nr := NewNameRegistry()
	nr.AddPeople([]Person{{ID: "1", FirstName: "Ana"}, {ID: "2"}})

	got := nr.MissingPeople([]string{"3", "1", "2", "", "3"})
	want := []string{"2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingPeople = %v, want %v", got, want)
	}
}

func TestReferencedPeople(t *testing.T) {
	tasks := []Task{
		{ID: "t1", ResponsibleID: "10", AssigneeID: "11"},
		{ID: "t2", AssigneeID: "12"},
		{ID: "t3"},
	}
	got := ReferencedPeople(tasks)
	want := []string{"10", "11", "12"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReferencedPeople = %v, want %v", got, want)
	}
}

func TestNameRegistry_Merge(t *testing.T) {
	a := NewNameRegistry()
	a.AddPeople([]Person{{ID: "1", FirstName: "Ana"}})
	b := NewNameRegistry()
	b.AddPeople([]Person{{ID: "1", Email: "ana@example.com"}, {ID: "2", LastName: "Novak"}})
	b.AddStatuses([]WorkflowStatus{{ID: "5", Name: "Complete"}})

	a.Merge(b)
	a.Merge(nil)

	if got, _ := a.PersonName("1"); got != "Ana" {
		t.Errorf("Expected merge to keep Ana, got %q", got)
	}
	if got, _ := a.PersonName("2"); got != "Novak" {
		t.Errorf("Expected merged Novak, got %q", got)
	}
	if got := a.StatusName("5"); got != "Complete" {
		t.Errorf("Expected merged status, got %q", got)
	}
}
