package productive

import (
	"bytes"
	"encoding/json"
)

// Document is the top-level JSON:API response envelope.
type Document struct {
	Data     []Resource `json:"data"`
	Included []Resource `json:"included,omitempty"`
}

// Resource is a single JSON:API record. Attributes are decoded lazily per type.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Relationship holds a to-one linkage. To-many and null linkages decode to a nil Data.
type Relationship struct {
	Data *ResourceIdentifier `json:"-"`
}

type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (r *Relationship) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d := bytes.TrimSpace(raw.Data)
	if len(d) == 0 || d[0] != '{' {
		r.Data = nil
		return nil
	}
	var id ResourceIdentifier
	if err := json.Unmarshal(d, &id); err != nil {
		return err
	}
	r.Data = &id
	return nil
}

func (r Relationship) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Data *ResourceIdentifier `json:"data"`
	}{r.Data})
}

// RelationshipID returns the linked id, if the relationship is present and non-empty.
func (r Resource) RelationshipID(name string) (string, bool) {
	rel, ok := r.Relationships[name]
	if !ok || rel.Data == nil || rel.Data.ID == "" {
		return "", false
	}
	return rel.Data.ID, true
}

type taskAttributes struct {
	Title           string         `json:"title"`
	InitialEstimate *float64       `json:"initial_estimate"`
	RemainingTime   *float64       `json:"remaining_time"`
	CreatedAt       string         `json:"created_at"`
	CustomFields    map[string]any `json:"custom_fields"`
}

type timeEntryAttributes struct {
	Date   string   `json:"date"`
	Time   *float64 `json:"time"`
	TaskID any      `json:"task_id"`
}

type personAttributes struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type workflowStatusAttributes struct {
	Name       string `json:"name"`
	CategoryID *int   `json:"category_id"`
}

type namedAttributes struct {
	Name string `json:"name"`
}
