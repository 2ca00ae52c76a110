package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"sprint-pulse/internal/productive"
)

type GeneratorConfig struct {
	Seed           int64
	Sprints        int
	TasksPerSprint int
	People         int
	// Now places the last sprint: it runs through the week of Now and the one after.
	Now time.Time
}

// Dataset holds every generated JSON:API record, keyed by resource type.
type Dataset struct {
	Collections map[string][]productive.Resource
	index       map[string]map[string]productive.Resource
}

const (
	projectID = "1001"
	boardID   = "2001"
	folderID  = "3001"
	sprintLen = 11 // days from the first Monday to the second Friday
)

type status struct {
	id       string
	name     string
	category int
}

var statuses = []status{
	{"501", "Not Started", 1},
	{"502", "In Progress", 2},
	{"503", "Questions / Blocked", 2},
	{"504", "Pending PR Review", 2},
	{"505", "Ready for Client Review", 2},
	{"506", "In Client Review", 2},
	{"507", "Approved for Production", 3},
	{"508", "Complete", 3},
}

var firstNames = []string{"Ana", "Ben", "Carla", "Dino", "Ema", "Filip", "Goran", "Hana", "Ivo", "Jana"}
var lastNames = []string{"Horvat", "Kovač", "Babić", "Marić", "Novak", "Jurić", "Knežević", "Vuković"}

// Generate builds a deterministic dataset for cfg. The same seed and Now yield identical output.
func Generate(cfg GeneratorConfig) *Dataset {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Sprints <= 0 {
		cfg.Sprints = 4
	}
	if cfg.TasksPerSprint <= 0 {
		cfg.TasksPerSprint = 12
	}
	if cfg.People <= 0 {
		cfg.People = 5
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	today := time.Date(cfg.Now.Year(), cfg.Now.Month(), cfg.Now.Day(), 0, 0, 0, 0, time.UTC)

	ds := &Dataset{Collections: map[string][]productive.Resource{}}

	ds.add(resource("projects", projectID, map[string]any{"name": "Mock Client Portal", "project_type_id": 2, "status": 1}, nil))
	ds.add(resource("boards", boardID, map[string]any{"name": "Development", "status": 1}, rels{"project": projectID}))
	ds.add(resource("folders", folderID, map[string]any{"name": "Sprints"}, rels{"project": projectID}))

	for _, s := range statuses {
		ds.add(resource("workflow_statuses", s.id, map[string]any{"name": s.name, "category_id": s.category}, nil))
	}

	people := make([]string, cfg.People)
	for i := range people {
		id := fmt.Sprintf("%d", 700+i+1)
		people[i] = id
		ds.add(resource("people", id, map[string]any{
			"first_name": firstNames[i%len(firstNames)],
			"last_name":  lastNames[(i/len(firstNames)+i)%len(lastNames)],
			"email":      fmt.Sprintf("dev%d@example.com", i+1),
		}, nil))
	}

	// The current sprint starts on the Monday of this week or the previous one.
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	if rng.Intn(2) == 1 {
		monday = monday.AddDate(0, 0, -7)
	}

	taskSeq, entrySeq := 10000, 50000
	for i := 0; i < cfg.Sprints; i++ {
		start := monday.AddDate(0, 0, -14*(cfg.Sprints-1-i))
		end := start.AddDate(0, 0, sprintLen)
		listID := fmt.Sprintf("%d", 4001+i)
		ds.add(resource("task_lists", listID, map[string]any{
			"name":   fmt.Sprintf("Sprint %s - %s", start.Format("02.01"), end.Format("02.01")),
			"status": 1,
		}, rels{"project": projectID, "board": boardID, "folder": folderID}))

		current := i == cfg.Sprints-1
		for j := 0; j < cfg.TasksPerSprint; j++ {
			taskSeq++
			taskID := fmt.Sprintf("%d", taskSeq)
			owner := people[rng.Intn(len(people))]
			estimate := 30 * (2 + rng.Intn(31)) // 1h .. 16h

			created := start.AddDate(0, 0, -1-rng.Intn(5))
			if rng.Float64() < 0.25 {
				created = start.AddDate(0, 0, 1+rng.Intn(sprintLen-1))
			}
			if created.After(today) {
				created = today
			}

			// Past sprints land near their estimate; the current one is partially burned.
			target := float64(estimate) * (0.6 + rng.Float64()*0.7)
			if current {
				elapsed := float64(today.Sub(start).Hours()/24+1) / float64(sprintLen+1)
				target *= clamp(elapsed, 0, 1)
			}

			logged := 0
			for d := 0; d <= sprintLen && logged < int(target); d++ {
				day := start.AddDate(0, 0, d)
				if day.After(today) || day.Before(created) {
					continue
				}
				if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
					continue
				}
				if rng.Float64() < 0.45 {
					continue
				}
				mins := 30 * (1 + rng.Intn(6))
				person := owner
				if rng.Float64() < 0.15 {
					person = people[rng.Intn(len(people))]
				}
				entrySeq++
				ds.add(resource("time_entries", fmt.Sprintf("%d", entrySeq), map[string]any{
					"date": day.Format("2006-01-02"),
					"time": mins,
				}, rels{"person": person, "task": taskID}))
				logged += mins
			}

			st := pickStatus(rng, current, logged, estimate)
			remaining := estimate - logged
			if st.category == 3 && remaining > 0 {
				remaining = 0
			}

			// Some tasks are owned through the custom field without an assignee.
			taskRels := rels{"task_list": listID, "workflow_status": st.id, "project": projectID}
			if rng.Float64() < 0.8 {
				taskRels["assignee"] = owner
			}
			ds.add(resource("tasks", taskID, map[string]any{
				"title":            fmt.Sprintf("Task %d: %s", taskSeq, taskTopics[rng.Intn(len(taskTopics))]),
				"initial_estimate": estimate,
				"remaining_time":   remaining,
				"created_at":       created.Add(9 * time.Hour).Format(time.RFC3339),
				"custom_fields":    map[string]any{productive.DefaultResponsibleFieldID: owner},
			}, taskRels))
		}
	}

	return ds
}

var taskTopics = []string{
	"Login form validation", "Invoice PDF export", "Search filters", "Dashboard widgets",
	"Password reset flow", "Notification settings", "Audit log", "CSV import",
	"Role permissions", "Mobile navigation", "API rate limiting", "Onboarding tour",
}

func pickStatus(rng *rand.Rand, current bool, logged, estimate int) status {
	if !current {
		if rng.Float64() < 0.85 {
			return statuses[6+rng.Intn(2)]
		}
		return statuses[5]
	}
	switch {
	case logged == 0:
		return statuses[0]
	case logged >= estimate:
		return statuses[3+rng.Intn(5)]
	default:
		return statuses[1+rng.Intn(4)]
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type rels map[string]string

var relationshipTypes = map[string]string{
	"project":         "projects",
	"board":           "boards",
	"folder":          "folders",
	"task_list":       "task_lists",
	"task":            "tasks",
	"workflow_status": "workflow_statuses",
	"assignee":        "people",
	"person":          "people",
}

func resource(typ, id string, attrs map[string]any, r rels) productive.Resource {
	raw, _ := json.Marshal(attrs)
	res := productive.Resource{ID: id, Type: typ, Attributes: raw}
	if len(r) > 0 {
		res.Relationships = make(map[string]productive.Relationship, len(r))
		for name, target := range r {
			res.Relationships[name] = productive.Relationship{
				Data: &productive.ResourceIdentifier{ID: target, Type: relationshipTypes[name]},
			}
		}
	}
	return res
}

func (ds *Dataset) add(r productive.Resource) {
	ds.Collections[r.Type] = append(ds.Collections[r.Type], r)
	if ds.index == nil {
		ds.index = map[string]map[string]productive.Resource{}
	}
	if ds.index[r.Type] == nil {
		ds.index[r.Type] = map[string]productive.Resource{}
	}
	ds.index[r.Type][r.ID] = r
}

// Lookup finds a record by type and id.
func (ds *Dataset) Lookup(typ, id string) (productive.Resource, bool) {
	r, ok := ds.index[typ][id]
	return r, ok
}

// TaskListIDs returns every generated sprint id in creation order.
func (ds *Dataset) TaskListIDs() []string {
	var ids []string
	for _, r := range ds.Collections["task_lists"] {
		ids = append(ids, r.ID)
	}
	return ids
}

// Save writes one JSON:API document per collection into outDir.
func Save(outDir string, ds *Dataset) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	types := make([]string, 0, len(ds.Collections))
	for typ := range ds.Collections {
		types = append(types, typ)
	}
	sort.Strings(types)

	for _, typ := range types {
		f, err := os.Create(filepath.Join(outDir, typ+".json"))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(productive.Document{Data: ds.Collections[typ]})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", typ, err)
		}
	}
	return nil
}
