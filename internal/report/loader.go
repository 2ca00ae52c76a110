package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/maruel/natural"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/stats"
)

// Snapshot is everything fetched for one task list in a single request.
type Snapshot struct {
	TaskList productive.TaskList
	Tasks    []productive.Task
	Entries  []productive.TimeEntry
	Registry *productive.NameRegistry
}

// Data converts the snapshot for the multi-sprint aggregations.
func (s *Snapshot) Data(window *stats.SprintWindow) stats.SprintData {
	return stats.SprintData{
		ID:      s.TaskList.ID,
		Name:    s.TaskList.Name,
		Window:  window,
		Tasks:   s.Tasks,
		Entries: s.Entries,
	}
}

// Loader fetches snapshots from Productive. Nothing is cached between calls.
type Loader struct {
	client productive.Client
}

func NewLoader(client productive.Client) *Loader {
	return &Loader{client: client}
}

// LoadSprint runs the fetch cycle for a single task list.
func (l *Loader) LoadSprint(ctx context.Context, taskListID string) (*Snapshot, error) {
	if taskListID == "" {
		return nil, fmt.Errorf("%w: task list id is required", ErrInvalidInput)
	}
	snaps, err := l.LoadSprints(ctx, []string{taskListID}, 1)
	if err != nil {
		return nil, err
	}
	return snaps[0], nil
}

// LoadSprints fetches task lists. Metadata for all of them is one request made alongside the
// per-sprint cycles, which run in parallel up to limit. Within a cycle tasks come first, then
// time entries and unresolved people concurrently. Any upstream failure aborts the whole load.
// The result is ordered by natural sprint name.
func (l *Loader) LoadSprints(ctx context.Context, taskListIDs []string, limit int) ([]*Snapshot, error) {
	ids := dedupe(taskListIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one task list id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultMaxParallelSprints
	}

	var lists []productive.TaskList
	snaps := make([]*Snapshot, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit + 1)
	g.Go(func() error {
		var err error
		lists, err = l.client.GetTaskLists(gctx, ids)
		return err
	})
	for i, id := range ids {
		g.Go(func() error {
			snap, err := l.loadContents(gctx, id)
			if err != nil {
				return err
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		snaps[i].TaskList = pickTaskList(lists, id)
	}
	sortSnapshots(snaps)
	disambiguateNames(snaps)
	return snaps, nil
}

func (l *Loader) loadContents(ctx context.Context, taskListID string) (*Snapshot, error) {
	batch, err := l.client.ListTasks(ctx, taskListID)
	if err != nil {
		return nil, err
	}

	reg := productive.NewNameRegistry()
	reg.AddPeople(batch.People)
	reg.AddStatuses(batch.Statuses)

	taskIDs := make([]string, 0, len(batch.Tasks))
	for _, t := range batch.Tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	missing := reg.MissingPeople(productive.ReferencedPeople(batch.Tasks))

	var (
		entries *productive.TimeEntryBatch
		people  []productive.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = l.client.ListTimeEntries(gctx, taskIDs)
		return err
	})
	g.Go(func() error {
		var err error
		people, err = l.client.GetPeople(gctx, missing)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Tasks: batch.Tasks, Registry: reg}
	if entries != nil {
		snap.Entries = entries.Entries
		reg.AddPeople(entries.People)
	}
	reg.AddPeople(people)

	log.Debug().
		Str("task_list", taskListID).
		Int("tasks", len(snap.Tasks)).
		Int("entries", len(snap.Entries)).
		Int("supplemental_people", len(missing)).
		Msg("Sprint data loaded")
	return snap, nil
}

// pickTaskList finds id in lists, or synthesizes a placeholder name.
func pickTaskList(lists []productive.TaskList, id string) productive.TaskList {
	for _, tl := range lists {
		if tl.ID == id {
			if tl.Name == "" {
				tl.Name = "Task list #" + id
			}
			return tl
		}
	}
	return productive.TaskList{ID: id, Name: "Task list #" + id}
}

func sortSnapshots(snaps []*Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		a, b := snaps[i].TaskList, snaps[j].TaskList
		if a.Name == b.Name {
			return a.ID < b.ID
		}
		return natural.Less(a.Name, b.Name)
	})
}

// disambiguateNames suffixes repeated sprint names with their id so per-sprint columns stay
// distinct.
func disambiguateNames(snaps []*Snapshot) {
	count := make(map[string]int)
	for _, s := range snaps {
		count[s.TaskList.Name]++
	}
	for _, s := range snaps {
		if count[s.TaskList.Name] > 1 {
			s.TaskList.Name = fmt.Sprintf("%s (#%s)", s.TaskList.Name, s.TaskList.ID)
		}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
