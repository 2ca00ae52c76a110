package report

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/stats"
	"sprint-pulse/internal/visuals"
)

// Service builds reports for the consumer surfaces. Each call is an independent fetch-and-
// compute run.
type Service struct {
	client   productive.Client
	loader   *Loader
	defaults Options
	charts   bool
}

func NewService(client productive.Client, defaults Options, charts bool) *Service {
	return &Service{
		client:   client,
		loader:   NewLoader(client),
		defaults: defaults,
		charts:   charts,
	}
}

// Client exposes the upstream client for listing operations.
func (s *Service) Client() productive.Client {
	return s.client
}

// Defaults returns a copy of the service-wide options for per-request overrides.
func (s *Service) Defaults() Options {
	return s.defaults
}

// SprintRisk is the capacity risk view of one sprint.
type SprintRisk struct {
	TaskList productive.TaskList `json:"task_list"`
	Window   *stats.SprintWindow `json:"window,omitempty"`
	Today    string              `json:"today"`
	Risk     stats.RiskReport    `json:"risk"`
	Chart    string              `json:"chart,omitempty"`
}

// Sprint loads one task list and builds its current-sprint report.
func (s *Service) Sprint(ctx context.Context, taskListID string, opts Options) (*SprintReport, error) {
	start := time.Now()
	snap, err := s.loader.LoadSprint(ctx, taskListID)
	if err != nil {
		log.Error().Err(err).Str("task_list", taskListID).Msg("Sprint load failed")
		return nil, err
	}

	r := BuildSprintReport(snap, opts)
	if s.charts {
		r.AttachCharts()
	}
	log.Info().
		Str("task_list", taskListID).
		Str("sprint", r.TaskList.Name).
		Int("tasks", len(snap.Tasks)).
		Dur("took", time.Since(start)).
		Msg("Sprint report built")
	return r, nil
}

// History loads several task lists in parallel and builds the multi-sprint report.
func (s *Service) History(ctx context.Context, taskListIDs []string, opts Options) (*HistoryReport, error) {
	start := time.Now()
	opts = opts.normalized()
	snaps, err := s.loader.LoadSprints(ctx, taskListIDs, opts.MaxParallelSprints)
	if err != nil {
		log.Error().Err(err).Strs("task_lists", taskListIDs).Msg("History load failed")
		return nil, err
	}

	r := BuildHistoryReport(snaps, opts)
	if s.charts {
		r.AttachCharts()
	}
	log.Info().
		Int("sprints", len(snaps)).
		Dur("took", time.Since(start)).
		Msg("History report built")
	return r, nil
}

// Risk builds only the capacity risk section for one task list.
func (s *Service) Risk(ctx context.Context, taskListID string, opts Options) (*SprintRisk, error) {
	snap, err := s.loader.LoadSprint(ctx, taskListID)
	if err != nil {
		return nil, err
	}
	return BuildSprintRisk(snap, opts, s.charts), nil
}

// BuildSprintRisk runs the risk model over a snapshot.
func BuildSprintRisk(snap *Snapshot, opts Options, charts bool) *SprintRisk {
	opts = opts.normalized()
	w := opts.window(snap.TaskList.Name)
	var dates []time.Time
	if w != nil {
		dates = stats.BusinessDates(*w)
	}
	r := &SprintRisk{
		TaskList: snap.TaskList,
		Window:   w,
		Today:    stats.DayKey(opts.Today),
		Risk:     stats.ComputeRisk(snap.Tasks, stats.NewResolver(snap.Registry), dates, opts.Today, opts.CapacityPerDay),
	}
	if charts {
		r.Chart = visuals.GenerateRiskChart(r.Risk)
	}
	return r
}
