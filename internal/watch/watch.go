// Package watch re-runs the capacity risk model on a schedule and logs callouts.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"sprint-pulse/internal/report"
	"sprint-pulse/internal/stats"
)

// DefaultSchedule is weekdays at 09:00.
const DefaultSchedule = "0 9 * * 1-5"

const runTimeout = 5 * time.Minute

type riskSource interface {
	Risk(ctx context.Context, taskListID string, opts report.Options) (*report.SprintRisk, error)
	Defaults() report.Options
}

// Watch evaluates risk for a fixed set of task lists.
type Watch struct {
	svc       riskSource
	taskLists []string
	c         *cron.Cron
}

// New builds a watch on schedule in loc. An empty schedule uses DefaultSchedule.
func New(svc riskSource, taskLists []string, schedule string, loc *time.Location) (*Watch, error) {
	if len(taskLists) == 0 {
		return nil, fmt.Errorf("risk watch needs at least one task list")
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	w := &Watch{svc: svc, taskLists: taskLists, c: c}
	if _, err := c.AddFunc(schedule, w.tick); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}
	return w, nil
}

func (w *Watch) Start() {
	log.Info().Strs("task_lists", w.taskLists).Msg("Risk watch started")
	w.c.Start()
}

// Stop halts the schedule and waits for a running evaluation to finish.
func (w *Watch) Stop() {
	<-w.c.Stop().Done()
}

func (w *Watch) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	w.RunOnce(ctx)
}

// Alert is one callout raised by a run.
type Alert struct {
	TaskListID string
	Sprint     string
	Person     string
	TaskID     string
	Level      string
	Hours      float64
}

// RunOnce evaluates every task list and returns the callouts it logged. A failing task list is
// logged and skipped.
func (w *Watch) RunOnce(ctx context.Context) []Alert {
	var alerts []Alert
	for _, id := range w.taskLists {
		r, err := w.svc.Risk(ctx, id, w.svc.Defaults())
		if err != nil {
			log.Error().Err(err).Str("task_list", id).Msg("watch: risk evaluation failed")
			continue
		}

		for _, d := range r.Risk.Devs {
			if d.Status != stats.RiskAtRisk {
				continue
			}
			alerts = append(alerts, Alert{TaskListID: id, Sprint: r.TaskList.Name, Person: d.Person, Level: string(d.Status), Hours: d.RemainingHours})
			log.Warn().
				Str("sprint", r.TaskList.Name).
				Str("person", d.Person).
				Float64("remaining_hours", d.RemainingHours).
				Float64("capacity_left_hours", d.CapacityLeftHours).
				Msg("watch: dev at risk")
		}
		for _, t := range r.Risk.Tasks {
			if t.Severity != stats.SeverityCritical {
				continue
			}
			alerts = append(alerts, Alert{TaskListID: id, Sprint: r.TaskList.Name, Person: t.Person, TaskID: t.TaskID, Level: string(t.Severity), Hours: t.RemainingHours})
			log.Warn().
				Str("sprint", r.TaskList.Name).
				Str("person", t.Person).
				Str("task", t.Title).
				Float64("share", t.Share).
				Msg("watch: critical task")
		}
		log.Info().Str("sprint", r.TaskList.Name).Int("days_left", r.Risk.DaysLeft).Msg("watch: sprint evaluated")
	}
	return alerts
}
