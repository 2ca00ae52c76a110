package report

import (
	"time"

	"sprint-pulse/internal/stats"
)

// DefaultMaxParallelSprints bounds concurrent per-sprint fetch cycles.
const DefaultMaxParallelSprints = 4

// Options carry the knobs shared by every report built in one request.
type Options struct {
	// Today anchors days-left, elapsed days and the actual burndown line. Zero means now.
	Today time.Time
	// ReferenceYear is the year sprint names are parsed against. Zero means Today's year.
	ReferenceYear int
	WrapDays      int

	Mode           stats.BurndownMode
	CapacityPerDay float64

	// CountCompleteAsDone counts CompleteStatuses as done in the task KPI and hides them from
	// the remaining-by-status table.
	CountCompleteAsDone bool
	CompleteStatuses    []string
	ClosedCategory      int
	StatusOrder         stats.StatusOrder

	MaxParallelSprints int
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{
		WrapDays:            stats.DefaultWrapDays,
		Mode:                stats.ModeSprint,
		CapacityPerDay:      stats.DefaultCapacityPerDay,
		CountCompleteAsDone: true,
		CompleteStatuses:    stats.DefaultCompleteStatuses,
		ClosedCategory:      stats.ClosedCategoryID,
		StatusOrder:         stats.DefaultStatusOrder(),
		MaxParallelSprints:  DefaultMaxParallelSprints,
	}
}

// normalized fills zero values so callers may pass a partially populated Options.
func (o Options) normalized() Options {
	if o.Today.IsZero() {
		o.Today = time.Now()
	}
	o.Today = stats.SnapToDay(o.Today)
	if o.ReferenceYear == 0 {
		o.ReferenceYear = o.Today.Year()
	}
	if o.WrapDays <= 0 {
		o.WrapDays = stats.DefaultWrapDays
	}
	if o.Mode == "" {
		o.Mode = stats.ModeSprint
	}
	o.CapacityPerDay = stats.ClampCapacity(o.CapacityPerDay)
	if o.ClosedCategory == 0 {
		o.ClosedCategory = stats.ClosedCategoryID
	}
	if len(o.StatusOrder.Canonical) == 0 && o.StatusOrder.Overflow == "" {
		o.StatusOrder = stats.DefaultStatusOrder()
	}
	if o.CompleteStatuses == nil {
		o.CompleteStatuses = stats.DefaultCompleteStatuses
	}
	if o.MaxParallelSprints <= 0 {
		o.MaxParallelSprints = DefaultMaxParallelSprints
	}
	return o
}

func (o Options) window(name string) *stats.SprintWindow {
	w, ok := stats.ParseWindow(name, o.ReferenceYear, o.WrapDays)
	if !ok {
		return nil
	}
	return &w
}
