package stats

import (
	"math"
	"sort"

	"github.com/maruel/natural"
)

// AccuracySplit divides a person's sprint into worked-within-estimate, unfinished estimate, and
// work beyond the estimate. All parts are non-negative minutes.
type AccuracySplit struct {
	Worked    int `json:"worked_minutes"`
	Remaining int `json:"remaining_minutes"`
	Overrun   int `json:"overrun_minutes"`
}

func SplitAccuracy(worked, estimate int) AccuracySplit {
	worked, estimate = clampZero(worked), clampZero(estimate)
	return AccuracySplit{
		Worked:    min(worked, estimate),
		Remaining: max(estimate-worked, 0),
		Overrun:   max(worked-estimate, 0),
	}
}

// AccuracySample is one (person, sprint) observation.
type AccuracySample struct {
	Sprint   string
	Estimate int
	Worked   int
}

// PersonAccuracy is the mean capped accuracy across sprints with a nonzero estimate.
type PersonAccuracy struct {
	Person     string  `json:"person"`
	AveragePct float64 `json:"average_pct"`
	Sprints    int     `json:"sprints"`
}

// AverageAccuracy averages min(worked, estimate)/estimate per person and sorts by distance
// from 100%, ties broken by name. People with no estimated sprint are omitted.
func AverageAccuracy(samples map[string][]AccuracySample) []PersonAccuracy {
	var out []PersonAccuracy
	for person, ss := range samples {
		sum, n := 0.0, 0
		for _, s := range ss {
			if s.Estimate <= 0 {
				continue
			}
			sum += float64(min(clampZero(s.Worked), s.Estimate)) / float64(s.Estimate)
			n++
		}
		if n == 0 {
			continue
		}
		out = append(out, PersonAccuracy{
			Person:     person,
			AveragePct: Round1(sum / float64(n) * 100),
			Sprints:    n,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := math.Abs(out[i].AveragePct-100), math.Abs(out[j].AveragePct-100)
		if di != dj {
			return di < dj
		}
		return natural.Less(out[i].Person, out[j].Person)
	})
	return out
}
