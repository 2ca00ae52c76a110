package stats

import (
	"sort"
	"time"

	"github.com/maruel/natural"

	"sprint-pulse/internal/productive"
)

const (
	DefaultCapacityPerDay = 6.0
	MinCapacityPerDay     = 1.0
	MaxCapacityPerDay     = 10.0

	warningLoadRatio  = 0.8
	criticalTaskShare = 0.5
	warningTaskShare  = 0.33
)

type RiskStatus string

const (
	RiskOK      RiskStatus = "ok"
	RiskWarning RiskStatus = "warning"
	RiskAtRisk  RiskStatus = "risk"
)

type TaskSeverity string

const (
	SeverityWarning  TaskSeverity = "warning"
	SeverityCritical TaskSeverity = "critical"
)

type DevRisk struct {
	Person            string     `json:"person"`
	RemainingHours    float64    `json:"remaining_hours"`
	CapacityLeftHours float64    `json:"capacity_left_hours"`
	Status            RiskStatus `json:"status"`
}

type TaskRisk struct {
	TaskID         string       `json:"task_id"`
	Title          string       `json:"title"`
	Person         string       `json:"person"`
	RemainingHours float64      `json:"remaining_hours"`
	Share          float64      `json:"share_of_dev_remaining"`
	Severity       TaskSeverity `json:"severity"`
}

type RiskReport struct {
	DaysLeft          int        `json:"days_left"`
	CapacityPerDay    float64    `json:"capacity_per_day_hours"`
	CapacityLeftHours float64    `json:"capacity_left_hours"`
	Devs              []DevRisk  `json:"devs"`
	Tasks             []TaskRisk `json:"tasks"`
}

// ClampCapacity keeps a capacity-per-day value inside the supported 1..10 range; 0 means default.
func ClampCapacity(v float64) float64 {
	switch {
	case v == 0:
		return DefaultCapacityPerDay
	case v < MinCapacityPerDay:
		return MinCapacityPerDay
	case v > MaxCapacityPerDay:
		return MaxCapacityPerDay
	}
	return v
}

// ClassifyLoad compares remaining work to capacity left. Both thresholds are inclusive.
func ClassifyLoad(remainingHours, capacityLeftHours float64) RiskStatus {
	switch {
	case remainingHours >= capacityLeftHours:
		return RiskAtRisk
	case remainingHours >= warningLoadRatio*capacityLeftHours:
		return RiskWarning
	}
	return RiskOK
}

// ClassifyShare returns the severity for a task's share of its dev's remaining work.
func ClassifyShare(share float64) (TaskSeverity, bool) {
	switch {
	case share >= criticalTaskShare:
		return SeverityCritical, true
	case share >= warningTaskShare:
		return SeverityWarning, true
	}
	return "", false
}

// ComputeRisk classifies each dev by remaining hours against the capacity left in the sprint,
// and lists the large tasks of devs already at risk. It only reads its inputs.
func ComputeRisk(tasks []productive.Task, res Resolver, dates []time.Time, today time.Time, capacityPerDay float64) RiskReport {
	daysLeft := DaysLeft(dates, today)
	capacityLeft := float64(daysLeft) * capacityPerDay

	type taskLoad struct {
		task  productive.Task
		hours float64
	}
	remaining := make(map[string]float64)
	byPerson := make(map[string][]taskLoad)
	for _, t := range tasks {
		person := res.ResponsibleOrAssignee(t)
		h := float64(t.RemainingTime) / 60
		remaining[person] += h
		byPerson[person] = append(byPerson[person], taskLoad{task: t, hours: h})
	}

	report := RiskReport{
		DaysLeft:          daysLeft,
		CapacityPerDay:    capacityPerDay,
		CapacityLeftHours: Round1(capacityLeft),
		Devs:              make([]DevRisk, 0, len(remaining)),
		Tasks:             []TaskRisk{},
	}

	for person, rem := range remaining {
		status := ClassifyLoad(rem, capacityLeft)
		report.Devs = append(report.Devs, DevRisk{
			Person:            person,
			RemainingHours:    Round1(rem),
			CapacityLeftHours: Round1(capacityLeft),
			Status:            status,
		})
		if status != RiskAtRisk {
			continue
		}
		for _, tl := range byPerson[person] {
			share := 0.0
			if rem != 0 {
				share = tl.hours / rem
			}
			sev, ok := ClassifyShare(share)
			if !ok {
				continue
			}
			report.Tasks = append(report.Tasks, TaskRisk{
				TaskID:         tl.task.ID,
				Title:          tl.task.DisplayTitle(),
				Person:         person,
				RemainingHours: Round1(tl.hours),
				Share:          Round2(share),
				Severity:       sev,
			})
		}
	}

	sort.Slice(report.Devs, func(i, j int) bool {
		if report.Devs[i].RemainingHours != report.Devs[j].RemainingHours {
			return report.Devs[i].RemainingHours > report.Devs[j].RemainingHours
		}
		return natural.Less(report.Devs[i].Person, report.Devs[j].Person)
	})
	sort.Slice(report.Tasks, func(i, j int) bool {
		if report.Tasks[i].Share != report.Tasks[j].Share {
			return report.Tasks[i].Share > report.Tasks[j].Share
		}
		return report.Tasks[i].TaskID < report.Tasks[j].TaskID
	})
	return report
}
