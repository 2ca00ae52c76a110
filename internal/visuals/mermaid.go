package visuals

import (
	"fmt"
	"math"
	"strings"

	"sprint-pulse/internal/stats"
)

// maxPoints keeps x axes readable; Mermaid's xychart starts overlapping labels beyond this.
const maxPoints = 40

func quote(labels []string) string {
	q := make([]string, len(labels))
	for i, l := range labels {
		q[i] = fmt.Sprintf("%q", strings.ReplaceAll(l, `"`, "'"))
	}
	return strings.Join(q, ", ")
}

func series(values []float64) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = fmt.Sprintf("%.1f", v)
	}
	return strings.Join(s, ", ")
}

func axisMax(values ...[]float64) int {
	maxVal := 0.0
	for _, vs := range values {
		for _, v := range vs {
			maxVal = math.Max(maxVal, v)
		}
	}
	return int(math.Ceil(math.Max(1, maxVal*1.1)))
}

func begin(sb *strings.Builder, title string) {
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %q\n", title))
}

// GenerateBurndownChart draws the ideal and actual remaining hours. The actual line stops at
// the last business date on or before today.
func GenerateBurndownChart(b stats.Burndown) string {
	rows := b.Rows()
	if len(rows) == 0 {
		return ""
	}

	var labels []string
	var ideal, actual []float64
	for _, r := range rows {
		labels = append(labels, r.Date[5:])
		ideal = append(ideal, r.Estimated)
		if r.Actual != nil {
			actual = append(actual, *r.Actual)
		}
	}

	// A positive floor lifts the axis to the lowest actual value; otherwise it starts at zero.
	floor := 0
	if !b.AutoScale {
		floor = int(math.Floor(b.Floor / 60))
	}

	var sb strings.Builder
	begin(&sb, fmt.Sprintf("Burndown (%s)", b.Mode))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", quote(labels)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Remaining (h)\" %d --> %d\n", floor, axisMax(ideal, actual)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(ideal)))
	if len(actual) > 0 {
		sb.WriteString(fmt.Sprintf("    line [%s]\n", series(actual)))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateTeamVelocityChart shows planned and completed hours per sprint, with scope change as
// a line.
func GenerateTeamVelocityChart(points []stats.VelocityPoint) string {
	if len(points) == 0 {
		return ""
	}
	if len(points) > maxPoints {
		points = points[len(points)-maxPoints:]
	}

	var labels []string
	var planned, added, completed []float64
	for _, p := range points {
		labels = append(labels, p.Sprint)
		planned = append(planned, p.PlannedHours)
		added = append(added, p.ScopeChangeHours)
		completed = append(completed, p.CompletedHours)
	}

	var sb strings.Builder
	begin(&sb, "Team Velocity")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", quote(labels)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Hours\" 0 --> %d\n", axisMax(planned, added, completed)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(planned)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(completed)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(added)))
	sb.WriteString("```")
	return sb.String()
}

// GeneratePersonVelocityChart draws one line per person across sprints.
func GeneratePersonVelocityChart(velocities []stats.PersonVelocity, sprints []string) string {
	if len(velocities) == 0 || len(sprints) == 0 {
		return ""
	}

	lines := make([][]float64, 0, len(velocities))
	for _, v := range velocities {
		line := make([]float64, len(sprints))
		for i, s := range sprints {
			line[i] = v.Hours[s]
		}
		lines = append(lines, line)
	}

	var sb strings.Builder
	begin(&sb, "Velocity per Person")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", quote(sprints)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Hours\" 0 --> %d\n", axisMax(lines...)))
	for i, line := range lines {
		sb.WriteString(fmt.Sprintf("    %%%% %s\n", velocities[i].Person))
		sb.WriteString(fmt.Sprintf("    line [%s]\n", series(line)))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateBreakdownChart compares worked and remaining hours per status.
func GenerateBreakdownChart(buckets []stats.StatusBucket) string {
	if len(buckets) == 0 {
		return ""
	}

	var labels []string
	var worked, remaining []float64
	for _, b := range buckets {
		labels = append(labels, b.Status)
		worked = append(worked, stats.ToHours(b.Worked))
		remaining = append(remaining, stats.ToHours(b.Remaining))
	}

	var sb strings.Builder
	begin(&sb, "Work by Status")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", quote(labels)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Hours\" 0 --> %d\n", axisMax(worked, remaining)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(worked)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(remaining)))
	sb.WriteString("```")
	return sb.String()
}

// GenerateAccuracyChart plots each person's average worked-to-estimate percentage against the
// 100% line.
func GenerateAccuracyChart(accuracy []stats.PersonAccuracy) string {
	if len(accuracy) == 0 {
		return ""
	}

	var labels []string
	var pct, target []float64
	for _, a := range accuracy {
		labels = append(labels, a.Person)
		pct = append(pct, a.AveragePct)
		target = append(target, 100)
	}

	var sb strings.Builder
	begin(&sb, "Estimation Accuracy (% of estimate worked)")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", quote(labels)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Percent\" 0 --> %d\n", axisMax(pct, target)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(pct)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(target)))
	sb.WriteString("```")
	return sb.String()
}

// GenerateRiskChart sets each dev's remaining hours against the capacity left.
func GenerateRiskChart(risk stats.RiskReport) string {
	if len(risk.Devs) == 0 {
		return ""
	}

	var labels []string
	var remaining, capacity []float64
	for _, d := range risk.Devs {
		labels = append(labels, d.Person)
		remaining = append(remaining, d.RemainingHours)
		capacity = append(capacity, d.CapacityLeftHours)
	}

	var sb strings.Builder
	begin(&sb, "Remaining vs Capacity Left")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", quote(labels)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Hours\" 0 --> %d\n", axisMax(remaining, capacity)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(remaining)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(capacity)))
	sb.WriteString("```")
	return sb.String()
}

// GenerateRemainingPie shares out positive remaining time by status.
func GenerateRemainingPie(rows []stats.RemainingByStatus) string {
	var sb strings.Builder
	n := 0
	for _, r := range rows {
		if r.RemainingMinutes <= 0 {
			continue
		}
		if n == 0 {
			sb.WriteString("```mermaid\n")
			sb.WriteString("pie title Remaining by Status (h)\n")
		}
		sb.WriteString(fmt.Sprintf("    %q : %.1f\n", r.Status, stats.ToHours(r.RemainingMinutes)))
		n++
	}
	if n == 0 {
		return ""
	}
	sb.WriteString("```")
	return sb.String()
}
