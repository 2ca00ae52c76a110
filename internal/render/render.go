// Package render prints reports for the terminal: indented JSON, Markdown, or boxed tables.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"sprint-pulse/internal/report"
	"sprint-pulse/internal/stats"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatMarkdown, FormatTable:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, markdown or table)", s)
}

// section is one titled table; notes render as a bullet list when there are no rows.
type section struct {
	title   string
	headers []string
	rows    [][]string
	notes   []string
}

type document struct {
	title    string
	summary  []string
	sections []section
	charts   map[string]string
}

func Sprint(w io.Writer, r *report.SprintReport, f Format) error {
	if f == FormatJSON {
		return writeJSON(w, r)
	}
	return write(w, sprintDocument(r), f)
}

func History(w io.Writer, r *report.HistoryReport, f Format) error {
	if f == FormatJSON {
		return writeJSON(w, r)
	}
	return write(w, historyDocument(r), f)
}

func Risk(w io.Writer, r *report.SprintRisk, f Format) error {
	if f == FormatJSON {
		return writeJSON(w, r)
	}
	doc := document{
		title:   r.TaskList.Name,
		summary: []string{windowLine(r.Window, r.Today, r.Risk.DaysLeft)},
		charts:  map[string]string{},
	}
	doc.sections = riskSections(r.Risk)
	if r.Chart != "" {
		doc.charts["risk"] = r.Chart
	}
	return write(w, doc, f)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sprintDocument(r *report.SprintReport) document {
	doc := document{
		title:   r.TaskList.Name,
		summary: []string{windowLine(r.Window, r.Today, r.DaysLeft)},
		charts:  r.Charts,
	}

	k := r.KPI
	doc.sections = append(doc.sections, section{
		title:   "Summary",
		headers: []string{"Metric", "Actual", "Total", "%"},
		rows: [][]string{
			{"Business days", num(k.Days.Actual, 0), num(k.Days.Total, 0), pct(k.Days.Percent)},
			{"Tasks done", num(k.Tasks.Actual, 0), num(k.Tasks.Total, 0), pct(k.Tasks.Percent)},
			{"Hours worked", hours(k.Hours.Actual), hours(k.Hours.Total), pct(k.Hours.Percent)},
		},
	}, section{
		title:   "Scope",
		headers: []string{"", "Hours", "Tasks"},
		rows: [][]string{
			{"Planned", hours(k.ScopeInitialHours), fmt.Sprint(r.Scope.InitialTasks)},
			{"Added", hours(k.ScopeAddedHours), fmt.Sprint(r.Scope.AddedTasks)},
		},
	})

	if len(r.Burndown.Rows) > 0 {
		bd := section{title: fmt.Sprintf("Burndown (%s)", r.Burndown.Mode), headers: []string{"Date", "Ideal (h)", "Actual (h)"}}
		for _, row := range r.Burndown.Rows {
			actual := ""
			if row.Actual != nil {
				actual = hours(*row.Actual)
			}
			bd.rows = append(bd.rows, []string{row.Date, hours(row.Estimated), actual})
		}
		doc.sections = append(doc.sections, bd)
	}

	doc.sections = append(doc.sections,
		effortSection("Effort (sprint)", r.EffortSprint),
		effortSection("Effort (total)", r.EffortTotal),
	)

	if len(r.Breakdown) > 0 {
		bs := section{title: "Breakdown by status", headers: []string{"Status", "Worked (h)", "Remaining (h)", "Tasks"}}
		for _, b := range r.Breakdown {
			bs.rows = append(bs.rows, []string{b.Status, minutes(b.Worked), minutes(b.Remaining), fmt.Sprint(b.Tasks)})
		}
		doc.sections = append(doc.sections, bs)
	}

	rs := section{title: "Remaining by status", headers: []string{"Status", "Tasks", "Remaining"}}
	for _, row := range r.RemainingByStatus {
		rs.rows = append(rs.rows, []string{row.Status, fmt.Sprint(row.TaskCount), row.Remaining})
	}
	doc.sections = append(doc.sections, rs)
	doc.sections = append(doc.sections, riskSections(r.Risk)...)

	if len(r.Warnings) > 0 {
		doc.sections = append(doc.sections, section{title: "Warnings", notes: r.Warnings})
	}
	return doc
}

func historyDocument(r *report.HistoryReport) document {
	doc := document{title: "Sprint history", charts: r.Charts}
	for _, s := range r.Sprints {
		line := s.Name
		if s.Window != nil {
			line += fmt.Sprintf(" (%s to %s)", s.Window.Start.Format("2006-01-02"), s.Window.End.Format("2006-01-02"))
		}
		doc.summary = append(doc.summary, line)
	}

	tv := section{title: "Team velocity", headers: []string{"Sprint", "Planned (h)", "Scope change (h)", "Completed (h)"}}
	for _, p := range r.TeamVelocity {
		tv.rows = append(tv.rows, []string{p.Sprint, hours(p.PlannedHours), hours(p.ScopeChangeHours), hours(p.CompletedHours)})
	}
	doc.sections = append(doc.sections, tv,
		wideSection("Velocity by person (h)", r.PersonVelocity),
	)

	acc := section{title: "Estimation accuracy", headers: []string{"Person", "Average", "Sprints"}}
	for _, a := range r.AccuracyAverages {
		acc.rows = append(acc.rows, []string{a.Person, pct(a.AveragePct), fmt.Sprint(a.Sprints)})
	}
	doc.sections = append(doc.sections, acc,
		wideSection("Accuracy by sprint (h)", r.Accuracy),
		wideSection("Breakdown by status (h)", r.Breakdown),
	)

	if len(r.Warnings) > 0 {
		doc.sections = append(doc.sections, section{title: "Warnings", notes: r.Warnings})
	}
	return doc
}

func riskSections(risk stats.RiskReport) []section {
	devs := section{
		title:   fmt.Sprintf("Capacity risk (%s h/day, %s h left each)", num(risk.CapacityPerDay, 1), hours(risk.CapacityLeftHours)),
		headers: []string{"Person", "Remaining (h)", "Status"},
	}
	for _, d := range risk.Devs {
		devs.rows = append(devs.rows, []string{d.Person, hours(d.RemainingHours), string(d.Status)})
	}
	tasks := section{title: "Tasks at risk", headers: []string{"Task", "Person", "Remaining (h)", "Share", "Severity"}}
	for _, t := range risk.Tasks {
		tasks.rows = append(tasks.rows, []string{t.Title, t.Person, hours(t.RemainingHours), pct(t.Share * 100), string(t.Severity)})
	}
	return []section{devs, tasks}
}

func effortSection(title string, rows []stats.EffortRow) section {
	s := section{title: title, headers: []string{"Person", "Estimate (h)", "Worked (h)", "Remaining (h)"}}
	for _, e := range rows {
		s.rows = append(s.rows, []string{e.Person, hours(e.Initial), hours(e.Worked), hours(e.Remaining)})
	}
	return s
}

// wideSection lays out wide rows with one column per value key.
func wideSection(title string, rows []stats.WideRow) section {
	cols := stats.Columns(rows)
	label := "label"
	if len(rows) > 0 && rows[0].LabelKey != "" {
		label = rows[0].LabelKey
	}
	s := section{title: title, headers: append([]string{label}, cols...)}
	for _, r := range rows {
		line := []string{r.Label}
		for _, c := range cols {
			v, ok := r.Values[c]
			if !ok {
				line = append(line, "")
				continue
			}
			line = append(line, hours(v))
		}
		s.rows = append(s.rows, line)
	}
	return s
}

func windowLine(w *stats.SprintWindow, today string, daysLeft int) string {
	if w == nil {
		return fmt.Sprintf("No date range in the sprint name. Today %s.", today)
	}
	return fmt.Sprintf("%s to %s. Today %s, %d business days left.",
		w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"), today, daysLeft)
}

func write(w io.Writer, doc document, f Format) error {
	var b strings.Builder
	switch f {
	case FormatMarkdown:
		writeMarkdown(&b, doc)
	case FormatTable:
		writeTables(&b, doc)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdown(b *strings.Builder, doc document) {
	fmt.Fprintf(b, "# %s\n\n", doc.title)
	for _, line := range doc.summary {
		fmt.Fprintf(b, "%s\n", line)
	}
	if len(doc.summary) > 0 {
		b.WriteString("\n")
	}

	for _, s := range doc.sections {
		fmt.Fprintf(b, "## %s\n\n", s.title)
		if len(s.notes) > 0 {
			for _, n := range s.notes {
				fmt.Fprintf(b, "- %s\n", n)
			}
			b.WriteString("\n")
			continue
		}
		if len(s.rows) == 0 {
			b.WriteString("_None._\n\n")
			continue
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(escapeCells(s.headers), " | "))
		b.WriteString("|" + strings.Repeat(" --- |", len(s.headers)) + "\n")
		for _, row := range s.rows {
			fmt.Fprintf(b, "| %s |\n", strings.Join(escapeCells(row), " | "))
		}
		b.WriteString("\n")
	}

	for _, name := range chartNames(doc.charts) {
		fmt.Fprintf(b, "## Chart: %s\n\n```mermaid\n%s\n```\n\n", name, strings.TrimRight(doc.charts[name], "\n"))
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func writeTables(b *strings.Builder, doc document) {
	b.WriteString(titleStyle.Render(doc.title) + "\n")
	for _, line := range doc.summary {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	for _, s := range doc.sections {
		b.WriteString(titleStyle.Render(s.title) + "\n")
		if len(s.notes) > 0 {
			for _, n := range s.notes {
				b.WriteString(noteStyle.Render("! "+n) + "\n")
			}
			b.WriteString("\n")
			continue
		}
		if len(s.rows) == 0 {
			b.WriteString("(none)\n\n")
			continue
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers(s.headers...).
			Rows(s.rows...)
		b.WriteString(t.Render() + "\n\n")
	}

	// Mermaid sources are listed by name only.
	if names := chartNames(doc.charts); len(names) > 0 {
		b.WriteString("Charts available with --format markdown: " + strings.Join(names, ", ") + "\n")
	}
}

func chartNames(charts map[string]string) []string {
	names := make([]string, 0, len(charts))
	for name, c := range charts {
		if c != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

func num(v float64, prec int) string {
	return fmt.Sprintf("%.*f", prec, v)
}

func hours(v float64) string {
	return num(v, 1)
}

func minutes(m int) string {
	return hours(float64(m) / 60)
}

func pct(v float64) string {
	return num(v, 0) + "%"
}
