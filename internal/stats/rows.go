package stats

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// DefaultStatusNames is the canonical column order for workflow statuses.
var DefaultStatusNames = []string{
	"Not Started",
	"UI/UX Completed",
	"In Progress",
	"Questions / Blocked",
	"UI/UX in Progress",
	"Initial Code Complete",
	"Pending PR Review",
	"PR Approved",
	"Ready for Kalon QA",
	"Ready for Client Review",
	"In Client Review",
	"Approved for Production",
	"Complete",
	"Not applicable",
}

// DefaultOverflowStatus always sorts last.
const DefaultOverflowStatus = "Spillover"

// StatusOrder orders status columns: canonical names first, then any others alphabetically,
// then the overflow status.
type StatusOrder struct {
	Canonical []string
	Overflow  string
}

func DefaultStatusOrder() StatusOrder {
	return StatusOrder{Canonical: append([]string(nil), DefaultStatusNames...), Overflow: DefaultOverflowStatus}
}

// Sort returns a sorted copy of statuses.
func (o StatusOrder) Sort(statuses []string) []string {
	rank := make(map[string]int, len(o.Canonical))
	for i, s := range o.Canonical {
		if _, dup := rank[s]; !dup {
			rank[s] = i
		}
	}
	weight := func(s string) int {
		switch {
		case o.Overflow != "" && s == o.Overflow:
			return len(o.Canonical) + 1
		case hasRank(rank, s):
			return rank[s]
		default:
			return len(o.Canonical)
		}
	}

	out := append([]string(nil), statuses...)
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := weight(out[i]), weight(out[j])
		if wi != wj {
			return wi < wj
		}
		return out[i] < out[j]
	})
	return out
}

func hasRank(rank map[string]int, s string) bool {
	_, ok := rank[s]
	return ok
}

// SeriesSeparator joins a category and a series name in wide-row keys.
const SeriesSeparator = "::"

// SeriesKey builds "<category>::<series>".
func SeriesKey(category, series string) string {
	return category + SeriesSeparator + series
}

// SplitSeriesKey is the inverse of SeriesKey.
func SplitSeriesKey(key string) (category, series string, ok bool) {
	i := strings.LastIndex(key, SeriesSeparator)
	if i < 0 {
		return key, "", false
	}
	return key[:i], key[i+len(SeriesSeparator):], true
}

// WideRow is one chart category with namespaced numeric columns. It marshals flat:
// {"<LabelKey>": Label, "<column>": value, ..., "counts": {...}}.
type WideRow struct {
	LabelKey string
	Label    string
	Values   map[string]float64
	Counts   map[string]int
}

func NewWideRow(labelKey, label string) WideRow {
	return WideRow{LabelKey: labelKey, Label: label, Values: make(map[string]float64)}
}

func (r WideRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Values)+2)
	for k, v := range r.Values {
		m[k] = v
	}
	if r.Counts != nil {
		m["counts"] = r.Counts
	}
	key := r.LabelKey
	if key == "" {
		key = "label"
	}
	m[key] = r.Label
	return json.Marshal(m)
}

// Columns returns the union of value keys across rows, sorted naturally.
func Columns(rows []WideRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		for k := range r.Values {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return natural.Less(out[i], out[j]) })
	return out
}

// SortRowsByLabel orders rows naturally by label ("Sprint 2" before "Sprint 10").
func SortRowsByLabel(rows []WideRow) {
	sort.SliceStable(rows, func(i, j int) bool { return natural.Less(rows[i].Label, rows[j].Label) })
}

// SortNatural sorts names in place with numeric-aware comparison.
func SortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
}
