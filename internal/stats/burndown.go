package stats

import (
	"fmt"
	"time"
)

// BurndownMode selects which worked minutes feed the actual line.
type BurndownMode string

const (
	// ModeSprint starts from the full estimate and burns sprint-window work only.
	ModeSprint BurndownMode = "sprint"
	// ModeTotal subtracts work logged before the sprint began from the starting estimate.
	ModeTotal BurndownMode = "total"
)

// ParseBurndownMode accepts "sprint" (default when empty) or "total".
func ParseBurndownMode(s string) (BurndownMode, error) {
	switch BurndownMode(s) {
	case "", ModeSprint:
		return ModeSprint, nil
	case ModeTotal:
		return ModeTotal, nil
	}
	return "", fmt.Errorf("unknown burndown mode %q (want sprint or total)", s)
}

type BurndownInput struct {
	Mode              BurndownMode
	EstimatedMinutes  int
	Dates             []time.Time
	WorkedByDate      map[string]int
	WorkedBeforeStart int // ModeTotal only
	Today             time.Time
}

// BurndownPoint is one business date. Actual is nil for dates after today.
type BurndownPoint struct {
	Date      string   `json:"date"`
	Estimated float64  `json:"estimated"`
	Actual    *float64 `json:"actual"`
}

// Burndown holds minute-valued points plus the axis floor.
type Burndown struct {
	Mode      BurndownMode    `json:"mode"`
	Points    []BurndownPoint `json:"points"`
	Floor     float64         `json:"floor"`
	AutoScale bool            `json:"auto_scale"`
}

// ComputeBurndown builds the ideal and actual remaining series in minutes.
func ComputeBurndown(in BurndownInput) Burndown {
	est := float64(clampZero(in.EstimatedMinutes))
	n := len(in.Dates)
	today := SnapToDay(in.Today)

	remaining := est
	if in.Mode == ModeTotal {
		remaining = est - float64(clampZero(in.WorkedBeforeStart))
		if remaining < 0 {
			remaining = 0
		}
	}

	b := Burndown{Mode: in.Mode, Points: make([]BurndownPoint, 0, n)}
	if b.Mode == "" {
		b.Mode = ModeSprint
	}

	floor, plotted := 0.0, false
	for i, d := range in.Dates {
		ideal := est
		if n > 1 {
			ideal = est - float64(i)*est/float64(n-1)
		}
		p := BurndownPoint{Date: DayKey(d), Estimated: ideal}

		if !d.After(today) {
			remaining -= float64(in.WorkedByDate[DayKey(d)])
			if remaining < 0 {
				remaining = 0
			}
			v := remaining
			p.Actual = &v
			if !plotted || v < floor {
				floor = v
			}
			plotted = true
		}
		b.Points = append(b.Points, p)
	}

	b.Floor = floor
	b.AutoScale = floor <= 0
	return b
}

// BurndownRow is a burndown point in hours for chart consumers.
type BurndownRow struct {
	Date      string   `json:"date"`
	Estimated float64  `json:"estimated"`
	Actual    *float64 `json:"actual,omitempty"`
}

// Rows converts the series to hours.
func (b Burndown) Rows() []BurndownRow {
	rows := make([]BurndownRow, 0, len(b.Points))
	for _, p := range b.Points {
		r := BurndownRow{Date: p.Date, Estimated: toHoursF(p.Estimated)}
		if p.Actual != nil {
			h := toHoursF(*p.Actual)
			r.Actual = &h
		}
		rows = append(rows, r)
	}
	return rows
}
