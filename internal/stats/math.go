package stats

import "math"

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToHours converts minutes to hours rounded to one decimal.
func ToHours(minutes int) float64 {
	return Round1(float64(minutes) / 60)
}

func toHoursF(minutes float64) float64 {
	return Round1(minutes / 60)
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
