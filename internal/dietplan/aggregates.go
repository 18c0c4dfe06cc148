package dietplan

import (
	"regexp"
	"strconv"
)

var weekdays = [7]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// DayName maps a 1-based plan day to its weekday, wrapping every seven days.
// Non-positive days have no weekday and yield "".
func DayName(day int) string {
	if day < 1 {
		return ""
	}
	return weekdays[(day-1)%7]
}

// Segment is one slice of a chart.
type Segment struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Fraction float64 `json:"fraction"`
	Color    string  `json:"color"`
}

var chartPalette = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40"}

var ringColors = [3]string{"#4CAF50", "#2196F3", "#FF9800"}

var leadingIntPattern = regexp.MustCompile(`^\s*(\d+)`)

// ChartSegments splits an ingredient list into proportional chart slices. The
// weight of an ingredient is the leading integer of its amount, or 1.
func ChartSegments(ingredients []Ingredient) []Segment {
	segments := make([]Segment, 0, len(ingredients))
	var total float64
	for i, ing := range ingredients {
		weight := 1.0
		if m := leadingIntPattern.FindStringSubmatch(ing.Amount); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				weight = float64(n)
			}
		}
		total += weight
		segments = append(segments, Segment{
			Label: ing.Name,
			Value: weight,
			Color: chartPalette[i%len(chartPalette)],
		})
	}
	for i := range segments {
		segments[i].Fraction = segments[i].Value / total
	}
	return segments
}

// CalorieRing splits a calorie value into three equal coloured ring segments.
func CalorieRing(calories float64) []Segment {
	segments := make([]Segment, len(ringColors))
	for i, c := range ringColors {
		segments[i] = Segment{
			Label:    strconv.Itoa(i + 1),
			Value:    calories / 3,
			Fraction: 1.0 / 3,
			Color:    c,
		}
	}
	return segments
}
