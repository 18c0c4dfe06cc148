package dietplan

import (
	"regexp"
	"strconv"
	"strings"
)

var totalCaloriesPattern = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:kcal|cal)`)

// Week builds the weekly overview from a single scan of the plan. It shares the
// segmentation and description rules of the detailed view.
func (e *Extractor) Week(raw string) []DaySummary {
	sections := Sections(raw)
	out := make([]DaySummary, 0, len(sections))
	for _, s := range sections {
		out = append(out, Summarize(s))
	}
	return out
}

// Summarize reduces one section to its summary record.
func Summarize(s DaySection) DaySummary {
	return DaySummary{
		DayNumber:     s.DayNumber,
		DayName:       DayName(s.DayNumber),
		Theme:         s.Theme,
		Breakfast:     MealDescription(s, Breakfast),
		Lunch:         MealDescription(s, Lunch),
		Dinner:        MealDescription(s, Dinner),
		TotalCalories: dailyTotal(s.Text),
	}
}

// MealDescription returns only the description of a meal, or NotAvailable.
func MealDescription(s DaySection, t MealType) string {
	block, ok := mealBlock(s.Text, t)
	if !ok {
		return NotAvailable
	}
	return mealDescription(block, t)
}

func dailyTotal(text string) string {
	i := strings.Index(text, dailyTotalMarker)
	if i < 0 {
		return DefaultTotalCalories
	}
	line := text[i+len(dailyTotalMarker):]
	if j := strings.Index(line, "\n"); j >= 0 {
		line = line[:j]
	}
	m := totalCaloriesPattern.FindStringSubmatch(line)
	if m == nil {
		return DefaultTotalCalories
	}
	n := atoiOrZero(m[1])
	if n == 0 {
		return DefaultTotalCalories
	}
	return strconv.Itoa(n)
}
