// Package shopping aggregates the inferred ingredients of a plan into a shopping list.
package shopping

import (
	"regexp"
	"strconv"
	"strings"

	"ai-diet-planner/internal/dietplan"
)

var amountPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*$`)

// Item is one line of a shopping list.
type Item struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Amount   string  `json:"amount"`
	Meals    int     `json:"meals"`
}

// List is the shopping list of one plan.
type List struct {
	PlanID string `json:"plan_id"`
	Items  []Item `json:"items"`
}

// BuildList sums the ingredients of every available meal. Amounts of the same
// ingredient and unit are added; amounts that are not "<number><unit>" are kept
// as written. Placeholder ingredients are skipped. Items keep the order in
// which they first appear.
func BuildList(days []dietplan.DayRecord) []Item {
	items := []Item{}
	index := make(map[string]int)

	for _, day := range days {
		for _, meal := range day.Meals {
			if !meal.Available {
				continue
			}
			for _, ing := range meal.Ingredients {
				if dietplan.IsPlaceholder(ing) {
					continue
				}
				qty, unit, ok := parseAmount(ing.Amount)
				key := strings.ToLower(ing.Name) + "|" + unit
				if !ok {
					key = strings.ToLower(ing.Name) + "|" + strings.ToLower(ing.Amount)
				}

				if i, seen := index[key]; seen {
					items[i].Meals++
					if ok {
						items[i].Quantity += qty
						items[i].Amount = formatAmount(items[i].Quantity, unit)
					}
					continue
				}

				item := Item{Name: ing.Name, Amount: ing.Amount, Meals: 1}
				if ok {
					item.Quantity, item.Unit = qty, unit
					item.Amount = formatAmount(qty, unit)
				}
				index[key] = len(items)
				items = append(items, item)
			}
		}
	}
	return items
}

func parseAmount(s string) (float64, string, bool) {
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	unit := strings.ToLower(m[2])
	if unit == "pc" {
		unit = "pcs"
	}
	return qty, unit, true
}

func formatAmount(qty float64, unit string) string {
	n := strconv.FormatFloat(qty, 'f', -1, 64)
	switch unit {
	case "":
		return n
	case "g", "kg", "ml", "l":
		return n + unit
	default:
		return n + " " + unit
	}
}
