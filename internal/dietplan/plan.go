// Package dietplan turns the free-text diet plans produced by the generator into
// structured day and meal records.
//
// The plan text has no grammar. It is read with a fixed set of markers:
//
//	### Day <n> - <theme>
//	**Breakfast**: <description> (<macros>)
//	*Medical Note*: <text>
//	*Cost Estimate*: <text>
//	**Daily Total**: <text>
//
// Every extraction is total: a missing marker yields the documented default for
// that field and never an error. The functions hold no state, so they are safe
// for concurrent use.
package dietplan

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MealType names a meal heading inside a day section.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snacks    MealType = "Snacks"
)

// MealTypes are the meals extracted for every day, in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

const (
	// DefaultMedicalNote is used when a meal carries no *Medical Note*.
	DefaultMedicalNote = "This meal is balanced for your health profile. Consult your doctor before making major dietary changes."
	// DefaultCostEstimate is used when a meal carries no *Cost Estimate*.
	DefaultCostEstimate = "₹80"
	// NotAvailable is the description of a meal missing from its day.
	NotAvailable = "Not available"
	// DefaultTotalCalories is the weekly summary placeholder for an unreadable daily total.
	DefaultTotalCalories = "N/A"
)

// ParseMealType maps user input such as "lunch" or "SNACK" to a MealType.
func ParseMealType(s string) (MealType, bool) {
	// Casers are stateful, so each call gets its own.
	name := cases.Title(language.English).String(strings.TrimSpace(s))
	if name == "Snack" {
		name = string(Snacks)
	}
	switch MealType(name) {
	case Breakfast, Lunch, Dinner, Snacks:
		return MealType(name), true
	}
	return "", false
}

func (m MealType) marker() string {
	return "**" + string(m) + "**:"
}

// Ingredient is one inferred ingredient of a meal.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// MealRecord is the structured form of one meal. Every field is always populated.
type MealRecord struct {
	Type         MealType     `json:"type"`
	Available    bool         `json:"available"`
	Description  string       `json:"description"`
	Calories     int          `json:"calories"`
	ProteinGrams int          `json:"protein_g"`
	CarbsGrams   int          `json:"carbs_g"`
	FatGrams     int          `json:"fat_g"`
	FiberGrams   int          `json:"fiber_g"`
	MedicalNote  string       `json:"medical_note"`
	CostEstimate string       `json:"cost_estimate"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// DayRecord holds the detailed meals of one day. Found is false when the plan has
// no section for the requested day; the meals are then all placeholders.
type DayRecord struct {
	DayNumber int          `json:"day_number"`
	DayName   string       `json:"day_name"`
	Theme     string       `json:"theme"`
	Found     bool         `json:"found"`
	Meals     []MealRecord `json:"meals"`
}

// Meal returns the record for the given meal type.
func (d DayRecord) Meal(t MealType) (MealRecord, bool) {
	for _, m := range d.Meals {
		if m.Type == t {
			return m, true
		}
	}
	return MealRecord{}, false
}

// DaySummary is the weekly overview of a day: descriptions only, no macros.
type DaySummary struct {
	DayNumber     int    `json:"day_number"`
	DayName       string `json:"day_name"`
	Theme         string `json:"theme"`
	Breakfast     string `json:"breakfast"`
	Lunch         string `json:"lunch"`
	Dinner        string `json:"dinner"`
	TotalCalories string `json:"total_calories"`
}
