package dietplan

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	dailyTotalMarker   = "**Daily Total**:"
	medicalNoteMarker  = "*Medical Note*:"
	costEstimateMarker = "*Cost Estimate*:"

	descriptionLimit = 100
	medicalNoteLimit = 200
	costLimit        = 50
)

// blockBoundaries end a meal block. Any meal heading ends the current one, not
// only the heading of the next meal in display order.
var blockBoundaries = []string{
	Breakfast.marker(),
	Lunch.marker(),
	Dinner.marker(),
	Snacks.marker(),
	dailyTotalMarker,
}

var (
	macroGroupPattern = regexp.MustCompile(`\(([^)]*)\)`)

	// Numbers may carry digit-group commas ("1,200 kcal"); atoiOrZero strips them.
	caloriesPattern = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:kcal|cal)`)
	proteinPattern  = regexp.MustCompile(`(?i)(\d[\d,]*)\s*g?\s*(?:protein|p)\b`)
	carbsPattern    = regexp.MustCompile(`(?i)(\d[\d,]*)\s*g?\s*(?:carbohydrates|carbs|c)\b`)
	fatPattern      = regexp.MustCompile(`(?i)(\d[\d,]*)\s*g?\s*(?:fats|fat|f)\b`)
	fiberPattern    = regexp.MustCompile(`(?i)(\d[\d,]*)\s*g?\s*(?:fiber|fibre)\b`)
)

// Extractor mines meal records out of plan text. The zero value is not usable;
// build one with NewExtractor.
type Extractor struct {
	ingredients IngredientTable
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithIngredientTable replaces the keyword table used for ingredient inference.
func WithIngredientTable(t IngredientTable) Option {
	return func(e *Extractor) {
		if len(t) > 0 {
			e.ingredients = t
		}
	}
}

// NewExtractor creates an Extractor using DefaultIngredientTable unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{ingredients: DefaultIngredientTable}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Meal extracts one meal of one day from the raw plan.
func (e *Extractor) Meal(raw string, day int, t MealType) MealRecord {
	section, ok := FindSection(raw, day)
	if !ok {
		return e.unavailable(t)
	}
	return e.ExtractMeal(section, t)
}

// Day extracts the three daily meals. A day missing from the plan comes back with
// Found set to false and placeholder meals.
func (e *Extractor) Day(raw string, day int) DayRecord {
	rec := DayRecord{DayNumber: day, DayName: DayName(day)}
	section, ok := FindSection(raw, day)
	rec.Found = ok
	rec.Theme = section.Theme
	for _, t := range MealTypes {
		if !ok {
			rec.Meals = append(rec.Meals, e.unavailable(t))
			continue
		}
		rec.Meals = append(rec.Meals, e.ExtractMeal(section, t))
	}
	return rec
}

// Days extracts every day section of the plan in order of appearance.
func (e *Extractor) Days(raw string) []DayRecord {
	sections := Sections(raw)
	days := make([]DayRecord, 0, len(sections))
	for _, s := range sections {
		rec := DayRecord{DayNumber: s.DayNumber, DayName: DayName(s.DayNumber), Theme: s.Theme, Found: true}
		for _, t := range MealTypes {
			rec.Meals = append(rec.Meals, e.ExtractMeal(s, t))
		}
		days = append(days, rec)
	}
	return days
}

// ExtractMeal mines a meal record from a single day section.
func (e *Extractor) ExtractMeal(section DaySection, t MealType) MealRecord {
	block, ok := mealBlock(section.Text, t)
	if !ok {
		return e.unavailable(t)
	}

	rec := MealRecord{
		Type:         t,
		Available:    true,
		Description:  mealDescription(block, t),
		MedicalNote:  markedText(block, medicalNoteMarker, medicalNoteLimit, "\n*", DefaultMedicalNote),
		CostEstimate: markedText(block, costEstimateMarker, costLimit, "\n", DefaultCostEstimate),
	}

	if m := macroGroupPattern.FindStringSubmatch(block); m != nil {
		macros := m[1]
		rec.Calories = matchInt(caloriesPattern, macros)
		rec.ProteinGrams = matchInt(proteinPattern, macros)
		rec.CarbsGrams = matchInt(carbsPattern, macros)
		rec.FatGrams = matchInt(fatPattern, macros)
		rec.FiberGrams = matchInt(fiberPattern, macros)
	}

	rec.Ingredients = e.ingredients.Infer(rec.Description)
	return rec
}

func (e *Extractor) unavailable(t MealType) MealRecord {
	return MealRecord{
		Type:         t,
		Description:  NotAvailable,
		MedicalNote:  DefaultMedicalNote,
		CostEstimate: DefaultCostEstimate,
		Ingredients:  fallbackIngredients(),
	}
}

// mealBlock returns the text from the meal heading up to the earliest following
// boundary marker, or to the end of the section.
func mealBlock(text string, t MealType) (string, bool) {
	start := strings.Index(text, t.marker())
	if start < 0 {
		return "", false
	}
	searchFrom := start + len(t.marker())
	end := len(text)
	for _, b := range blockBoundaries {
		if i := strings.Index(text[searchFrom:], b); i >= 0 && searchFrom+i < end {
			end = searchFrom + i
		}
	}
	return text[start:end], true
}

// mealDescription reads the text after the heading up to the macro parenthetical,
// or up to the first line break within the first descriptionLimit characters.
func mealDescription(block string, t MealType) string {
	rest := strings.TrimLeft(block[len(t.marker()):], " \t")
	if i := strings.Index(rest, "("); i >= 0 {
		return strings.TrimSpace(rest[:i])
	}
	head := truncateRunes(rest, descriptionLimit)
	if i := strings.Index(head, "\n"); i >= 0 {
		head = head[:i]
	}
	return strings.TrimSpace(head)
}

// markedText reads the text following marker up to stop, capped at limit
// characters when stop is absent.
func markedText(block, marker string, limit int, stop, fallback string) string {
	i := strings.Index(block, marker)
	if i < 0 {
		return fallback
	}
	rest := block[i+len(marker):]
	if j := strings.Index(rest, stop); j >= 0 {
		rest = rest[:j]
	} else {
		rest = truncateRunes(rest, limit)
	}
	if v := strings.TrimSpace(rest); v != "" {
		return v
	}
	return fallback
}

func matchInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	return atoiOrZero(m[1])
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
