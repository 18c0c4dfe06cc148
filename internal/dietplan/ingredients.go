package dietplan

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// IngredientRule maps a lower-case keyword to the ingredient it implies.
type IngredientRule struct {
	Keyword    string     `json:"keyword"`
	Ingredient Ingredient `json:"ingredient"`
}

// IngredientTable is an ordered keyword lookup. Inference is a plain substring
// match, so "ricebox" matches "rice"; callers accept that.
type IngredientTable []IngredientRule

// DefaultIngredientTable covers common staples, proteins and vegetables.
var DefaultIngredientTable = IngredientTable{
	{Keyword: "oatmeal", Ingredient: Ingredient{Name: "Oatmeal", Amount: "50g"}},
	{Keyword: "almond", Ingredient: Ingredient{Name: "Almonds", Amount: "10g"}},
	{Keyword: "rice", Ingredient: Ingredient{Name: "Brown Rice", Amount: "150g"}},
	{Keyword: "chicken", Ingredient: Ingredient{Name: "Chicken Breast", Amount: "150g"}},
	{Keyword: "fish", Ingredient: Ingredient{Name: "Fish Fillet", Amount: "150g"}},
	{Keyword: "egg", Ingredient: Ingredient{Name: "Eggs", Amount: "2 pcs"}},
	{Keyword: "paneer", Ingredient: Ingredient{Name: "Paneer", Amount: "100g"}},
	{Keyword: "dal", Ingredient: Ingredient{Name: "Lentils (Dal)", Amount: "80g"}},
	{Keyword: "roti", Ingredient: Ingredient{Name: "Whole Wheat Roti", Amount: "2 pcs"}},
	{Keyword: "quinoa", Ingredient: Ingredient{Name: "Quinoa", Amount: "80g"}},
	{Keyword: "tofu", Ingredient: Ingredient{Name: "Tofu", Amount: "100g"}},
	{Keyword: "spinach", Ingredient: Ingredient{Name: "Spinach", Amount: "100g"}},
	{Keyword: "broccoli", Ingredient: Ingredient{Name: "Broccoli", Amount: "100g"}},
	{Keyword: "salad", Ingredient: Ingredient{Name: "Mixed Greens", Amount: "100g"}},
	{Keyword: "yogurt", Ingredient: Ingredient{Name: "Greek Yogurt", Amount: "150g"}},
	{Keyword: "banana", Ingredient: Ingredient{Name: "Banana", Amount: "1 pc"}},
	{Keyword: "milk", Ingredient: Ingredient{Name: "Low-fat Milk", Amount: "200ml"}},
}

func fallbackIngredients() []Ingredient {
	return []Ingredient{
		{Name: "Main ingredient", Amount: "200g"},
		{Name: "Spices & Herbs", Amount: "As needed"},
	}
}

// Infer lists the ingredients whose keywords occur in description, in table
// order. It never returns an empty slice.
func (t IngredientTable) Infer(description string) []Ingredient {
	text := strings.ToLower(description)
	var out []Ingredient
	for _, rule := range t {
		if rule.Keyword != "" && strings.Contains(text, rule.Keyword) {
			out = append(out, rule.Ingredient)
		}
	}
	if len(out) == 0 {
		return fallbackIngredients()
	}
	return out
}

// LoadIngredientTable reads a JSON array of rules. Keywords are lower-cased on load.
func LoadIngredientTable(path string) (IngredientTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingredient table: %w", err)
	}

	var table IngredientTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredient table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("ingredient table %s is empty", path)
	}

	for i := range table {
		table[i].Keyword = strings.ToLower(strings.TrimSpace(table[i].Keyword))
	}
	return table, nil
}

// IsPlaceholder reports whether ing is one of the fallback entries used when no
// keyword matched.
func IsPlaceholder(ing Ingredient) bool {
	for _, f := range fallbackIngredients() {
		if ing == f {
			return true
		}
	}
	return false
}
