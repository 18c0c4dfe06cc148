package shopping

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"ai-diet-planner/internal/database"
	"ai-diet-planner/internal/dietplan"
)

const weekPlan = `### Day 1 - Start
**Breakfast**: Oatmeal with banana (300 kcal)
**Lunch**: Brown rice with dal (500 kcal)
**Dinner**: Mystery stew (400 kcal)

### Day 2 - Repeat
**Breakfast**: Oatmeal and eggs (350 kcal)
**Lunch**: Rice bowl (450 kcal)
`

func TestBuildList(t *testing.T) {
	days := dietplan.NewExtractor().Days(weekPlan)
	items := BuildList(days)

	byName := make(map[string]Item)
	var order []string
	for _, it := range items {
		byName[it.Name] = it
		order = append(order, it.Name)
	}

	wantOrder := []string{"Oatmeal", "Banana", "Brown Rice", "Lentils (Dal)", "Eggs"}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("Expected order %v, got %v", wantOrder, order)
	}

	tests := []struct {
		name   string
		amount string
		meals  int
	}{
		{"Oatmeal", "100g", 2},
		{"Brown Rice", "300g", 2},
		{"Banana", "1 pcs", 1},
		{"Eggs", "2 pcs", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := byName[tt.name]
			if got.Amount != tt.amount || got.Meals != tt.meals {
				t.Errorf("Expected %s x%d, got %s x%d", tt.amount, tt.meals, got.Amount, got.Meals)
			}
		})
	}

	if _, ok := byName["Main ingredient"]; ok {
		t.Error("Expected placeholder ingredients to be skipped")
	}

	t.Run("UnparsedAmountsAreKept", func(t *testing.T) {
		items := BuildList([]dietplan.DayRecord{{
			Meals: []dietplan.MealRecord{
				{Available: true, Ingredients: []dietplan.Ingredient{{Name: "Salt", Amount: "a pinch"}}},
				{Available: true, Ingredients: []dietplan.Ingredient{{Name: "Salt", Amount: "a pinch"}}},
			},
		}})
		if len(items) != 1 || items[0].Amount != "a pinch" || items[0].Meals != 2 {
			t.Errorf("Unexpected items %+v", items)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := BuildList(nil); len(got) != 0 {
			t.Errorf("Expected empty list, got %+v", got)
		}
	})
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "shopping.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db.SQL)

	if got, err := repo.GetByPlanID(ctx, "plan-1"); err != nil || got != nil {
		t.Fatalf("Expected nil, nil for a missing list; got %v, %v", got, err)
	}

	list := &List{PlanID: "plan-1", Items: []Item{{Name: "Oatmeal", Quantity: 50, Unit: "g", Amount: "50g", Meals: 1}}}
	if err := repo.Save(ctx, list); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	list.Items[0].Quantity, list.Items[0].Amount = 100, "100g"
	if err := repo.Save(ctx, list); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	got, err := repo.GetByPlanID(ctx, "plan-1")
	if err != nil {
		t.Fatalf("GetByPlanID failed: %v", err)
	}
	if !reflect.DeepEqual(got, list) {
		t.Errorf("Expected %+v, got %+v", list, got)
	}

	if err := repo.DeleteByPlanID(ctx, "plan-1"); err != nil {
		t.Fatalf("DeleteByPlanID failed: %v", err)
	}
	if got, _ := repo.GetByPlanID(ctx, "plan-1"); got != nil {
		t.Error("Expected list to be deleted")
	}
}
