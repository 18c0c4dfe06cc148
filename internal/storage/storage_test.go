package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ai-diet-planner/internal/dietplan"
)

func TestPlanStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewPlanStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create PlanStore: %v", err)
	}

	name := "week-12"
	raw := "### Day 1 - Start\n**Breakfast**: Eggs (150 kcal)"
	profile := dietplan.Profile{BMI: 19.5, BMR: "1300", TargetCalories: "1600"}

	t.Run("CheckExists-False", func(t *testing.T) {
		if store.Exists(name) {
			t.Errorf("Expected plan '%s' to not exist, but it does", name)
		}
	})

	t.Run("Save", func(t *testing.T) {
		if err := store.Save(name, raw, profile); err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}

		filePath := filepath.Join(tempDir, name+".json")
		if _, err := os.Stat(filePath); err != nil {
			t.Errorf("Expected file '%s' to be created: %v", filePath, err)
		}
	})

	t.Run("CheckExists-True", func(t *testing.T) {
		if !store.Exists(name) {
			t.Errorf("Expected plan '%s' to exist, but it doesn't", name)
		}
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load(name)
		if err != nil {
			t.Fatalf("Failed to load plan: %v", err)
		}
		if loaded.RawText != raw {
			t.Errorf("Expected raw text %q, got %q", raw, loaded.RawText)
		}
		if loaded.Profile != profile {
			t.Errorf("Expected profile %+v, got %+v", profile, loaded.Profile)
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := store.Save("alpha", raw, profile); err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
		names, err := store.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if !reflect.DeepEqual(names, []string{"alpha", name}) {
			t.Errorf("Unexpected names %v", names)
		}
	})

	t.Run("Load-NotFound", func(t *testing.T) {
		if _, err := store.Load("non-existent"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("InvalidName", func(t *testing.T) {
		for _, bad := range []string{"../escape", "a/b", "", ".hidden"} {
			if err := store.Save(bad, raw, profile); err == nil {
				t.Errorf("Expected an error for name %q", bad)
			}
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := store.Remove("alpha"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if store.Exists("alpha") {
			t.Error("Expected 'alpha' to be removed")
		}
		if err := store.Remove("alpha"); err != nil {
			t.Errorf("Expected removing a missing plan to succeed, got %v", err)
		}
	})
}
