package dietplan

import (
	"testing"
)

func TestSections(t *testing.T) {
	raw := "intro\n### Day 1 - X\nfirst\n### Day 2 - Y\nsecond\n### Day 3 - Z\nthird\n"

	sections := Sections(raw)
	if len(sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(sections))
	}
	if sections[0].Theme != "X" || sections[2].Theme != "Z" {
		t.Errorf("Unexpected themes: %q, %q", sections[0].Theme, sections[2].Theme)
	}
	if sections[2].End != len(raw) {
		t.Errorf("Expected last section to run to end of text")
	}

	t.Run("KnownDayAgreesWithScan", func(t *testing.T) {
		got, ok := FindSection(raw, 2)
		if !ok {
			t.Fatal("Expected day 2 to be found")
		}
		if got.Text != sections[1].Text {
			t.Errorf("Expected %q, got %q", sections[1].Text, got.Text)
		}
		if got.Text != "### Day 2 - Y\nsecond\n" {
			t.Errorf("Unexpected section text %q", got.Text)
		}
	})

	t.Run("ExactNumeralMatch", func(t *testing.T) {
		plan := "### Day 10 - Ten\nten\n### Day 1 - One\none\n"
		got, ok := FindSection(plan, 1)
		if !ok || got.Theme != "One" {
			t.Errorf("Expected day 1 theme 'One', got %q (found=%v)", got.Theme, ok)
		}
	})

	t.Run("MissingDay", func(t *testing.T) {
		if _, ok := FindSection(raw, 4); ok {
			t.Error("Expected day 4 to be missing")
		}
	})

	t.Run("HeadingWithoutThemeIsIgnored", func(t *testing.T) {
		plan := "### Day 1\nno theme\n### Day 2 - Real\nbody\n"
		got := Sections(plan)
		if len(got) != 1 || got[0].DayNumber != 2 {
			t.Errorf("Expected only day 2, got %+v", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := Sections(""); len(got) != 0 {
			t.Errorf("Expected no sections, got %d", len(got))
		}
	})
}

func TestWeek(t *testing.T) {
	week := NewExtractor().Week(samplePlan)
	if len(week) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(week))
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"day1 breakfast", week[0].Breakfast, "Oatmeal with almonds"},
		{"day1 total", week[0].TotalCalories, "1320"},
		{"day2 lunch", week[1].Lunch, NotAvailable},
		{"day2 total", week[1].TotalCalories, "880"},
		{"day3 dinner", week[2].Dinner, NotAvailable},
		{"day3 total", week[2].TotalCalories, DefaultTotalCalories},
		{"day3 name", week[2].DayName, "WEDNESDAY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, tt.got)
			}
		})
	}
}
