package dietplan

import (
	"math"
	"testing"
)

func TestDayName(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{1, "MONDAY"},
		{7, "SUNDAY"},
		{8, "MONDAY"},
		{14, "SUNDAY"},
		{0, ""},
		{-3, ""},
	}

	for _, tt := range tests {
		if got := DayName(tt.day); got != tt.want {
			t.Errorf("DayName(%d) = %q, want %q", tt.day, got, tt.want)
		}
	}
}

func TestClassifyBMI(t *testing.T) {
	tests := []struct {
		bmi   float64
		label string
		color string
	}{
		{18.4, "Underweight", "blue"},
		{18.5, "Normal", "green"},
		{24.9, "Normal", "green"},
		{25.0, "Overweight", "orange"},
		{29.9, "Overweight", "orange"},
		{30.0, "Obese", "red"},
	}

	for _, tt := range tests {
		got := ClassifyBMI(tt.bmi)
		if got.Label != tt.label || got.Color != tt.color {
			t.Errorf("ClassifyBMI(%v) = %+v, want %s/%s", tt.bmi, got, tt.label, tt.color)
		}
	}
}

func TestGaugeAngle(t *testing.T) {
	tests := []struct {
		bmi  float64
		want float64
	}{
		{10, 180},
		{15, 180},
		{25, 90},
		{35, 0},
		{50, 0},
	}

	for _, tt := range tests {
		if got := GaugeAngle(tt.bmi); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("GaugeAngle(%v) = %v, want %v", tt.bmi, got, tt.want)
		}
	}
}

func TestChartSegments(t *testing.T) {
	segments := ChartSegments([]Ingredient{
		{Name: "Oatmeal", Amount: "50g"},
		{Name: "Milk", Amount: "150ml"},
		{Name: "Spices & Herbs", Amount: "As needed"},
	})

	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}
	if segments[2].Value != 1 {
		t.Errorf("Expected unparseable amount to weigh 1, got %v", segments[2].Value)
	}

	var sum float64
	for _, s := range segments {
		sum += s.Fraction
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Expected fractions to sum to 1, got %v", sum)
	}
	if math.Abs(segments[0].Fraction-50.0/201.0) > 1e-9 {
		t.Errorf("Unexpected oatmeal fraction %v", segments[0].Fraction)
	}

	if got := ChartSegments(nil); len(got) != 0 {
		t.Errorf("Expected no segments for no ingredients, got %d", len(got))
	}
}

func TestCalorieRing(t *testing.T) {
	ring := CalorieRing(1500)
	if len(ring) != 3 {
		t.Fatalf("Expected 3 ring segments, got %d", len(ring))
	}
	for _, s := range ring {
		if s.Value != 500 {
			t.Errorf("Expected 500 per segment, got %v", s.Value)
		}
	}
}
