package dietplan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultBMI            = 21.3
	DefaultBMR            = "1366"
	DefaultTargetCalories = "1500"
)

// BMIBand is the category and display colour of a BMI value.
type BMIBand struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ClassifyBMI places a BMI into its band.
func ClassifyBMI(bmi float64) BMIBand {
	switch {
	case bmi < 18.5:
		return BMIBand{Label: "Underweight", Color: "blue"}
	case bmi < 25:
		return BMIBand{Label: "Normal", Color: "green"}
	case bmi < 30:
		return BMIBand{Label: "Overweight", Color: "orange"}
	default:
		return BMIBand{Label: "Obese", Color: "red"}
	}
}

// GaugeAngle maps a BMI clamped to [15,35] onto a needle angle from 180 to 0 degrees.
func GaugeAngle(bmi float64) float64 {
	const lo, hi = 15.0, 35.0
	if bmi < lo {
		bmi = lo
	}
	if bmi > hi {
		bmi = hi
	}
	return 180 - (bmi-lo)/(hi-lo)*180
}

// Profile carries the numeric user fields sent next to a plan.
type Profile struct {
	BMI            float64 `json:"bmi"`
	BMR            string  `json:"bmr"`
	TargetCalories string  `json:"target_calories"`
}

// DefaultProfile is used when the backend sends no profile fields.
func DefaultProfile() Profile {
	return Profile{BMI: DefaultBMI, BMR: DefaultBMR, TargetCalories: DefaultTargetCalories}
}

// Band classifies the profile BMI.
func (p Profile) Band() BMIBand {
	return ClassifyBMI(p.BMI)
}

// Payload is the object returned by the plan backend.
type Payload struct {
	DietPlan string  `json:"diet_plan"`
	Profile  Profile `json:"user_profile"`
}

// ParsePayload decodes a backend response. Profile fields are read from the
// nested user_profile object first and from the top level second; missing or
// unreadable values take their defaults. Only malformed JSON is an error.
func ParsePayload(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var top map[string]any
	if err := dec.Decode(&top); err != nil {
		return Payload{}, fmt.Errorf("failed to decode diet plan payload: %w", err)
	}

	nested, _ := top["user_profile"].(map[string]any)
	lookup := func(key string) any {
		if v, ok := nested[key]; ok && v != nil {
			return v
		}
		return top[key]
	}

	p := Payload{Profile: DefaultProfile()}
	p.DietPlan, _ = top["diet_plan"].(string)

	if f, ok := toFloat(lookup("bmi")); ok {
		p.Profile.BMI = f
	}
	if s, ok := toNumericString(lookup("bmr")); ok {
		p.Profile.BMR = s
	}
	if s, ok := toNumericString(lookup("target_calories")); ok {
		p.Profile.TargetCalories = s
	}
	return p, nil
}

// toFloat reads a finite number. NaN and infinities count as unreadable.
func toFloat(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toNumericString(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		return x.String(), true
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	}
	return "", false
}
