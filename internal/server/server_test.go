package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"ai-diet-planner/internal/app"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/database"
	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/importer"
	"ai-diet-planner/internal/metrics"
	"ai-diet-planner/internal/planner"
	"ai-diet-planner/internal/shopping"
)

const payloadJSON = `{
	"diet_plan": "### Day 1 - Balanced Start\n**Breakfast**: Oatmeal with banana (300 kcal, 10g protein)\n**Lunch**: Dal with rice (500 kcal)\n**Dinner**: Grilled fish (400 kcal)\n**Daily Total**: 1200 kcal\n\n### Day 2 - Green Day\n**Breakfast**: Yogurt bowl (250 kcal)\n",
	"user_profile": {"bmi": 27.1, "bmr": "1600", "target_calories": "1800"}
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Address:              "127.0.0.1",
		Port:                 "0",
		Env:                  "dev",
		DatabasePath:         filepath.Join(t.TempDir(), "server.db"),
		MetricsRetentionDays: 30,
		PlanRetentionDays:    90,
	}
	a := app.NewApp(
		cfg,
		dietplan.NewExtractor(),
		nil,
		planner.NewPlanRepository(db.SQL),
		shopping.NewRepository(db.SQL),
		metrics.NewStore(db.SQL),
		importer.NewImporter(nil),
		nil,
	)
	return NewServer(cfg, a)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func importTestPlan(t *testing.T, s *Server) planner.StoredPlan {
	t.Helper()
	rr := doRequest(t, s, http.MethodPost, "/v1/plans/import?user_id=user-1", payloadJSON)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from import, got %d: %s", rr.Code, rr.Body.String())
	}
	var plan planner.StoredPlan
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}
	return plan
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(t, s, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"healthy"`) {
		t.Errorf("Unexpected health response %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, s, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "http_request_total") {
		t.Errorf("Expected prometheus output, got %d", rr.Code)
	}
}

func TestBMI(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLabel  string
		wantAngle  float64
	}{
		{"Boundary", "value=25", http.StatusOK, "Overweight", 90},
		{"Underweight", "value=15", http.StatusOK, "Underweight", 180},
		{"Obese", "value=40", http.StatusOK, "Obese", 0},
		{"Missing", "", http.StatusBadRequest, "", 0},
		{"NotANumber", "value=abc", http.StatusBadRequest, "", 0},
		{"NaN", "value=NaN", http.StatusBadRequest, "", 0},
		{"Infinite", "value=%2BInf", http.StatusBadRequest, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, http.MethodGet, "/v1/bmi?"+tt.query, "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp BMIResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if resp.Label != tt.wantLabel || resp.GaugeAngle != tt.wantAngle {
				t.Errorf("Expected %s/%v, got %+v", tt.wantLabel, tt.wantAngle, resp)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	s := newTestServer(t)

	t.Run("WholePlan", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodPost, "/v1/extract", payloadJSON)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp ExtractResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if len(resp.Week) != 2 || len(resp.Days) != 2 {
			t.Fatalf("Expected 2 days, got %d/%d", len(resp.Week), len(resp.Days))
		}
		if resp.Profile.BMI != 27.1 || resp.BMI.Label != "Overweight" {
			t.Errorf("Unexpected profile %+v / %+v", resp.Profile, resp.BMI)
		}
		if resp.Week[0].TotalCalories != "1200" {
			t.Errorf("Expected 1200 total, got %s", resp.Week[0].TotalCalories)
		}
	})

	t.Run("MissingDay", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodPost, "/v1/extract?day=3", payloadJSON)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", rr.Code)
		}
		var rec dietplan.DayRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if rec.Found || rec.DayName != "WEDNESDAY" || len(rec.Meals) != 3 {
			t.Errorf("Expected placeholder WEDNESDAY record, got %+v", rec)
		}
	})

	t.Run("Meal", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodPost, "/v1/extract?day=1&meal=BREAKFAST", payloadJSON)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		var resp MealResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if resp.Description != "Oatmeal with banana" || resp.ProteinGrams != 10 || len(resp.CalorieRing) != 3 {
			t.Errorf("Unexpected meal %+v", resp)
		}
	})

	t.Run("NonFiniteBMIFallsBackToDefault", func(t *testing.T) {
		body := strings.Replace(payloadJSON, `"bmi": 27.1`, `"bmi": "NaN"`, 1)

		rr := doRequest(t, s, http.MethodPost, "/v1/extract", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		var resp ExtractResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Expected a JSON body, got %q: %v", rr.Body.String(), err)
		}
		if resp.Profile.BMI != dietplan.DefaultBMI || resp.BMI.Label != "Normal" {
			t.Errorf("Expected default BMI, got %+v / %+v", resp.Profile, resp.BMI)
		}

		if rr := doRequest(t, s, http.MethodPost, "/v1/plans/import?user_id=user-nan", body); rr.Code != http.StatusCreated {
			t.Errorf("Expected 201 from import, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"BadJSON", "/v1/extract", "{not json"},
		{"ZeroDay", "/v1/extract?day=0", payloadJSON},
		{"BadMeal", "/v1/extract?day=1&meal=brunch", payloadJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := doRequest(t, s, http.MethodPost, tt.path, tt.body); rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestStoredPlanRoutes(t *testing.T) {
	s := newTestServer(t)
	plan := importTestPlan(t, s)
	base := "/v1/plans/" + plan.ID

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"Plan", base, http.StatusOK, `"source":"imported"`},
		{"Latest", "/v1/users/user-1/plans/latest", http.StatusOK, plan.ID},
		{"Week", base + "/week", http.StatusOK, `"day_name":"TUESDAY"`},
		{"Day", base + "/days/1", http.StatusOK, `"theme":"Balanced Start"`},
		{"MissingDay", base + "/days/9", http.StatusNotFound, `"found":false`},
		{"InvalidDay", base + "/days/zero", http.StatusBadRequest, "day must be"},
		{"Meal", base + "/days/1/meals/lunch", http.StatusOK, `"calories":500`},
		{"ShoppingList", base + "/shopping-list", http.StatusOK, `"name":"Oatmeal"`},
		{"UnknownPlan", "/v1/plans/nope/week", http.StatusNotFound, "diet plan not found"},
		{"UnknownUser", "/v1/users/nobody/plans/latest", http.StatusNotFound, "diet plan not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, http.MethodGet, tt.path, "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestUnconfiguredFeatures(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"Generate", "/v1/plans", `{"user_id":"u","request":"vegan"}`, http.StatusServiceUnavailable},
		{"GenerateMissingFields", "/v1/plans", `{"user_id":"u"}`, http.StatusBadRequest},
		{"Sync", "/v1/users/u/sync", "", http.StatusServiceUnavailable},
		{"ImportWithoutUser", "/v1/plans/import", payloadJSON, http.StatusBadRequest},
		{"ImportBadJSON", "/v1/plans/import?user_id=u", "[", http.StatusBadRequest},
		{"ImportNoSections", "/v1/plans/import?user_id=u", `{"diet_plan":"hello"}`, http.StatusUnprocessableEntity},
		{"ImportURLInvalid", "/v1/plans/import-url", `{"user_id":"u","url":"ftp://x"}`, http.StatusBadRequest},
		{"ImportURLLoopback", "/v1/plans/import-url", `{"user_id":"u","url":"http://127.0.0.1:9/plan"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := doRequest(t, s, http.MethodPost, tt.path, tt.body); rr.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 10)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/bmi?value=20", nil))
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 200 429], got %v", codes)
	}

	t.Run("HealthIsFree", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("Expected /health to bypass the limiter, got %d", rr.Code)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		fresh := NewRateLimiter(1, 10)
		fresh.getBucket("198.51.100.1")
		fresh.prune()
		if len(fresh.clients) != 0 {
			t.Errorf("Expected full buckets to be pruned, got %d", len(fresh.clients))
		}
	})
}
