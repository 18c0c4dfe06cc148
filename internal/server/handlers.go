package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"ai-diet-planner/internal/app"
	"ai-diet-planner/internal/dietapi"
	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/importer"
	"ai-diet-planner/internal/logging"
	"ai-diet-planner/internal/metrics"
	"ai-diet-planner/internal/planner"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logging.Error("Failed to encode JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithAppError maps application errors to status codes.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrPlanNotFound), errors.Is(err, dietapi.ErrNoPlan):
		code = http.StatusNotFound
	case errors.Is(err, app.ErrInvalidDay), errors.Is(err, app.ErrInvalidPayload), errors.Is(err, importer.ErrBlockedHost):
		code = http.StatusBadRequest
	case errors.Is(err, planner.ErrNoDaySections):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrGenerationDisabled), errors.Is(err, app.ErrBackendDisabled):
		code = http.StatusServiceUnavailable
	}

	if code == http.StatusInternalServerError {
		logging.Error("Request failed", "path", r.URL.Path, "error", err)
		respondWithError(w, code, "internal server error")
		return
	}
	respondWithError(w, code, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	System metrics.SysHealth `json:"system"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		System: metrics.GetSysHealth(s.config.DatabasePath),
	})
}

// BMIResponse describes a BMI value for the gauge.
type BMIResponse struct {
	BMI        float64 `json:"bmi"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	GaugeAngle float64 `json:"gauge_angle"`
}

func newBMIResponse(bmi float64) BMIResponse {
	band := dietplan.ClassifyBMI(bmi)
	return BMIResponse{BMI: bmi, Label: band.Label, Color: band.Color, GaugeAngle: dietplan.GaugeAngle(bmi)}
}

func (s *Server) handleBMI(w http.ResponseWriter, r *http.Request) {
	bmi, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil || math.IsNaN(bmi) || math.IsInf(bmi, 0) || bmi <= 0 {
		respondWithError(w, http.StatusBadRequest, "value must be a positive number")
		return
	}
	respondWithJSON(w, http.StatusOK, newBMIResponse(bmi))
}

// ExtractResponse is the full structured view of a plan sent inline.
type ExtractResponse struct {
	Profile dietplan.Profile      `json:"profile"`
	BMI     BMIResponse           `json:"bmi"`
	Week    []dietplan.DaySummary `json:"week"`
	Days    []dietplan.DayRecord  `json:"days"`
}

// handleExtract reads a backend-shaped payload and returns its structure. With
// ?day=N only that day is returned; with ?day=N&meal=M only that meal.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	payload, err := dietplan.ParsePayload(body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ex := s.app.Extractor()
	q := r.URL.Query()

	if q.Get("day") == "" {
		respondWithJSON(w, http.StatusOK, ExtractResponse{
			Profile: payload.Profile,
			BMI:     newBMIResponse(payload.Profile.BMI),
			Week:    ex.Week(payload.DietPlan),
			Days:    ex.Days(payload.DietPlan),
		})
		return
	}

	day, ok := parseDay(w, q.Get("day"))
	if !ok {
		return
	}

	if name := q.Get("meal"); name != "" {
		mealType, ok := parseMeal(w, name)
		if !ok {
			return
		}
		rec := ex.Meal(payload.DietPlan, day, mealType)
		metrics.ObserveExtraction("meal", rec.Available)
		respondWithJSON(w, http.StatusOK, newMealResponse(rec))
		return
	}

	rec := ex.Day(payload.DietPlan, day)
	metrics.ObserveExtraction("day", rec.Found)
	respondWithDay(w, rec)
}

// GeneratePlanRequest is the body of POST /v1/plans.
type GeneratePlanRequest struct {
	UserID  string            `json:"user_id"`
	Request string            `json:"request"`
	Profile *dietplan.Profile `json:"profile,omitempty"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Request) == "" {
		respondWithError(w, http.StatusBadRequest, "user_id and request are required")
		return
	}

	profile := dietplan.DefaultProfile()
	if req.Profile != nil {
		profile = *req.Profile
	}

	plan, err := s.app.GeneratePlan(r.Context(), req.UserID, req.Request, profile)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

// RevisePlanRequest is the body of POST /v1/plans/{planID}/revise.
type RevisePlanRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) handleRevisePlan(w http.ResponseWriter, r *http.Request) {
	var req RevisePlanRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Feedback) == "" {
		respondWithError(w, http.StatusBadRequest, "feedback is required")
		return
	}

	plan, err := s.app.RevisePlan(r.Context(), chi.URLParam(r, "planID"), req.Feedback)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

// handleImportPayload stores a backend-shaped payload. The owner is given by
// ?user_id=.
func (s *Server) handleImportPayload(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	plan, err := s.app.ImportPayload(r.Context(), userID, body)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

// ImportURLRequest is the body of POST /v1/plans/import-url.
type ImportURLRequest struct {
	UserID string `json:"user_id"`
	URL    string `json:"url"`
}

func (s *Server) handleImportURL(w http.ResponseWriter, r *http.Request) {
	var req ImportURLRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || !(strings.HasPrefix(req.URL, "http://") || strings.HasPrefix(req.URL, "https://")) {
		respondWithError(w, http.StatusBadRequest, "user_id and an http(s) url are required")
		return
	}

	plan, err := s.app.ImportURL(r.Context(), req.UserID, req.URL)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	plan, err := s.app.SyncFromBackend(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleLatestPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.app.LatestPlan(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.app.Plan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, plan)
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	week, err := s.app.Week(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, week)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDay(w, chi.URLParam(r, "day"))
	if !ok {
		return
	}

	rec, err := s.app.Day(r.Context(), chi.URLParam(r, "planID"), day)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithDay(w, rec)
}

// MealResponse is a meal record with its chart data.
type MealResponse struct {
	dietplan.MealRecord
	IngredientChart []dietplan.Segment `json:"ingredient_chart"`
	CalorieRing     []dietplan.Segment `json:"calorie_ring"`
}

func newMealResponse(rec dietplan.MealRecord) MealResponse {
	return MealResponse{
		MealRecord:      rec,
		IngredientChart: dietplan.ChartSegments(rec.Ingredients),
		CalorieRing:     dietplan.CalorieRing(float64(rec.Calories)),
	}
}

func (s *Server) handleMeal(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDay(w, chi.URLParam(r, "day"))
	if !ok {
		return
	}
	mealType, ok := parseMeal(w, chi.URLParam(r, "meal"))
	if !ok {
		return
	}

	rec, err := s.app.Meal(r.Context(), chi.URLParam(r, "planID"), day, mealType)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newMealResponse(rec))
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.ShoppingList(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

// respondWithDay sends 404 for a day absent from the plan, still carrying the
// placeholder record.
func respondWithDay(w http.ResponseWriter, rec dietplan.DayRecord) {
	if !rec.Found {
		respondWithJSON(w, http.StatusNotFound, rec)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

func parseDay(w http.ResponseWriter, s string) (int, bool) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 {
		respondWithError(w, http.StatusBadRequest, "day must be an integer of 1 or greater")
		return 0, false
	}
	return day, true
}

func parseMeal(w http.ResponseWriter, s string) (dietplan.MealType, bool) {
	t, ok := dietplan.ParseMealType(s)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "meal must be one of breakfast, lunch, dinner, snacks")
		return "", false
	}
	return t, true
}
