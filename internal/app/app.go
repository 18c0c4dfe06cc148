// Package app wires plan acquisition, persistence and extraction together for
// the CLI, the HTTP server and the Telegram bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/dietapi"
	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/importer"
	"ai-diet-planner/internal/logging"
	"ai-diet-planner/internal/metrics"
	"ai-diet-planner/internal/planner"
	"ai-diet-planner/internal/shared"
	"ai-diet-planner/internal/shopping"
)

var (
	// ErrPlanNotFound is returned when no stored plan matches the lookup.
	ErrPlanNotFound = errors.New("diet plan not found")
	// ErrGenerationDisabled is returned when no LLM key is configured.
	ErrGenerationDisabled = errors.New("plan generation is not configured")
	// ErrBackendDisabled is returned when no diet backend is configured.
	ErrBackendDisabled = errors.New("diet backend is not configured")
	// ErrInvalidDay is returned for day numbers below 1.
	ErrInvalidDay = errors.New("day must be 1 or greater")
	// ErrInvalidPayload is returned when an imported payload is not valid JSON.
	ErrInvalidPayload = errors.New("invalid diet plan payload")
)

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	extractor    *dietplan.Extractor
	mealPlanner  *planner.Planner
	planRepo     *planner.PlanRepository
	shoppingRepo *shopping.Repository
	metricsStore *metrics.Store
	importer     *importer.Importer
	dietAPI      dietapi.Client
}

// NewApp creates and initializes a new App instance. mealPlanner and dietAPI
// may be nil when generation or the backend are not configured.
func NewApp(
	cfg *config.Config,
	extractor *dietplan.Extractor,
	mealPlanner *planner.Planner,
	planRepo *planner.PlanRepository,
	shoppingRepo *shopping.Repository,
	metricsStore *metrics.Store,
	imp *importer.Importer,
	dietAPI dietapi.Client,
) *App {
	return &App{
		cfg:          cfg,
		extractor:    extractor,
		mealPlanner:  mealPlanner,
		planRepo:     planRepo,
		shoppingRepo: shoppingRepo,
		metricsStore: metricsStore,
		importer:     imp,
		dietAPI:      dietAPI,
	}
}

// Extractor exposes the extractor for stateless requests that carry their own plan text.
func (a *App) Extractor() *dietplan.Extractor {
	return a.extractor
}

// GeneratePlan asks the LLM for a new plan and stores it.
func (a *App) GeneratePlan(ctx context.Context, userID, request string, profile dietplan.Profile) (*planner.StoredPlan, error) {
	if a.mealPlanner == nil {
		return nil, ErrGenerationDisabled
	}

	plan, meta, err := a.mealPlanner.GeneratePlan(ctx, userID, request, profile)
	a.recordMeta(meta, err)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	logging.Info("plan generated", "plan_id", plan.ID, "user_id", userID, "days", plan.DayCount())
	return plan, nil
}

// RevisePlan rewrites a stored plan following the user's feedback. The revision
// is stored as a new plan.
func (a *App) RevisePlan(ctx context.Context, planID, feedback string) (*planner.StoredPlan, error) {
	if a.mealPlanner == nil {
		return nil, ErrGenerationDisabled
	}

	current, err := a.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}

	plan, meta, err := a.mealPlanner.RevisePlan(ctx, current, feedback)
	a.recordMeta(meta, err)
	if err != nil {
		return nil, fmt.Errorf("failed to revise plan: %w", err)
	}

	logging.Info("plan revised", "plan_id", plan.ID, "revision_of", planID)
	return plan, nil
}

// ImportRaw stores plan text produced elsewhere.
func (a *App) ImportRaw(ctx context.Context, userID, raw string, profile dietplan.Profile) (*planner.StoredPlan, error) {
	return a.store(ctx, &planner.StoredPlan{
		UserID:  userID,
		RawText: raw,
		Profile: profile,
		Source:  planner.SourceImported,
	})
}

// ImportPayload stores a plan from a backend-shaped JSON payload.
func (a *App) ImportPayload(ctx context.Context, userID string, data []byte) (*planner.StoredPlan, error) {
	payload, err := dietplan.ParsePayload(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return a.ImportRaw(ctx, userID, payload.DietPlan, payload.Profile)
}

// ImportURL fetches a published plan and stores it with the default profile.
func (a *App) ImportURL(ctx context.Context, userID, url string) (*planner.StoredPlan, error) {
	result, err := a.importer.ImportURL(ctx, url)
	if result != nil && result.Meta != nil {
		a.recordMeta(*result.Meta, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to import plan from URL: %w", err)
	}

	return a.store(ctx, &planner.StoredPlan{
		UserID:  userID,
		Request: url,
		RawText: result.RawText,
		Profile: dietplan.DefaultProfile(),
		Source:  planner.SourceURL,
	})
}

// SyncFromBackend pulls the user's current plan from the diet backend.
func (a *App) SyncFromBackend(ctx context.Context, userID string) (*planner.StoredPlan, error) {
	if a.dietAPI == nil {
		return nil, ErrBackendDisabled
	}

	payload, err := a.dietAPI.FetchDietPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plan from backend: %w", err)
	}

	return a.store(ctx, &planner.StoredPlan{
		UserID:  userID,
		RawText: payload.DietPlan,
		Profile: payload.Profile,
		Source:  planner.SourceBackend,
	})
}

func (a *App) store(ctx context.Context, plan *planner.StoredPlan) (*planner.StoredPlan, error) {
	if len(dietplan.Sections(plan.RawText)) == 0 {
		return nil, planner.ErrNoDaySections
	}
	if err := a.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	logging.Info("plan stored", "plan_id", plan.ID, "user_id", plan.UserID, "source", plan.Source, "days", plan.DayCount())
	return plan, nil
}

// Plan returns a stored plan by ID.
func (a *App) Plan(ctx context.Context, planID string) (*planner.StoredPlan, error) {
	plan, err := a.planRepo.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// LatestPlan returns the most recent plan of a user.
func (a *App) LatestPlan(ctx context.Context, userID string) (*planner.StoredPlan, error) {
	plan, err := a.planRepo.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// RecentPlans lists the newest plans of a user.
func (a *App) RecentPlans(ctx context.Context, userID string, limit int) ([]planner.StoredPlan, error) {
	return a.planRepo.ListRecent(ctx, userID, limit)
}

// Day extracts one day of a stored plan. A day missing from the plan is not an
// error: the record comes back with Found set to false.
func (a *App) Day(ctx context.Context, planID string, day int) (dietplan.DayRecord, error) {
	if day < 1 {
		return dietplan.DayRecord{}, ErrInvalidDay
	}
	plan, err := a.Plan(ctx, planID)
	if err != nil {
		return dietplan.DayRecord{}, err
	}

	rec := a.extractor.Day(plan.RawText, day)
	metrics.ObserveExtraction("day", rec.Found)
	return rec, nil
}

// Week returns the weekly overview of a stored plan.
func (a *App) Week(ctx context.Context, planID string) ([]dietplan.DaySummary, error) {
	plan, err := a.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}

	week := a.extractor.Week(plan.RawText)
	metrics.ObserveExtraction("week", len(week) > 0)
	return week, nil
}

// Meal extracts a single meal of a stored plan.
func (a *App) Meal(ctx context.Context, planID string, day int, t dietplan.MealType) (dietplan.MealRecord, error) {
	if day < 1 {
		return dietplan.MealRecord{}, ErrInvalidDay
	}
	plan, err := a.Plan(ctx, planID)
	if err != nil {
		return dietplan.MealRecord{}, err
	}

	rec := a.extractor.Meal(plan.RawText, day, t)
	metrics.ObserveExtraction("meal", rec.Available)
	return rec, nil
}

// ShoppingList returns the saved shopping list of a plan, building and saving it
// on first use.
func (a *App) ShoppingList(ctx context.Context, planID string) (*shopping.List, error) {
	list, err := a.shoppingRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if list != nil {
		return list, nil
	}

	plan, err := a.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}

	list = &shopping.List{
		PlanID: plan.ID,
		Items:  shopping.BuildList(a.extractor.Days(plan.RawText)),
	}
	if err := a.shoppingRepo.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Usage returns daily and per-agent token usage for the last N days.
func (a *App) Usage(days int) ([]metrics.DailyUsage, []metrics.AgentUsage, error) {
	daily, err := a.metricsStore.GetDailyUsage(days)
	if err != nil {
		return nil, nil, err
	}
	agents, err := a.metricsStore.GetUsageByAgent(days)
	if err != nil {
		return nil, nil, err
	}
	return daily, agents, nil
}

// CleanupMetrics removes execution metrics past the configured retention.
func (a *App) CleanupMetrics() (int64, error) {
	n, err := a.metricsStore.Cleanup(a.cfg.MetricsRetentionDays)
	if err != nil {
		return 0, err
	}
	logging.Info("metrics cleanup finished", "deleted", n, "retention_days", a.cfg.MetricsRetentionDays)
	return n, nil
}

// CleanupPlans removes plans past the configured retention.
func (a *App) CleanupPlans(ctx context.Context) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -a.cfg.PlanRetentionDays)
	n, err := a.planRepo.DeleteOlderThan(ctx, threshold)
	if err != nil {
		return 0, err
	}
	logging.Info("plan cleanup finished", "deleted", n, "retention_days", a.cfg.PlanRetentionDays)
	return n, nil
}

// recordMeta stores token usage even when the agent failed.
func (a *App) recordMeta(meta shared.AgentMeta, err error) {
	if strings.TrimSpace(meta.AgentName) == "" {
		return
	}
	metrics.ObserveGeneration(meta.AgentName, meta.Usage.PromptTokens, meta.Usage.CompletionTokens, err)
	if recErr := a.metricsStore.RecordMeta(meta); recErr != nil {
		logging.Warn("failed to record metrics", "agent", meta.AgentName, "error", recErr)
	}
}
