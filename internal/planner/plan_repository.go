package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ai-diet-planner/internal/dietplan"
	plandb "ai-diet-planner/internal/planner/plan_db"

	"github.com/google/uuid"
)

// PlanRepository is a database-backed repository for diet plans.
type PlanRepository struct {
	queries *plandb.Queries
	db      *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{
		queries: plandb.New(d),
		db:      d,
	}
}

// Save inserts a plan. A missing ID is generated and a zero CreatedAt is set to now.
func (r *PlanRepository) Save(ctx context.Context, plan *StoredPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}
	plan.CreatedAt = plan.CreatedAt.UTC()

	err := r.queries.InsertDietPlan(ctx, plandb.InsertDietPlanParams{
		ID:             plan.ID,
		UserID:         plan.UserID,
		Request:        plan.Request,
		RawText:        plan.RawText,
		Bmi:            plan.Profile.BMI,
		Bmr:            plan.Profile.BMR,
		TargetCalories: plan.Profile.TargetCalories,
		Source:         string(plan.Source),
		CreatedAt:      plan.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert diet plan: %w", err)
	}
	return nil
}

// Get returns the plan with the given ID, or nil when it does not exist.
func (r *PlanRepository) Get(ctx context.Context, id string) (*StoredPlan, error) {
	row, err := r.queries.GetDietPlan(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get diet plan %s: %w", id, err)
	}
	return toStoredPlan(row), nil
}

// Latest returns the newest plan of a user, or nil when the user has none.
func (r *PlanRepository) Latest(ctx context.Context, userID string) (*StoredPlan, error) {
	row, err := r.queries.GetLatestDietPlanByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest diet plan for user %s: %w", userID, err)
	}
	return toStoredPlan(row), nil
}

// ListRecent retrieves the N most recent plans of a user, newest first.
func (r *PlanRepository) ListRecent(ctx context.Context, userID string, limit int) ([]StoredPlan, error) {
	rows, err := r.queries.ListRecentDietPlansByUserID(ctx, plandb.ListRecentDietPlansByUserIDParams{
		UserID: userID,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent diet plans for user %s: %w", userID, err)
	}

	plans := make([]StoredPlan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, *toStoredPlan(row))
	}
	return plans, nil
}

// DeleteOlderThan removes plans created before t, with their shopping lists.
func (r *PlanRepository) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteShoppingListsForPlansBefore(ctx, t.UTC()); err != nil {
		return 0, fmt.Errorf("failed to delete shopping lists: %w", err)
	}
	n, err := q.DeleteDietPlansBefore(ctx, t.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete diet plans: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit plan cleanup: %w", err)
	}
	return n, nil
}

func toStoredPlan(row plandb.DietPlan) *StoredPlan {
	return &StoredPlan{
		ID:      row.ID,
		UserID:  row.UserID,
		Request: row.Request,
		RawText: row.RawText,
		Profile: dietplan.Profile{
			BMI:            row.Bmi,
			BMR:            row.Bmr,
			TargetCalories: row.TargetCalories,
		},
		Source:    Source(row.Source),
		CreatedAt: row.CreatedAt,
	}
}
