package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	shoppingdb "ai-diet-planner/internal/shopping/shopping_db"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	queries *shoppingdb.Queries
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: shoppingdb.New(d),
	}
}

// Save stores the list of a plan, replacing any previous one.
func (r *Repository) Save(ctx context.Context, list *List) error {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	err = r.queries.UpsertShoppingList(ctx, shoppingdb.UpsertShoppingListParams{
		PlanID:    list.PlanID,
		Items:     string(itemsJSON),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}

// GetByPlanID retrieves the list of a plan, or nil when none was saved.
func (r *Repository) GetByPlanID(ctx context.Context, planID string) (*List, error) {
	row, err := r.queries.GetShoppingListByPlanID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list by plan ID: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(row.Items), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return &List{PlanID: row.PlanID, Items: items}, nil
}

// DeleteByPlanID deletes the list of a plan.
func (r *Repository) DeleteByPlanID(ctx context.Context, planID string) error {
	return r.queries.DeleteShoppingListByPlanID(ctx, planID)
}
