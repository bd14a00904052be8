package recipes

import (
	"context"

	"github.com/google/uuid"
)

// Recipe is a curated meal suggestion. Premium recipes are only visible to
// subscribed users.
type Recipe struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Calories    int       `json:"calories"`
	ProteinG    int       `json:"protein_g"`
	Premium     bool      `json:"premium"`
}

// RecipeStore defines recipe persistence.
type RecipeStore interface {
	// List returns recipes. When includePremium is false only free recipes
	// are returned.
	List(ctx context.Context, includePremium bool) ([]Recipe, error)

	// Get returns a recipe by ID or ErrRecipeNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Recipe, error)
}
