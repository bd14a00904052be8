package recipes

import "errors"

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrPremiumRequired    = errors.New("premium subscription required")
	ErrFailedToGetRecipes = errors.New("failed to get recipes")
)
