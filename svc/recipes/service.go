package recipes

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smartdalle/smartdalle/pkg/ai"
	"github.com/smartdalle/smartdalle/pkg/billing"
	"github.com/smartdalle/smartdalle/pkg/logger"
)

// Service is the recipe browsing workflow.
type Service interface {
	// List returns recipes visible to the user. Premium recipes are included
	// only for subscribed users.
	List(ctx context.Context, userID uuid.UUID) ([]Recipe, error)

	// Get returns a single recipe. Premium recipes require a subscription;
	// ErrPremiumRequired otherwise.
	Get(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) (*Recipe, error)

	// DailyTip returns a short nutrition tip. Generated by the AI coach when
	// configured, otherwise served from the built-in rotation.
	DailyTip(ctx context.Context, userID uuid.UUID) (string, error)
}

// Entitlements is the slice of the billing service this workflow needs.
type Entitlements interface {
	HasFeature(ctx context.Context, userID uuid.UUID, feature billing.Feature) bool
}

type service struct {
	store        RecipeStore
	entitlements Entitlements
	coach        *ai.Client
	log          *slog.Logger
	now          func() time.Time
}

// Option configures the recipes service.
type Option func(*service)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCoach wires the AI client for generated daily tips.
func WithCoach(coach *ai.Client) Option {
	return func(s *service) {
		s.coach = coach
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the recipes service.
// Panics if store or entitlements is nil.
func NewService(store RecipeStore, entitlements Entitlements, opts ...Option) Service {
	if store == nil {
		panic("recipes: RecipeStore is required")
	}
	if entitlements == nil {
		panic("recipes: Entitlements is required")
	}

	s := &service{
		store:        store,
		entitlements: entitlements,
		log:          slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Recipe, error) {
	includePremium := s.entitlements.HasFeature(ctx, userID, billing.FeaturePremiumRecipes)

	recipes, err := s.store.List(ctx, includePremium)
	if err != nil {
		return nil, errors.Join(ErrFailedToGetRecipes, err)
	}
	return recipes, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) (*Recipe, error) {
	recipe, err := s.store.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if recipe.Premium && !s.entitlements.HasFeature(ctx, userID, billing.FeaturePremiumRecipes) {
		return nil, ErrPremiumRequired
	}
	return recipe, nil
}

func (s *service) DailyTip(ctx context.Context, userID uuid.UUID) (string, error) {
	useCoach := s.coach != nil &&
		s.coach.Configured() &&
		s.entitlements.HasFeature(ctx, userID, billing.FeatureAICoach)

	if useCoach {
		tip, err := s.coach.Complete(ctx,
			"You are a friendly nutrition coach. Answer with a single short, practical tip.",
			"Give me today's nutrition tip.",
		)
		if err == nil {
			return tip, nil
		}
		// Fall through to the static rotation; a coach outage must not break
		// the page.
		s.log.LogAttrs(ctx, slog.LevelWarn, "ai coach request failed",
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	return s.staticTip(userID), nil
}

// staticTip picks a deterministic tip per user per UTC day, so refreshing
// the page does not shuffle the text.
func (s *service) staticTip(userID uuid.UUID) string {
	h := fnv.New32a()
	h.Write(userID[:])
	fmt.Fprintf(h, "%s", s.now().UTC().Format(time.DateOnly))
	return fallbackTips[int(h.Sum32())%len(fallbackTips)]
}

var fallbackTips = []string{
	"Drink a glass of water before every meal. It helps with portion control.",
	"Protein at breakfast keeps you full longer than carbs alone.",
	"Weigh yourself at the same time each day for consistent trends.",
	"A handful of nuts beats a granola bar for an afternoon snack.",
	"Fill half your plate with vegetables before adding anything else.",
	"Slow down. Meals eaten in under ten minutes tend to overshoot.",
	"Plan tomorrow's meals tonight. Decisions made hungry are rarely good ones.",
}
