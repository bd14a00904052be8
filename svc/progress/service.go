package progress

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smartdalle/smartdalle/pkg/billing"
	"github.com/smartdalle/smartdalle/pkg/logger"
)

const (
	// Accepted weight range in kilograms. Values outside it are almost
	// certainly unit confusion or typos.
	minWeightKg = 20
	maxWeightKg = 400

	// freeHistoryLimit caps history for users without the unlimited_history
	// feature.
	freeHistoryLimit = 30

	// streakWindow is how many distinct dates are fetched for streak
	// evaluation. Covers the longest streak badge plus one day of slack.
	streakWindow = 31
)

// Service is the weight tracking workflow.
type Service interface {
	// LogWeight records a measurement dated today (UTC) and returns the keys
	// of any badges this entry unlocked, in unlock order.
	LogWeight(ctx context.Context, userID uuid.UUID, weight float64) ([]string, error)

	// History returns the user's measurements, newest first. Users without
	// premium unlimited history get the most recent entries only.
	History(ctx context.Context, userID uuid.UUID) ([]WeightLog, error)
}

// Entitlements is the slice of the billing service the tracker needs.
type Entitlements interface {
	HasFeature(ctx context.Context, userID uuid.UUID, feature billing.Feature) bool
}

type service struct {
	store        WeightLogStore
	badges       BadgeStore
	cache        *HistoryCache
	entitlements Entitlements
	log          *slog.Logger
	now          func() time.Time
}

// Option configures the progress service.
type Option func(*service)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHistoryCache enables the Redis-backed history cache.
func WithHistoryCache(cache *HistoryCache) Option {
	return func(s *service) {
		s.cache = cache
	}
}

// WithEntitlements wires premium feature checks. Without it every user is
// treated as free tier.
func WithEntitlements(e Entitlements) Option {
	return func(s *service) {
		s.entitlements = e
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

// NewService creates the weight tracking service.
// Panics if store or badgeStore is nil.
func NewService(store WeightLogStore, badgeStore BadgeStore, opts ...Option) Service {
	if store == nil {
		panic("progress: WeightLogStore is required")
	}
	if badgeStore == nil {
		panic("progress: BadgeStore is required")
	}

	s := &service{
		store:  store,
		badges: badgeStore,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) LogWeight(ctx context.Context, userID uuid.UUID, weight float64) ([]string, error) {
	if weight < minWeightKg || weight > maxWeightKg {
		return nil, ErrInvalidWeight
	}

	now := s.now().UTC()
	entry := &WeightLog{
		UserID:    userID,
		Weight:    weight,
		Date:      truncateToDate(now),
		CreatedAt: now,
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "weight log insert failed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return nil, errors.Join(ErrFailedToLogWeight, err)
	}

	if s.cache != nil {
		// Cache staleness is worse than a miss; invalidation failure is only
		// logged because the measurement itself is already durable.
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.log.LogAttrs(ctx, slog.LevelWarn, "history cache invalidation failed",
				logger.UserID(userID),
				logger.Error(err),
			)
		}
	}

	return s.evaluateBadges(ctx, userID), nil
}

// evaluateBadges checks unlock conditions after a new entry. Badge errors
// never fail the logging operation.
func (s *service) evaluateBadges(ctx context.Context, userID uuid.UUID) []string {
	var unlocked []string

	award := func(key string) {
		newly, err := s.badges.Award(ctx, userID, key)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelWarn, "badge award failed",
				logger.UserID(userID),
				logger.BadgeKey(key),
				logger.Error(err),
			)
			return
		}
		if newly {
			unlocked = append(unlocked, key)
		}
	}

	count, err := s.store.Count(ctx, userID)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "badge evaluation failed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return nil
	}
	if count == 1 {
		award("first_log")
	}

	streak, err := s.currentStreak(ctx, userID)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "streak evaluation failed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return unlocked
	}
	if streak >= 7 {
		award("week_streak")
	}
	if streak >= 30 {
		award("month_streak")
	}

	return unlocked
}

// currentStreak counts consecutive UTC dates with at least one entry, ending
// today.
func (s *service) currentStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	dates, err := s.store.RecentDates(ctx, userID, streakWindow)
	if err != nil {
		return 0, err
	}

	expected := truncateToDate(s.now().UTC())
	streak := 0
	for _, d := range dates {
		if !truncateToDate(d.UTC()).Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]WeightLog, error) {
	limit := freeHistoryLimit
	if s.entitlements != nil && s.entitlements.HasFeature(ctx, userID, billing.FeatureUnlimitedHistory) {
		limit = 0
	}

	if s.cache != nil {
		if logs, ok := s.cache.Get(ctx, userID, limit); ok {
			return logs, nil
		}
	}

	logs, err := s.store.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, errors.Join(ErrFailedToGetHistory, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, limit, logs); err != nil {
			s.log.LogAttrs(ctx, slog.LevelDebug, "history cache write failed",
				logger.UserID(userID),
				logger.Error(err),
			)
		}
	}

	return logs, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
