package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WeightLog is a single weight measurement. Date is a UTC calendar date;
// multiple entries on the same date are allowed and all kept, so re-logging
// after a morning weigh-in never silently drops data.
type WeightLog struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Weight    float64   `json:"weight"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// WeightLogStore defines persistence for weight measurements.
type WeightLogStore interface {
	// Insert appends a new entry. It never deduplicates by date.
	Insert(ctx context.Context, entry *WeightLog) error

	// ListRecent returns entries for the user, newest first, up to limit.
	// limit <= 0 means no limit.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]WeightLog, error)

	// Count returns the total number of entries for the user.
	Count(ctx context.Context, userID uuid.UUID) (int64, error)

	// RecentDates returns the user's distinct log dates, newest first,
	// up to limit.
	RecentDates(ctx context.Context, userID uuid.UUID, limit int) ([]time.Time, error)
}

// BadgeStore persists which badges a user has already unlocked, so each
// badge is announced exactly once.
type BadgeStore interface {
	// Award records the badge for the user. Returns true if this call
	// unlocked it, false if it was already unlocked.
	Award(ctx context.Context, userID uuid.UUID, badgeKey string) (bool, error)
}
