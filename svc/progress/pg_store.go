package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements WeightLogStore and BadgeStore on Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed store. Panics if pool is nil.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("progress: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

func (s *PGStore) Insert(ctx context.Context, entry *WeightLog) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO weight_logs (user_id, weight, date, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		entry.UserID, entry.Weight, entry.Date, entry.CreatedAt,
	).Scan(&entry.ID)
}

func (s *PGStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]WeightLog, error) {
	query := `SELECT id, user_id, weight, date, created_at
		 FROM weight_logs
		 WHERE user_id = $1
		 ORDER BY date DESC, created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []WeightLog
	for rows.Next() {
		var entry WeightLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Weight, &entry.Date, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *PGStore) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM weight_logs WHERE user_id = $1`, userID,
	).Scan(&count)
	return count, err
}

func (s *PGStore) RecentDates(ctx context.Context, userID uuid.UUID, limit int) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT date FROM weight_logs
		 WHERE user_id = $1
		 ORDER BY date DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *PGStore) Award(ctx context.Context, userID uuid.UUID, badgeKey string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO user_badges (user_id, badge_key, unlocked_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id, badge_key) DO NOTHING`,
		userID, badgeKey,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
