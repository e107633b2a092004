package postgres

import (
	"context"
	"database/sql"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

type rateLimitRepository struct {
	db *sql.DB
}

func NewRateLimitRepository(db *sql.DB) repository.RateLimitRepository {
	return &rateLimitRepository{db: db}
}

// Consume runs the whole window-reset-or-increment step as one upsert so
// that concurrent consumers on the same key serialize on the row. The
// count clamps at max+1: a saturated counter stops growing but still
// reads as over the limit.
func (r *rateLimitRepository) Consume(ctx context.Context, key string, max int32, window time.Duration, now time.Time) (*domain.RateLimitCounter, error) {
	windowFloor := now.Add(-window)
	query := `INSERT INTO rate_limit_counters (key, window_start, count)
	          VALUES ($1, $2, 1)
	          ON CONFLICT (key) DO UPDATE SET
	            count = CASE
	              WHEN rate_limit_counters.window_start <= $3 THEN 1
	              WHEN rate_limit_counters.count > $4 THEN rate_limit_counters.count
	              ELSE rate_limit_counters.count + 1
	            END,
	            window_start = CASE
	              WHEN rate_limit_counters.window_start <= $3 THEN $2
	              ELSE rate_limit_counters.window_start
	            END
	          RETURNING key, window_start, count`
	counter := &domain.RateLimitCounter{}
	err := r.db.QueryRowContext(ctx, query, key, now, windowFloor, max).
		Scan(&counter.Key, &counter.WindowStart, &counter.Count)
	if err != nil {
		return nil, err
	}
	return counter, nil
}

func (r *rateLimitRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rate_limit_counters WHERE window_start < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
