package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/cache"
	"github.com/redis/go-redis/v9"
)

// FailedAttemptRepository tracks failed login attempts per (email, client IP)
// pair in redis. Absence of a key is equivalent to a count of zero; a
// successful login deletes the key.
type FailedAttemptRepository struct {
	rdb *cache.Client
	ttl time.Duration
}

func NewFailedAttemptRepository(rdb *cache.Client, ttl time.Duration) *FailedAttemptRepository {
	return &FailedAttemptRepository{rdb: rdb, ttl: ttl}
}

func attemptKey(email, ipAddress string) string {
	return fmt.Sprintf("failed_attempts:%s:%s", email, ipAddress)
}

// Increment atomically bumps the counter and returns the post-increment
// count. The TTL is set only when the key is created, so the window runs
// from the first failure; concurrent failures from the same pair never
// lose an update.
func (r *FailedAttemptRepository) Increment(ctx context.Context, email, ipAddress string) (int64, error) {
	key := attemptKey(email, ipAddress)

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment attempt counter: %w", err)
	}

	return incr.Val(), nil
}

// Get returns the current count, zero when no attempts are recorded.
func (r *FailedAttemptRepository) Get(ctx context.Context, email, ipAddress string) (int64, error) {
	count, err := r.rdb.Get(ctx, attemptKey(email, ipAddress)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	return count, nil
}

// Clear removes the counter after a successful authentication.
func (r *FailedAttemptRepository) Clear(ctx context.Context, email, ipAddress string) error {
	if err := r.rdb.Del(ctx, attemptKey(email, ipAddress)).Err(); err != nil {
		return fmt.Errorf("failed to clear attempt counter: %w", err)
	}
	return nil
}
