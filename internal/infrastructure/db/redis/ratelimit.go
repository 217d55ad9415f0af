package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const opTimeout = 500 * time.Millisecond

// RateLimitStore counts requests per identifier in fixed windows shared by
// every instance pointed at the same Redis.
// Key format: ratelimit:<identifier>:<window_start_unix>
//
// It satisfies echo's middleware.RateLimiterStore.
type RateLimitStore struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewRateLimitStore allows limit requests per identifier per window.
func NewRateLimitStore(client *redis.Client, limit int, window time.Duration, log zerolog.Logger) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
		log:    log,
	}
}

// Allow increments the identifier's counter for the current window. When Redis
// cannot be reached the request is let through and the failure is logged.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := s.key(identifier, s.now())

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.PExpire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("identifier", identifier).Msg("rate limit store unavailable, allowing request")
		return true, nil
	}

	return count.Val() <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string, now time.Time) string {
	start := now.Truncate(s.window)
	return fmt.Sprintf("ratelimit:%s:%d", identifier, start.Unix())
}
