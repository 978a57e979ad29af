package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/iceweasel13/solana-bomber/backend/utils"
)

// RateLimiter is a sliding window log per key. Keys are updated under the
// map's per-bucket lock so unrelated callers never contend.
type RateLimiter struct {
	hits   *xsync.MapOf[string, []time.Time]
	window time.Duration
	limit  int
}

// NewRateLimiter sweeps idle keys until ctx is done.
func NewRateLimiter(ctx context.Context, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		hits:   xsync.NewMapOf[string, []time.Time](),
		window: window,
		limit:  limit,
	}
	go rl.sweep(ctx)
	return rl
}

func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()
	allowed := false
	rl.hits.Compute(key, func(hits []time.Time, _ bool) ([]time.Time, bool) {
		hits = within(hits, now.Add(-rl.window))
		if len(hits) < rl.limit {
			hits = append(hits, now)
			allowed = true
		}
		return hits, false
	})
	return allowed
}

// within drops the leading timestamps older than cutoff. hits is ordered.
func within(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cutoff := now.Add(-rl.window)
			rl.hits.Range(func(key string, _ []time.Time) bool {
				rl.hits.Compute(key, func(hits []time.Time, _ bool) ([]time.Time, bool) {
					hits = within(hits, cutoff)
					return hits, len(hits) == 0
				})
				return true
			})
		}
	}
}

// RateLimit limits requests per caller identity, falling back to the client IP.
func RateLimit(ctx context.Context, limit int, window time.Duration) fiber.Handler {
	limiter := NewRateLimiter(ctx, limit, window)

	return func(c *fiber.Ctx) error {
		key := utils.GetIdentity(c)
		if key == "" {
			key = utils.GetIPAddress(c)
		}

		if !limiter.Allow(key) {
			slog.Warn("Rate limit exceeded",
				slog.String("type", "http"),
				slog.String("owner", key),
				slog.String("route", c.Route().Path),
				slog.Int("limit", limit))
			return utils.SendError(c, fiber.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Too many requests, try again later", nil)
		}
		return c.Next()
	}
}
