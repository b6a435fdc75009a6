package polygon

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/seesaw/mfses/pkg/redis"
)

// Limiter gates outbound Polygon calls. One shared allowance covers
// every caller in the process (or fleet, for the Redis variant).
type Limiter interface {
	Wait(ctx context.Context) error
}

// LocalLimiter is a token-bucket limiter for single-process
// deployments.
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter allows perMinute requests with a small burst.
func NewLocalLimiter(perMinute int) *LocalLimiter {
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &LocalLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
	}
}

func (l *LocalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// SharedLimiter enforces the allowance across processes through the
// Redis sliding window.
type SharedLimiter struct {
	limiter *redis.RateLimiter
	cfg     redis.RateLimitConfig
}

// NewSharedLimiter wraps the Redis rate limiter for Polygon traffic.
func NewSharedLimiter(limiter *redis.RateLimiter, perMinute int) *SharedLimiter {
	return &SharedLimiter{
		limiter: limiter,
		cfg:     redis.PolygonRateLimit(perMinute),
	}
}

func (l *SharedLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx, l.cfg)
}
