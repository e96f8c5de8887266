package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter paces requests to one provider.
type rateLimiter struct {
	limiter *rate.Limiter
}

// newRateLimiter creates a limiter allowing requestsPerMinute with a small
// burst.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRateLimit
	}
	burst := min(requestsPerMinute, 10)
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst),
	}
}

// wait blocks until a token is available. It fails immediately when the wait
// would outlast the context deadline.
func (rl *rateLimiter) wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// acquire waits for a token and converts failures into a RateLimited error.
func (rl *rateLimiter) acquire(ctx context.Context, provider string) error {
	if err := rl.wait(ctx); err != nil {
		return NewProviderError(provider, ReasonRateLimited, err)
	}
	return nil
}
