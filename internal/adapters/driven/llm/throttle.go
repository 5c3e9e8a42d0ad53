package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// Ensure Throttled implements the interface.
var _ driven.LLMService = (*Throttled)(nil)

// defaultBackoff applies when a 429 carries no Retry-After.
const defaultBackoff = 30 * time.Second

// Throttled wraps an LLMService with a token bucket limiter.
// After a rate-limited response it holds further requests until the
// backend's Retry-After has passed. It never retries a failed call.
type Throttled struct {
	inner   driven.LLMService
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// NewThrottled limits inner to requestsPerMinute calls.
// Returns inner unchanged when requestsPerMinute is not positive.
func NewThrottled(inner driven.LLMService, requestsPerMinute int) driven.LLMService {
	if requestsPerMinute <= 0 || inner == nil {
		return inner
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
func (t *Throttled) Wait(ctx context.Context) error {
	t.mu.Lock()
	retryAt := t.retryAt
	t.mu.Unlock()

	if time.Now().Before(retryAt) {
		logger.Debug("Backend rate limited, waiting until %s", retryAt.Format(time.TimeOnly))
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return t.limiter.Wait(ctx)
}

// observe records a backoff when err reports rate limiting.
func (t *Throttled) observe(err error) {
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		return
	}
	backoff := rl.RetryAfter
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	t.mu.Lock()
	t.retryAt = time.Now().Add(backoff)
	t.mu.Unlock()
}

// Generate waits for a token then delegates.
func (t *Throttled) Generate(
	ctx context.Context, systemPrompt, prompt string, opts driven.GenerateOptions,
) (string, error) {
	if err := t.Wait(ctx); err != nil {
		return "", err
	}
	out, err := t.inner.Generate(ctx, systemPrompt, prompt, opts)
	t.observe(err)
	return out, err
}

// Chat waits for a token then delegates.
func (t *Throttled) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := t.Wait(ctx); err != nil {
		return "", err
	}
	out, err := t.inner.Chat(ctx, messages, opts)
	t.observe(err)
	return out, err
}

// ModelName returns the wrapped model name.
func (t *Throttled) ModelName() string {
	return t.inner.ModelName()
}

// Ping is not throttled.
func (t *Throttled) Ping(ctx context.Context) error {
	return t.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (t *Throttled) Close() error {
	return t.inner.Close()
}
