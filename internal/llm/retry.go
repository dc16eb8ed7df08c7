package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// retry calls fn until it succeeds, hits a final error, or uses up
// cfg.MaxAttempts (at least one). An unusable response is retried once.
func retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)
	retriedInvalid := false

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var v T
		if v, err = fn(); err == nil {
			return v, nil
		}

		switch kindOf(err) {
		case failFinal:
			return zero, err
		case failInvalid:
			if retriedInvalid {
				return zero, err
			}
			retriedInvalid = true
		}
		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(cfg.delay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, err
}

// delay is the wait before retry number attempt+1: the provider's
// Retry-After when given, else capped exponential backoff with 20% jitter.
func (c RetryConfig) delay(attempt int, err error) time.Duration {
	if d := retryAfter(err); d > 0 {
		return d
	}
	wait := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(c.MaxWait))
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}

// RetryProvider retries transient generation failures. It sits at the
// adapter boundary; the quiz pipeline never retries a collaborator.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps p with retries.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	return retry(ctx, r.cfg, func() (*Response, error) {
		return r.inner.Generate(ctx, req)
	})
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// RetryEmbedder retries transient embedding failures.
type RetryEmbedder struct {
	inner Embedder
	cfg   RetryConfig
}

// WithEmbedRetry wraps e with retries.
func WithEmbedRetry(e Embedder, cfg RetryConfig) Embedder {
	return &RetryEmbedder{inner: e, cfg: cfg}
}

func (r *RetryEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return retry(ctx, r.cfg, func() ([][]float32, error) {
		return r.inner.Embed(ctx, texts)
	})
}

func (r *RetryEmbedder) ModelID() string {
	return r.inner.ModelID()
}
