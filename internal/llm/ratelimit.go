package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider waits for a token before each call.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p with a token bucket. A zero RequestsPerMinute
// returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	l := newLimiter(cfg)
	if l == nil {
		return p
	}
	return &RateLimitProvider{inner: p, limiter: l}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}

// RateLimitEmbedder waits for a token before each call.
type RateLimitEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

// WithEmbedRateLimit wraps e with a token bucket. A zero
// RequestsPerMinute returns e unchanged.
func WithEmbedRateLimit(e Embedder, cfg RateLimitConfig) Embedder {
	l := newLimiter(cfg)
	if l == nil {
		return e
	}
	return &RateLimitEmbedder{inner: e, limiter: l}
}

func (r *RateLimitEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, texts)
}

func (r *RateLimitEmbedder) ModelID() string {
	return r.inner.ModelID()
}

func newLimiter(cfg RateLimitConfig) *rate.Limiter {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	every := time.Duration(float64(time.Minute) / cfg.RequestsPerMinute)
	return rate.NewLimiter(rate.Every(every), burst)
}
