package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/store"
)

// Embedder turns texts into dense vectors, one per input, in input order.
// Each call is a single blocking request.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

// NewEmbedder creates the embedder selected by cfg.EmbedProvider() and
// wraps it: caller → retry → rate limit → timeout → logging → base. The
// timeout bounds each attempt. A nil eventRepo skips event recording.
func NewEmbedder(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logging.Logger) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	name := cfg.EmbedProvider()
	switch name {
	case "openai":
		oc := cfg.OpenAI
		if cfg.Embed.BaseURL != "" {
			oc.BaseURL = cfg.Embed.BaseURL
		}
		e, err = NewOpenAIEmbedder(oc, cfg.Embed.Model)
	case "gemini":
		e, err = NewGeminiEmbedder(ctx, cfg.Gemini, cfg.Embed.Model)
	case "ollama":
		e, err = NewOllamaEmbedder(cfg.Embed, cfg.Timeout)
	case "mock":
		return NewMockEmbedder(64), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s embedder: %w", name, err)
	}
	if eventRepo != nil {
		e = WithEmbedLogging(e, name, eventRepo, log)
	}
	e = WithEmbedTimeout(e, cfg.Timeout)
	e = WithEmbedRateLimit(e, cfg.RateLimit)
	return WithEmbedRetry(e, cfg.Retry), nil
}

// timeoutEmbedder bounds each call.
type timeoutEmbedder struct {
	inner   Embedder
	timeout time.Duration
}

// WithEmbedTimeout bounds every Embed call by d. A zero d returns e.
func WithEmbedTimeout(e Embedder, d time.Duration) Embedder {
	if d <= 0 {
		return e
	}
	return &timeoutEmbedder{inner: e, timeout: d}
}

func (t *timeoutEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Embed(ctx, texts)
}

func (t *timeoutEmbedder) ModelID() string {
	return t.inner.ModelID()
}
