package llm

import (
	"context"
	"fmt"

	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry, rate limit, and logging
// middleware. A nil eventRepo skips event recording.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logging.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → rate limit → logging → base
	p := base
	if eventRepo != nil {
		p = WithLogging(p, cfg.Provider, eventRepo, log)
	}
	p = WithRateLimit(p, cfg.RateLimit)
	p = WithRetry(p, cfg.Retry)

	return p, nil
}

// NewProviderFromEnv discovers configuration from the environment and
// creates a Provider. EVALAI_* variables win over bare vendor keys.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, log *logging.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if cfg.Validate() != nil {
		if discovered, ok := DiscoverConfig(); ok {
			ApplyEnv(&discovered)
			cfg = discovered
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewProvider(ctx, cfg, eventRepo, log)
}
