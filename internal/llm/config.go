package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config selects and configures the generation and embedding backends.
type Config struct {
	// Provider is one of "gemini", "anthropic", "openai", "openrouter" or
	// "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
	RateLimit  RateLimitConfig
	Embed      EmbedConfig

	// Timeout bounds one embedding call, retries excluded.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig also serves OpenAI-compatible servers through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig shapes the backoff between attempts. MaxAttempts counts the
// first call.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// RateLimitConfig bounds the request rate to a provider. A zero
// RequestsPerMinute disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute float64
	Burst             int
}

// EmbedConfig selects the embedding backend.
type EmbedConfig struct {
	// Provider values: "openai", "gemini", "ollama", "mock".
	// Empty means: follow the generation provider when it can embed,
	// otherwise use ollama.
	Provider string
	Model    string
	// BaseURL is the Ollama server, or an OpenAI-compatible endpoint.
	BaseURL string
}

// DefaultConfig selects Gemini with three attempts per call.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv is DefaultConfig with ApplyEnv applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// keySlot ties a provider name to its key field and to the bare vendor
// variable that DiscoverConfig probes.
type keySlot struct {
	provider  string
	vendorEnv string
	key       func(*Config) *string
}

// keySlots is in discovery priority order.
var keySlots = []keySlot{
	{"gemini", "GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"anthropic", "ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"openai", "OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"openrouter", "OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
}

func slotFor(provider string) (keySlot, bool) {
	for _, s := range keySlots {
		if s.provider == provider {
			return s, true
		}
	}
	return keySlot{}, false
}

// evalaiKeyEnv is the EVALAI_-prefixed key variable for a provider.
func evalaiKeyEnv(provider string) string {
	return "EVALAI_" + strings.ToUpper(provider) + "_API_KEY"
}

// ApplyEnv overrides cfg with any EVALAI_* variables that are set.
func ApplyEnv(cfg *Config) {
	for key, dst := range map[string]*string{
		"EVALAI_LLM_PROVIDER":     &cfg.Provider,
		"EVALAI_ANTHROPIC_MODEL":  &cfg.Anthropic.Model,
		"EVALAI_OPENAI_MODEL":     &cfg.OpenAI.Model,
		"EVALAI_OPENAI_BASE_URL":  &cfg.OpenAI.BaseURL,
		"EVALAI_GEMINI_MODEL":     &cfg.Gemini.Model,
		"EVALAI_OPENROUTER_MODEL": &cfg.OpenRouter.Model,
		"EVALAI_EMBED_PROVIDER":   &cfg.Embed.Provider,
		"EVALAI_EMBED_MODEL":      &cfg.Embed.Model,
		"EVALAI_EMBED_BASE_URL":   &cfg.Embed.BaseURL,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	for _, s := range keySlots {
		if v := os.Getenv(evalaiKeyEnv(s.provider)); v != "" {
			*s.key(cfg) = v
		}
	}
	if v := os.Getenv("EVALAI_LLM_RPM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RequestsPerMinute = f
		}
	}
}

// DiscoverConfig selects the first provider, in keySlots order, whose
// vendor key variable is set. It reports false when none is.
func DiscoverConfig() (Config, bool) {
	for _, s := range keySlots {
		if k := os.Getenv(s.vendorEnv); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = s.provider
			*s.key(&cfg) = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the generation and embedding backends are known and
// have the keys they need.
func (c Config) Validate() error {
	if c.Provider != "mock" {
		s, ok := slotFor(c.Provider)
		if !ok {
			return fmt.Errorf("unknown LLM provider: %q", c.Provider)
		}
		if *s.key(&c) == "" {
			return fmt.Errorf("%s is required for the %s provider", evalaiKeyEnv(s.provider), s.provider)
		}
	}

	switch embed := c.EmbedProvider(); embed {
	case "ollama", "mock":
	case "openai", "gemini":
		s, _ := slotFor(embed)
		if *s.key(&c) == "" {
			return fmt.Errorf("%s is required for %s embeddings", evalaiKeyEnv(embed), embed)
		}
	default:
		return fmt.Errorf("unknown embedding provider: %q", embed)
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %v", c.RateLimit.RequestsPerMinute)
	}
	return nil
}

// EmbedProvider resolves the embedding backend. Without an explicit choice
// it follows the generation provider when that one can embed, else Ollama.
func (c Config) EmbedProvider() string {
	if c.Embed.Provider != "" {
		return c.Embed.Provider
	}
	switch c.Provider {
	case "openai", "gemini", "mock":
		return c.Provider
	}
	return "ollama"
}
