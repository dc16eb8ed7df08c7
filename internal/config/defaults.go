package config

import (
	"github.com/asadullah4bls/evalai/internal/diagram"
	"github.com/asadullah4bls/evalai/internal/keywords"
	"github.com/asadullah4bls/evalai/internal/llm"
	"github.com/asadullah4bls/evalai/internal/quizgen"
)

const (
	defaultMaxQuestions = 20
	defaultBackend      = "file"
	defaultRedisAddr    = "127.0.0.1:6379"
	defaultLogMode      = "quiet"
	dbFileName          = "evalai.db"
)

// Default returns a Config populated with repository defaults. Store paths
// are left empty and resolved against XDG locations during normalization.
func Default() Config {
	l := llm.DefaultConfig()
	return Config{
		Quiz:     Quiz{MaxQuestions: defaultMaxQuestions},
		Diagram:  diagram.DefaultConfig(),
		Extract:  keywords.DefaultExtractConfig(),
		Keywords: keywords.DefaultConfig(),
		Quizgen:  quizgen.DefaultConfig(),
		LLM: LLM{
			AnthropicModel:  l.Anthropic.Model,
			OpenAIModel:     l.OpenAI.Model,
			GeminiModel:     l.Gemini.Model,
			OpenRouterModel: l.OpenRouter.Model,
			TimeoutSeconds:  int(l.Timeout.Seconds()),
			MaxAttempts:     l.Retry.MaxAttempts,
		},
		Store: Store{
			Backend:   defaultBackend,
			RedisAddr: defaultRedisAddr,
		},
		Logging: Logging{Mode: defaultLogMode},
	}
}
