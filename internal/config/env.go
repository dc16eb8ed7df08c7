package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides cfg with EVALAI_* variables that are set. Vendor key
// variables such as GEMINI_API_KEY fill a key only when it is still empty.
func ApplyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	fallback := func(dst *string, key string) {
		if *dst == "" {
			setString(dst, key)
		}
	}

	setInt(&cfg.Quiz.MaxQuestions, "EVALAI_MAX_QUESTIONS")

	setString(&cfg.LLM.Provider, "EVALAI_LLM_PROVIDER")
	setString(&cfg.LLM.AnthropicAPIKey, "EVALAI_ANTHROPIC_API_KEY")
	setString(&cfg.LLM.AnthropicModel, "EVALAI_ANTHROPIC_MODEL")
	setString(&cfg.LLM.OpenAIAPIKey, "EVALAI_OPENAI_API_KEY")
	setString(&cfg.LLM.OpenAIModel, "EVALAI_OPENAI_MODEL")
	setString(&cfg.LLM.OpenAIBaseURL, "EVALAI_OPENAI_BASE_URL")
	setString(&cfg.LLM.GeminiAPIKey, "EVALAI_GEMINI_API_KEY")
	setString(&cfg.LLM.GeminiModel, "EVALAI_GEMINI_MODEL")
	setString(&cfg.LLM.OpenRouterAPIKey, "EVALAI_OPENROUTER_API_KEY")
	setString(&cfg.LLM.OpenRouterModel, "EVALAI_OPENROUTER_MODEL")
	if v := os.Getenv("EVALAI_LLM_RPM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.RequestsPerMinute = f
		}
	}

	fallback(&cfg.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	fallback(&cfg.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	fallback(&cfg.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	fallback(&cfg.LLM.OpenRouterAPIKey, "OPENROUTER_API_KEY")

	setString(&cfg.Embed.Provider, "EVALAI_EMBED_PROVIDER")
	setString(&cfg.Embed.Model, "EVALAI_EMBED_MODEL")
	setString(&cfg.Embed.BaseURL, "EVALAI_EMBED_BASE_URL")

	setString(&cfg.OCR.CredentialsFile, "EVALAI_VISION_CREDENTIALS")
	fallback(&cfg.OCR.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	if v := os.Getenv("EVALAI_OCR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OCR.Enabled = b
		}
	}

	setString(&cfg.Store.Backend, "EVALAI_STORE")
	setString(&cfg.Store.DataDir, "EVALAI_DATA_DIR")
	setString(&cfg.Store.DBPath, "EVALAI_DB")
	setString(&cfg.Store.RedisAddr, "EVALAI_REDIS_ADDR")

	setString(&cfg.Logging.Mode, "EVALAI_LOG")
}
