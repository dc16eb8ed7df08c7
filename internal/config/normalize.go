package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/asadullah4bls/evalai/internal/llm"
	"github.com/asadullah4bls/evalai/internal/store"
)

func (c *Config) normalize() error {
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.Logging.Mode = strings.ToLower(strings.TrimSpace(c.Logging.Mode))
	if c.OCR.CredentialsFile != "" {
		p, err := expandPath(c.OCR.CredentialsFile)
		if err != nil {
			return fmt.Errorf("ocr.credentials_file: %w", err)
		}
		c.OCR.CredentialsFile = p
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultBackend
	}
	return c.ResolvePaths()
}

// ResolvePaths fills empty store paths from XDG defaults and expands the
// rest. The cmd package calls it again after applying flag overrides.
func (c *Config) ResolvePaths() error {
	var err error
	if strings.TrimSpace(c.Store.DataDir) == "" {
		if c.Store.DataDir, err = store.DefaultDataDir(); err != nil {
			return fmt.Errorf("store.data_dir: %w", err)
		}
	}
	if c.Store.DataDir, err = expandPath(c.Store.DataDir); err != nil {
		return fmt.Errorf("store.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Store.DBPath) == "" {
		c.Store.DBPath = filepath.Join(c.Store.DataDir, dbFileName)
	}
	if c.Store.DBPath, err = expandPath(c.Store.DBPath); err != nil {
		return fmt.Errorf("store.db_path: %w", err)
	}
	return nil
}

// normalizeLLM picks a provider when none is named: the first of gemini,
// anthropic, openai, openrouter that has a key, else gemini.
func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Embed.Provider = strings.ToLower(strings.TrimSpace(c.Embed.Provider))
	if c.LLM.Provider != "" {
		return
	}
	switch {
	case c.LLM.GeminiAPIKey != "":
		c.LLM.Provider = "gemini"
	case c.LLM.AnthropicAPIKey != "":
		c.LLM.Provider = "anthropic"
	case c.LLM.OpenAIAPIKey != "":
		c.LLM.Provider = "openai"
	case c.LLM.OpenRouterAPIKey != "":
		c.LLM.Provider = "openrouter"
	default:
		c.LLM.Provider = "gemini"
	}
}

// LLMConfig converts the file-form settings into an llm.Config. Fields left
// at zero keep the llm package defaults.
func (c *Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Anthropic.APIKey = c.LLM.AnthropicAPIKey
	out.OpenAI.APIKey = c.LLM.OpenAIAPIKey
	out.OpenAI.BaseURL = c.LLM.OpenAIBaseURL
	out.Gemini.APIKey = c.LLM.GeminiAPIKey
	out.OpenRouter.APIKey = c.LLM.OpenRouterAPIKey
	setIf(&out.Anthropic.Model, c.LLM.AnthropicModel)
	setIf(&out.OpenAI.Model, c.LLM.OpenAIModel)
	setIf(&out.Gemini.Model, c.LLM.GeminiModel)
	setIf(&out.OpenRouter.Model, c.LLM.OpenRouterModel)
	if c.LLM.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(c.LLM.TimeoutSeconds) * time.Second
	}
	if c.LLM.MaxAttempts > 0 {
		out.Retry.MaxAttempts = c.LLM.MaxAttempts
	}
	out.RateLimit = llm.RateLimitConfig{
		RequestsPerMinute: c.LLM.RequestsPerMinute,
		Burst:             c.LLM.Burst,
	}
	out.Embed = llm.EmbedConfig{
		Provider: c.Embed.Provider,
		Model:    c.Embed.Model,
		BaseURL:  c.Embed.BaseURL,
	}
	return out
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
