package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks everything except provider credentials, which only the
// commands that talk to an LLM need. See ValidateLLM.
func (c *Config) Validate() error {
	if c.Quiz.MaxQuestions < 1 {
		return errors.New("quiz.max_questions must be >= 1")
	}
	if err := c.Diagram.Validate(); err != nil {
		return err
	}
	if err := c.Extract.Validate(); err != nil {
		return err
	}
	if err := c.Keywords.Validate(); err != nil {
		return err
	}
	if err := c.Quizgen.Validate(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must be >= 0")
	}
	if c.LLM.MaxAttempts < 0 {
		return errors.New("llm.max_attempts must be >= 0")
	}
	if c.LLM.Burst < 0 {
		return errors.New("llm.burst must be >= 0")
	}
	return nil
}

// ValidateLLM checks that the selected generation and embedding providers
// have what they need.
func (c *Config) ValidateLLM() error {
	if err := c.LLMConfig().Validate(); err != nil {
		path, perr := DefaultConfigPath()
		if perr != nil {
			path = "~/.config/evalai/config.toml"
		}
		return fmt.Errorf("%w (set it in the environment or in %s)", err, path)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "file":
	case "redis":
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return errors.New("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be file or redis, got %q", c.Store.Backend)
	}
	if c.Store.DataDir == "" {
		return errors.New("store.data_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Mode {
	case "", "quiet", "dev", "development", "debug", "prod", "production":
		return nil
	}
	return fmt.Errorf("logging.mode %q is not one of quiet, development, production", c.Logging.Mode)
}
