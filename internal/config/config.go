package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/asadullah4bls/evalai/internal/diagram"
	"github.com/asadullah4bls/evalai/internal/keywords"
	"github.com/asadullah4bls/evalai/internal/quizgen"
)

//go:embed sample_config.toml
var sampleConfig string

// Quiz holds assembly settings.
type Quiz struct {
	MaxQuestions int `toml:"max_questions"`
}

// Store selects where artifacts, attempts, and the event log live.
type Store struct {
	// Backend is "file" or "redis".
	Backend   string `toml:"backend"`
	DataDir   string `toml:"data_dir"`
	DBPath    string `toml:"db_path"`
	RedisAddr string `toml:"redis_addr"`
}

// LLM mirrors llm.Config in file form.
type LLM struct {
	Provider          string  `toml:"provider"`
	AnthropicAPIKey   string  `toml:"anthropic_api_key"`
	AnthropicModel    string  `toml:"anthropic_model"`
	OpenAIAPIKey      string  `toml:"openai_api_key"`
	OpenAIModel       string  `toml:"openai_model"`
	OpenAIBaseURL     string  `toml:"openai_base_url"`
	GeminiAPIKey      string  `toml:"gemini_api_key"`
	GeminiModel       string  `toml:"gemini_model"`
	OpenRouterAPIKey  string  `toml:"openrouter_api_key"`
	OpenRouterModel   string  `toml:"openrouter_model"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxAttempts       int     `toml:"max_attempts"`
	RequestsPerMinute float64 `toml:"requests_per_minute"`
	Burst             int     `toml:"burst"`
}

// Embed selects the embedding backend.
type Embed struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

// OCR configures diagram text detection.
type OCR struct {
	Enabled         bool   `toml:"enabled"`
	CredentialsFile string `toml:"credentials_file"`
}

// Logging selects the logger mode passed to logging.New.
type Logging struct {
	Mode string `toml:"mode"`
}

// Config is the full evalai configuration.
type Config struct {
	Quiz     Quiz                   `toml:"quiz"`
	Diagram  diagram.Config         `toml:"diagram"`
	Extract  keywords.ExtractConfig `toml:"extract"`
	Keywords keywords.Config        `toml:"keywords"`
	Quizgen  quizgen.Config         `toml:"quizgen"`
	LLM      LLM                    `toml:"llm"`
	Embed    Embed                  `toml:"embed"`
	OCR      OCR                    `toml:"ocr"`
	Store    Store                  `toml:"store"`
	Logging  Logging                `toml:"logging"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/evalai/config.toml, falling
// back to ~/.config/evalai/config.toml.
func DefaultConfigPath() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "evalai", "config.toml"), nil
	}
	return expandPath("~/.config/evalai/config.toml")
}

// Load reads the configuration at path, or the default location when path
// is empty. A missing file is not an error; defaults and the environment
// still apply. It returns the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	ApplyEnv(&cfg)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = p
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
