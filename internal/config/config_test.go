package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadullah4bls/evalai/internal/config"
)

// isolate points every lookup location at a temp dir and clears the
// variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	for _, k := range []string{
		"EVALAI_LLM_PROVIDER", "EVALAI_GEMINI_API_KEY", "EVALAI_ANTHROPIC_API_KEY",
		"EVALAI_OPENAI_API_KEY", "EVALAI_OPENROUTER_API_KEY", "GEMINI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY",
		"EVALAI_DB", "EVALAI_DATA_DIR", "EVALAI_STORE", "EVALAI_LOG",
		"EVALAI_MAX_QUESTIONS", "EVALAI_LLM_RPM", "EVALAI_EMBED_PROVIDER",
		"EVALAI_OCR", "EVALAI_VISION_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(home, "cfg", "evalai", "config.toml"), resolved)

	assert.Equal(t, 20, cfg.Quiz.MaxQuestions)
	assert.Equal(t, 60.0, cfg.Diagram.Epsilon)
	assert.Equal(t, 1, cfg.Diagram.MinSamples)
	assert.Equal(t, 0.65, cfg.Keywords.TextThreshold)
	assert.Equal(t, 0.75, cfg.Keywords.DiagramThreshold)
	assert.Equal(t, 5, cfg.Keywords.MinDiagram)
	assert.Equal(t, 0.7, cfg.Quizgen.SAQRatio)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, filepath.Join(home, "data", "evalai"), cfg.Store.DataDir)
	assert.Equal(t, filepath.Join(home, "data", "evalai", "evalai.db"), cfg.Store.DBPath)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "evalai.toml")
	body := `
[quiz]
max_questions = 8

[keywords]
text_threshold = 0.5

[store]
data_dir = "~/quizzes"

[llm]
provider = "mock"
timeout_seconds = 5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)
	assert.Equal(t, 8, cfg.Quiz.MaxQuestions)
	assert.Equal(t, 0.5, cfg.Keywords.TextThreshold)
	assert.Equal(t, 0.75, cfg.Keywords.DiagramThreshold, "unset keys keep defaults")
	assert.Equal(t, filepath.Join(home, "quizzes"), cfg.Store.DataDir)
	assert.Equal(t, filepath.Join(home, "quizzes", "evalai.db"), cfg.Store.DBPath)

	lc := cfg.LLMConfig()
	assert.Equal(t, "mock", lc.Provider)
	assert.Equal(t, 5*time.Second, lc.Timeout)
	assert.Equal(t, 3, lc.Retry.MaxAttempts)
	require.NoError(t, cfg.ValidateLLM())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "evalai.toml")
	require.NoError(t, os.WriteFile(path, []byte("[quiz]\nmax_questions = 8\n"), 0o644))
	t.Setenv("EVALAI_MAX_QUESTIONS", "12")
	t.Setenv("EVALAI_DB", filepath.Join(home, "x.db"))

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Quiz.MaxQuestions)
	assert.Equal(t, filepath.Join(home, "x.db"), cfg.Store.DBPath)
}

func TestLoad_DiscoversProviderFromKeys(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, _, _, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLMConfig().OpenAI.APIKey)
	assert.NoError(t, cfg.ValidateLLM())
}

func TestLoad_ExplicitProviderWins(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EVALAI_LLM_PROVIDER", "anthropic")

	cfg, _, _, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Error(t, cfg.ValidateLLM(), "anthropic has no key")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[quiz]\nmax_question = 3\n"), 0o644))

	_, _, _, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"max questions", "[quiz]\nmax_questions = 0\n", "max_questions"},
		{"epsilon", "[diagram]\nepsilon = 0.0\n", "epsilon"},
		{"backend", "[store]\nbackend = \"s3\"\n", "store.backend"},
		{"redis addr", "[store]\nbackend = \"redis\"\nredis_addr = \"\"\n", "redis_addr"},
		{"log mode", "[logging]\nmode = \"loud\"\n", "logging.mode"},
		{"saq ratio", "[quizgen]\nsaq_ratio = 1.5\n", "saq_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			path := filepath.Join(home, "c.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, _, _, err := config.Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCreateSample_RoundTripsThroughLoad(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "nested", "config.toml")
	require.NoError(t, config.CreateSample(path))

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)

	want := config.Default()
	assert.Equal(t, want.Diagram, cfg.Diagram)
	assert.Equal(t, want.Extract, cfg.Extract)
	assert.Equal(t, want.Keywords, cfg.Keywords)
	assert.Equal(t, want.Quizgen, cfg.Quizgen)
	assert.Equal(t, want.Quiz, cfg.Quiz)
}

func TestDefault_MarshalsEverySection(t *testing.T) {
	raw, err := toml.Marshal(config.Default())
	require.NoError(t, err)
	for _, section := range []string{"[quiz]", "[diagram]", "[extract]", "[keywords]", "[quizgen]", "[llm]", "[embed]", "[ocr]", "[store]", "[logging]"} {
		assert.True(t, strings.Contains(string(raw), section), "missing %s", section)
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)
	got, err := config.ExpandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a", "b"), got)

	got, err = config.ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
