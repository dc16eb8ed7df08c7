package quizgen

import "errors"

// Config controls question generation.
type Config struct {
	// SAQRatio is the share of questions requested as short answer. At
	// least one SAQ is always requested.
	SAQRatio float64 `toml:"saq_ratio"`

	// MaxTokens is the token budget for each LLM response.
	MaxTokens int `toml:"max_tokens"`

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64 `toml:"temperature"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SAQRatio:    0.7,
		MaxTokens:   2000,
		Temperature: 0.3,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.SAQRatio < 0 || c.SAQRatio > 1 {
		return errors.New("quizgen: saq_ratio must be in [0, 1]")
	}
	if c.MaxTokens < 1 {
		return errors.New("quizgen: max_tokens must be >= 1")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return errors.New("quizgen: temperature must be in [0, 1]")
	}
	return nil
}

// Split returns how many SAQs and MCQs to request for n questions.
func (c Config) Split(n int) (saq, mcq int) {
	if n < 1 {
		return 0, 0
	}
	saq = max(1, int(float64(n)*c.SAQRatio))
	saq = min(saq, n)
	return saq, n - saq
}
