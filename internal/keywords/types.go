// Package keywords ranks candidate keyphrases against a document and
// removes near-duplicates by embedding similarity.
package keywords

import (
	"context"
	"errors"
)

// Source tags where a keyphrase came from.
type Source string

const (
	SourceText    Source = "text"
	SourceDiagram Source = "diagram"
)

// Scored is a candidate keyphrase with its relevance score.
type Scored struct {
	Phrase string
	Score  float64
	Source Source
}

// Embedder turns texts into dense vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config tunes deduplication.
type Config struct {
	// TextThreshold and DiagramThreshold are the cosine similarities at or
	// above which a phrase counts as redundant.
	TextThreshold    float64 `toml:"text_threshold"`
	DiagramThreshold float64 `toml:"diagram_threshold"`

	// MinDiagram is the diagram floor. When filtering leaves fewer diagram
	// phrases than this and at least this many raw candidates exist, the
	// top raw candidates are used instead.
	MinDiagram int `toml:"min_diagram"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TextThreshold:    0.65,
		DiagramThreshold: 0.75,
		MinDiagram:       5,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.TextThreshold <= 0 || c.TextThreshold > 1 {
		return errors.New("keywords: text_threshold must be in (0, 1]")
	}
	if c.DiagramThreshold <= 0 || c.DiagramThreshold > 1 {
		return errors.New("keywords: diagram_threshold must be in (0, 1]")
	}
	if c.MinDiagram < 0 {
		return errors.New("keywords: min_diagram must be >= 0")
	}
	return nil
}

// ExtractConfig tunes keyphrase scoring per source.
type ExtractConfig struct {
	TextTopN        int     `toml:"text_top_n"`
	TextMinScore    float64 `toml:"text_min_score"`
	DiagramTopN     int     `toml:"diagram_top_n"`
	DiagramMinScore float64 `toml:"diagram_min_score"`

	// DiagramKeep is how many top diagram phrases are kept regardless of
	// score when too few pass DiagramMinScore.
	DiagramKeep int `toml:"diagram_keep"`

	MaxNGram         int `toml:"max_ngram"`
	MaxCandidates    int `toml:"max_candidates"`
	MaxDocumentChars int `toml:"max_document_chars"`
}

// DefaultExtractConfig returns the production defaults.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		TextTopN:         30,
		TextMinScore:     0.50,
		DiagramTopN:      20,
		DiagramMinScore:  0.25,
		DiagramKeep:      5,
		MaxNGram:         3,
		MaxCandidates:    256,
		MaxDocumentChars: 8000,
	}
}

// Validate checks that the config is usable.
func (c ExtractConfig) Validate() error {
	switch {
	case c.TextTopN < 1 || c.DiagramTopN < 1:
		return errors.New("keywords: top_n must be >= 1")
	case c.MaxNGram < 1:
		return errors.New("keywords: max_ngram must be >= 1")
	case c.MaxCandidates < 1:
		return errors.New("keywords: max_candidates must be >= 1")
	case c.MaxDocumentChars < 1:
		return errors.New("keywords: max_document_chars must be >= 1")
	case c.DiagramKeep < 0:
		return errors.New("keywords: diagram_keep must be >= 0")
	}
	return nil
}
